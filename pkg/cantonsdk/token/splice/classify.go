package splice

import (
	"strings"

	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/values"

	"github.com/shopspring/decimal"
)

// SymbolClassifier derives a token symbol from a created contract.
type SymbolClassifier interface {
	Symbol(templateID string, payload values.Record) (string, bool)
}

// AmountExtractor derives the amount held by a created contract.
type AmountExtractor interface {
	Amount(payload values.Record) (decimal.Decimal, bool)
}

// CoinTemplate maps coin templates, matched by short name, to a symbol.
type CoinTemplate map[string]string

func (c CoinTemplate) Symbol(templateID string, _ values.Record) (string, bool) {
	sym, ok := c[shortName(templateID)]
	return sym, ok
}

// ExplicitSymbol reads payload.symbol, or the symbol carried in the
// Splice metadata of the payload.
type ExplicitSymbol struct{}

func (ExplicitSymbol) Symbol(_ string, payload values.Record) (string, bool) {
	if sym := values.Text(payload["symbol"]); sym != "" {
		return sym, true
	}
	if sym := values.MetaSymbol(payload["meta"]); sym != "" {
		return sym, true
	}
	return "", false
}

// AssetSymbol reads payload.asset.symbol.
type AssetSymbol struct{}

func (AssetSymbol) Symbol(_ string, payload values.Record) (string, bool) {
	sym := values.Text(values.Field(payload, "asset.symbol"))
	return sym, sym != ""
}

// SubstringRule maps template ids containing Match to Symbol.
type SubstringRule struct {
	Match  string
	Symbol string
}

// TemplateInferred guesses the symbol from the template id. Rules are
// tried in order.
type TemplateInferred []SubstringRule

func (t TemplateInferred) Symbol(templateID string, _ values.Record) (string, bool) {
	for _, r := range t {
		if strings.Contains(templateID, r.Match) {
			return r.Symbol, true
		}
	}
	return "", false
}

// NestedAmount reads payload.amount.initialAmount or payload.amount.amount.
type NestedAmount struct{}

func (NestedAmount) Amount(payload values.Record) (decimal.Decimal, bool) {
	nested, ok := values.Nested(payload["amount"])
	if !ok {
		return decimal.Zero, false
	}
	if d, ok := values.Numeric(nested["initialAmount"]); ok {
		return d, true
	}
	return values.Numeric(nested["amount"])
}

// FlatAmount reads payload.amount as a number or numeric string.
type FlatAmount struct{}

func (FlatAmount) Amount(payload values.Record) (decimal.Decimal, bool) {
	return values.Numeric(payload["amount"])
}

// Balance reads payload.balance.
type Balance struct{}

func (Balance) Amount(payload values.Record) (decimal.Decimal, bool) {
	return values.Numeric(payload["balance"])
}

// DefaultSymbolClassifiers is the classifier chain used unless overridden.
func DefaultSymbolClassifiers() []SymbolClassifier {
	return []SymbolClassifier{
		CoinTemplate{"Amulet": "CC"},
		ExplicitSymbol{},
		AssetSymbol{},
		TemplateInferred{
			{Match: "WrappedBitcoin", Symbol: "CBTC"},
			{Match: "CBTC", Symbol: "CBTC"},
			{Match: "USDC", Symbol: "USDC"},
		},
	}
}

// DefaultAmountExtractors is the extractor chain used unless overridden.
func DefaultAmountExtractors() []AmountExtractor {
	return []AmountExtractor{NestedAmount{}, FlatAmount{}, Balance{}}
}

// DefaultSkippedTemplates lists templates that never carry a spendable balance.
func DefaultSkippedTemplates() map[string]bool {
	return map[string]bool{
		"LockedAmulet":              true,
		"TransferInstruction":       true,
		"AmuletTransferInstruction": true,
		"TransferOffer":             true,
		"TransferCommand":           true,
		"AmuletRules":               true,
		"ValidatorRight":            true,
		"ValidatorLicense":          true,
		"FeaturedAppRight":          true,
		"OpenMiningRound":           true,
		"IssuingMiningRound":        true,
	}
}

func classifySymbol(chain []SymbolClassifier, templateID string, payload values.Record) (string, bool) {
	for _, c := range chain {
		if sym, ok := c.Symbol(templateID, payload); ok {
			return sym, true
		}
	}
	return "", false
}

func extractAmount(chain []AmountExtractor, payload values.Record) (decimal.Decimal, bool) {
	for _, e := range chain {
		if d, ok := e.Amount(payload); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}

func shortName(templateID string) string {
	if i := strings.LastIndex(templateID, ":"); i >= 0 {
		return templateID[i+1:]
	}
	return templateID
}
