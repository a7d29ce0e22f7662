package cip56

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
)

// Template names used by the bridge. They are prefixed with the package id
// when one is configured.
const (
	TemplateTransferRecord = "CIP56.Transfer:TransferRecord"
	TemplateHolding        = "CIP56.Token:Holding"
	TemplateTokenContract  = "CIP56.Token:TokenContract"

	ChoiceMint = "MintTokens"
	ChoiceBurn = "BurnTokens"
)

// HealthTimeout bounds the readiness probe.
const HealthTimeout = 2 * time.Second

// Config contains the settings of the compliant transfer bridge.
type Config struct {
	// Operator is the party recorded as operator on every transfer record.
	Operator string
	// TokenContractID is the operator-owned token contract receiving
	// mint and burn exercises.
	TokenContractID string
	PackageID       string
	CommandTimeout  time.Duration `default:"30s"`
}

func (c *Config) setDefaults() error {
	if c.Operator == "" {
		return fmt.Errorf("operator party is required")
	}
	return defaults.Set(c)
}

func (c *Config) templateID(name string) string {
	if c.PackageID == "" {
		return name
	}
	return c.PackageID + ":" + name
}
