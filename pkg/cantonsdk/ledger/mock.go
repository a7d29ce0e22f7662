package ledger

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/jsonapi"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

type fixture struct {
	ContractID  string         `yaml:"contractId"`
	Signatories []string       `yaml:"signatories"`
	Observers   []string       `yaml:"observers"`
	Payload     map[string]any `yaml:"payload"`
}

type fixtureSet map[string][]fixture

func loadFixtures(data []byte) (fixtureSet, error) {
	var set fixtureSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode mock fixtures: %w", err)
	}
	return set, nil
}

// contracts returns the fixtures of the template matching query, stamped
// with the requested template id.
func (s fixtureSet) contracts(templateID string, query Query) ([]jsonapi.Contract, error) {
	out := []jsonapi.Contract{}
	for _, f := range s[ShortName(templateID)] {
		if len(query) > 0 && !query.Matches(f.Payload) {
			continue
		}
		payload, err := json.Marshal(f.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode fixture %s: %w", f.ContractID, err)
		}
		out = append(out, jsonapi.Contract{
			ContractID:  f.ContractID,
			TemplateID:  templateID,
			Payload:     payload,
			Signatories: append([]string(nil), f.Signatories...),
			Observers:   append([]string(nil), f.Observers...),
		})
	}
	return out, nil
}

// ShortName returns the template name after the last ':' of a template id.
func ShortName(templateID string) string {
	if i := strings.LastIndex(templateID, ":"); i >= 0 {
		return templateID[i+1:]
	}
	return templateID
}

func mockContractID(templateID string, nanos int64) string {
	return "mock-" + ShortName(templateID) + "-" + strconv.FormatInt(nanos, 10)
}
