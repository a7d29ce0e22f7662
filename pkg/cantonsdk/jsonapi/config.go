package jsonapi

import (
	"errors"
	"time"
)

// Config contains the settings needed to reach a participant's JSON Ledger API.
type Config struct {
	BaseURL string
	// Token is an optional bearer token sent as the Authorization header.
	Token   string
	Timeout time.Duration `default:"30s"`
}

func (c *Config) validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	return nil
}
