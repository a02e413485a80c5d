// Package addressval validates addresses against external providers
// with an ordered fallback chain. Validation is best-effort: when every
// provider fails the result degrades to "pending" and no error escapes.
package addressval

import (
	"context"
	"time"

	"go.uber.org/zap"

	"shipping-label-service/internal/config"
	"shipping-label-service/internal/model"
)

// Address is the formatted input handed to a provider.
type Address struct {
	Address  string
	Address2 string
	City     string
	State    string
	Zip      string
}

// Result is a provider verdict. Source names the provider that
// confirmed or rejected the address.
type Result struct {
	Status  string // model.AddressValid | model.AddressInvalid | model.AddressPending
	Source  string
	Message string
}

// Provider is one validation backend. A returned error means the
// provider could not answer and the next provider in the chain is
// tried; an invalid-address verdict is a successful answer.
type Provider interface {
	Name() string
	Validate(ctx context.Context, addr Address) (Result, error)
}

// Validator tries providers in order with a bounded per-call timeout.
type Validator struct {
	providers []Provider
	timeout   time.Duration
	logger    *zap.Logger
}

// NewValidator builds the provider chain from configured credentials.
// Providers without credentials are left out.
func NewValidator(cfg *config.Config, logger *zap.Logger) *Validator {
	var providers []Provider
	if cfg.USPSUserID != "" {
		providers = append(providers, NewUSPSProvider(cfg.USPSUserID, cfg.ValidationTimeout))
	}
	if cfg.GoogleAPIKey != "" {
		providers = append(providers, NewGoogleProvider(cfg.GoogleAPIKey, cfg.ValidationTimeout))
	}

	return &Validator{
		providers: providers,
		timeout:   cfg.ValidationTimeout,
		logger:    logger,
	}
}

// NewChain builds a validator over explicit providers.
func NewChain(timeout time.Duration, logger *zap.Logger, providers ...Provider) *Validator {
	return &Validator{providers: providers, timeout: timeout, logger: logger}
}

// Validate runs the chain. The first provider that answers wins; a
// timeout counts as a provider failure and triggers the fallback.
func (v *Validator) Validate(ctx context.Context, addr Address) Result {
	for _, provider := range v.providers {
		callCtx, cancel := context.WithTimeout(ctx, v.timeout)
		result, err := provider.Validate(callCtx, addr)
		cancel()

		if err != nil {
			v.logger.Warn("address validation provider failed",
				zap.String("provider", provider.Name()),
				zap.String("city", addr.City),
				zap.Error(err),
			)
			continue
		}

		v.logger.Info("address validated",
			zap.String("provider", provider.Name()),
			zap.String("status", result.Status),
			zap.String("city", addr.City),
		)
		return result
	}

	return Result{
		Status:  model.AddressPending,
		Source:  "none",
		Message: "Address validation unavailable. Please verify address manually.",
	}
}
