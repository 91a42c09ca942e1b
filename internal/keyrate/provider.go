package keyrate

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Provider returns the current central bank key rate in percent (7.5 means 7.5%).
type Provider interface {
	KeyRate(ctx context.Context) (decimal.Decimal, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (decimal.Decimal, error)

func (f ProviderFunc) KeyRate(ctx context.Context) (decimal.Decimal, error) {
	return f(ctx)
}

// Static always returns a fixed rate.
type Static struct {
	Rate decimal.Decimal
}

func (s Static) KeyRate(context.Context) (decimal.Decimal, error) {
	return s.Rate, nil
}

type fallbackProvider struct {
	primary  Provider
	fallback Provider
}

// WithFallback asks primary first and falls back to the second provider on error.
func WithFallback(primary, fallback Provider) Provider {
	if fallback == nil {
		return primary
	}
	return &fallbackProvider{primary: primary, fallback: fallback}
}

func (p *fallbackProvider) KeyRate(ctx context.Context) (decimal.Decimal, error) {
	rate, err := p.primary.KeyRate(ctx)
	if err == nil {
		return rate, nil
	}
	rate, fbErr := p.fallback.KeyRate(ctx)
	if fbErr != nil {
		return decimal.Zero, errors.Join(err, fbErr)
	}
	return rate, nil
}
