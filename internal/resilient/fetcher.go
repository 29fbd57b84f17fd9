// Package resilient implements ordered provider fallback with a synthetic last resort.
//
// A Fetcher tries its providers strictly in order, each under its own timeout.
// The first result that passes validation is returned and later providers are
// never called. When every provider fails the fallback generator produces the
// result instead, and the Result is tagged SourceSynthetic so callers and
// metrics can tell degraded responses apart without a different shape.
package resilient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finai/internal/logger"
)

// Source tells whether a result came from a real provider or the synthetic generator
type Source string

// Source constants
const (
	SourceReal      Source = "real"
	SourceSynthetic Source = "synthetic"
)

// FallbackName is the provider name reported for synthetic results
const FallbackName = "synthetic"

// DefaultTimeout bounds each provider call when the config leaves Timeout unset
const DefaultTimeout = 5 * time.Second

// ErrNoProvider is returned when every provider failed and there is no fallback
var ErrNoProvider = errors.New("no provider returned a usable result")

// Result carries fetched data with its provenance
type Result[T any] struct {
	Data     T
	Source   Source
	Provider string
}

// Degraded reports whether the data came from the synthetic generator
func (r Result[T]) Degraded() bool {
	return r.Source == SourceSynthetic
}

// Provider is one remote source in a fallback chain
type Provider[P, T any] struct {
	Name  string
	Fetch func(ctx context.Context, params P) (T, error)
}

// Validator checks the shape of a provider response
type Validator[T any] func(data T) error

// Fallback builds synthetic data. It must always succeed.
type Fallback[P, T any] func(params P) T

// Observer receives fetch outcomes
type Observer interface {
	ProviderFailed(kind, provider string)
	Served(kind, provider string, source Source, elapsed time.Duration)
}

// Config configures a Fetcher
type Config[P, T any] struct {
	// Kind names the chain in logs and metrics (quote, news, analysis, chat)
	Kind      string
	Providers []Provider[P, T]
	Validate  Validator[T]
	Fallback  Fallback[P, T]
	Timeout   time.Duration
	Logger    *logger.Logger
	Observer  Observer
}

// Fetcher runs a provider chain
type Fetcher[P, T any] struct {
	kind      string
	providers []Provider[P, T]
	validate  Validator[T]
	fallback  Fallback[P, T]
	timeout   time.Duration
	logger    *logger.Logger
	observer  Observer
}

// New creates a Fetcher from cfg
func New[P, T any](cfg Config[P, T]) *Fetcher[P, T] {
	f := &Fetcher[P, T]{
		kind:      cfg.Kind,
		providers: cfg.Providers,
		validate:  cfg.Validate,
		fallback:  cfg.Fallback,
		timeout:   cfg.Timeout,
		logger:    cfg.Logger,
		observer:  cfg.Observer,
	}
	if f.timeout <= 0 {
		f.timeout = DefaultTimeout
	}
	if f.logger == nil {
		f.logger = logger.NewSilent()
	}
	if f.observer == nil {
		f.observer = noopObserver{}
	}
	return f
}

// Providers returns the provider names in priority order
func (f *Fetcher[P, T]) Providers() []string {
	names := make([]string, len(f.providers))
	for i, p := range f.providers {
		names[i] = p.Name
	}
	return names
}

// Fetch returns the first valid provider result, else the fallback.
// An error is returned only when all providers fail and no fallback is configured.
func (f *Fetcher[P, T]) Fetch(ctx context.Context, params P) (Result[T], error) {
	start := time.Now()

	for _, p := range f.providers {
		if ctx.Err() != nil {
			break
		}

		data, err := f.attempt(ctx, p, params)
		if err == nil && f.validate != nil {
			err = f.validate(data)
		}
		if err != nil {
			f.logger.Warn().
				Str("kind", f.kind).
				Str("provider", p.Name).
				Err(err).
				Msg("provider failed, trying next")
			f.observer.ProviderFailed(f.kind, p.Name)
			continue
		}

		f.observer.Served(f.kind, p.Name, SourceReal, time.Since(start))
		return Result[T]{Data: data, Source: SourceReal, Provider: p.Name}, nil
	}

	if f.fallback == nil {
		var zero T
		return Result[T]{Data: zero, Source: SourceReal}, ErrNoProvider
	}

	f.logger.Info().
		Str("kind", f.kind).
		Str("source", string(SourceSynthetic)).
		Msg("serving synthetic data")
	f.observer.Served(f.kind, FallbackName, SourceSynthetic, time.Since(start))

	return Result[T]{Data: f.fallback(params), Source: SourceSynthetic, Provider: FallbackName}, nil
}

func (f *Fetcher[P, T]) attempt(ctx context.Context, p Provider[P, T], params P) (data T, err error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panicked: %v", r)
		}
	}()

	return p.Fetch(ctx, params)
}

type noopObserver struct{}

func (noopObserver) ProviderFailed(string, string)                {}
func (noopObserver) Served(string, string, Source, time.Duration) {}
