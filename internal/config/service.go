package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"golang.org/x/sync/errgroup"
)

// Source supplies raw configuration strings by key.
type Source interface {
	Lookup(key string) (string, bool)
}

// EnvSource reads the process environment on every lookup.
type EnvSource struct{}

// Lookup implements Source.
func (EnvSource) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapSource is a fixed snapshot of key-value pairs.
type MapSource map[string]string

// Lookup implements Source.
func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Service exposes the three access modes over a registry and a source.
type Service struct {
	registry  *Registry
	validator *Validator
	source    Source
}

// NewService wires a registry to a source. A nil source reads the process
// environment.
func NewService(registry *Registry, source Source) *Service {
	if source == nil {
		source = EnvSource{}
	}
	return &Service{
		registry:  registry,
		validator: NewValidator(registry),
		source:    source,
	}
}

// NewEnvService resolves the default schema against the process environment.
func NewEnvService() *Service {
	return NewService(DefaultRegistry(), EnvSource{})
}

// Registry returns the registry the service validates against.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Validate resolves key against its rule using the current source value.
func (s *Service) Validate(key string) Outcome {
	raw, present := s.source.Lookup(key)
	return s.validator.Validate(key, raw, present)
}

// Has reports whether key resolves to a valid, present value. Invalid values
// and absent keys without a default both report false.
func (s *Service) Has(key string) bool {
	_, present := s.Validate(key).Value()
	return present
}

// IsSet reports whether the source provides key at all, regardless of
// validity or defaults.
func (s *Service) IsSet(key string) bool {
	_, present := s.source.Lookup(key)
	return present
}

// Get returns the resolved value of key, or nil when the key is absent and has
// no default. An invalid value yields an *InvalidConfigurationError.
func (s *Service) Get(key string) (any, error) {
	outcome := s.Validate(key)
	if outcome.err != nil {
		return nil, &InvalidConfigurationError{Key: key, Cause: outcome.err}
	}
	value, _ := outcome.Value()
	return value, nil
}

// Require returns a future settled with the value of key. The future is
// rejected with an *InvalidConfigurationError when the value is invalid and
// with a *MissingConfigurationError when it resolves to absent. Require itself
// never fails or panics.
func (s *Service) Require(key string) (f *Future) {
	f = newFuture()
	defer func() {
		if r := recover(); r != nil {
			f.reject(&InvalidConfigurationError{
				Key:   key,
				Cause: &ValidationError{Key: key, Reason: fmt.Sprint(r)},
			})
		}
	}()

	value, err := s.Get(key)
	switch {
	case err != nil:
		f.reject(err)
	case value == nil:
		f.reject(&MissingConfigurationError{Key: key})
	default:
		f.resolve(value)
	}
	return f
}

// GetString returns a string value, or "" when absent.
func (s *Service) GetString(key string) (string, error) {
	value, err := s.Get(key)
	if err != nil || value == nil {
		return "", err
	}
	if str, ok := value.(string); ok {
		return str, nil
	}
	return fmt.Sprint(value), nil
}

// GetInt returns an integral number value, or 0 when absent.
func (s *Service) GetInt(key string) (int, error) {
	value, err := s.Get(key)
	if err != nil || value == nil {
		return 0, err
	}
	n, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("%s resolved to %T, not a number", key, value)
	}
	if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
		return 0, &InvalidConfigurationError{
			Key:   key,
			Cause: &ValidationError{Key: key, Constraint: "integer", Reason: "must be an integer"},
		}
	}
	return int(n), nil
}

// GetBool returns a boolean value, or false when absent.
func (s *Service) GetBool(key string) (bool, error) {
	value, err := s.Get(key)
	if err != nil || value == nil {
		return false, err
	}
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%s resolved to %T, not a boolean", key, value)
	}
	return b, nil
}

// RequireAll requires every key and waits for all of them. The returned map
// holds the resolved values; the error joins every failure in key order.
func RequireAll(ctx context.Context, svc *Service, keys ...string) (map[string]any, error) {
	values := make([]any, len(keys))
	failures := make([]error, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		future := svc.Require(key)
		g.Go(func() error {
			value, err := future.Await(gctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				failures[i] = err
				return nil
			}
			values[i] = value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resolved := make(map[string]any, len(keys))
	for i, key := range keys {
		if failures[i] == nil {
			resolved[key] = values[i]
		}
	}
	return resolved, errors.Join(failures...)
}
