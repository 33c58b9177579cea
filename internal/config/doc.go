// Package config resolves process configuration from flat environment-style
// key-value inputs. Each key is validated against a declarative Rule, coerced
// into its type and defaulted when absent.
//
// # Schema
//
// A Registry maps keys to rules. Keys without an entry resolve to
// WildcardRule, which accepts any string and has no default:
//
//	registry := config.MustRegistry(map[string]config.Rule{
//	    "PORT": {Kind: config.KindNumber, Constraints: []config.Constraint{config.Min(0)}},
//	    "FEATURE_FLIPPING": {Kind: config.KindBoolean, Boolean: config.FlagGrammar(), Default: false},
//	})
//
// Rule defaults are checked against the rule's own constraints when the
// registry is built.
//
// # Access
//
// A Service reads raw values from a Source (the process environment by
// default) and offers three access modes:
//
//	svc.Has("PORT")                  // false for absent or invalid values
//	value, err := svc.Get("PORT")    // *InvalidConfigurationError on bad input
//	value, err = svc.Require("DATABASE_URL").Await(ctx)
//
// Require never fails synchronously. Its Future is rejected with an
// *InvalidConfigurationError or a *MissingConfigurationError. RequireAll waits
// on several keys and reports every failure at once.
//
// # Booleans
//
// Boolean rules accept "true" and "false" plus the tokens of their
// BooleanGrammar. FlagGrammar is the usual feature-flag vocabulary.
//
// # Testing
//
// Build a registry per test and read values from a MapSource, or from the
// environment with t.Setenv. Registry.Replace swaps a whole table and must
// not run concurrently with validation.
package config
