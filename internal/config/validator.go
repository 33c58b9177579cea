package config

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// numberPattern is the accepted decimal notation. It excludes the hex, binary,
// underscore and Inf/NaN forms strconv would otherwise accept.
var numberPattern = regexp.MustCompile(`(?i)^\s*[+-]?(\d+(\.\d*)?|\.\d+)(e[+-]?\d+)?\s*$`)

// maxSafeNumber is the largest integer a float64 holds without loss.
const maxSafeNumber = 1<<53 - 1

// ValidationError is a coercion or constraint violation for one key.
type ValidationError struct {
	Key string
	// Constraint is the violated constraint, or the empty string when the raw
	// value could not be coerced at all.
	Constraint string
	Reason     string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Outcome is the result of validating one key: either a resolved value,
// possibly absent, or a ValidationError. Never both.
type Outcome struct {
	value any
	err   *ValidationError
}

// Ok builds a successful outcome. A nil value is the absent marker.
func Ok(value any) Outcome {
	return Outcome{value: value}
}

// Failed builds a failed outcome.
func Failed(err *ValidationError) Outcome {
	return Outcome{err: err}
}

// OK reports whether validation succeeded.
func (o Outcome) OK() bool {
	return o.err == nil
}

// Value returns the resolved value and whether it is present. It returns
// (nil, false) for failed outcomes.
func (o Outcome) Value() (any, bool) {
	if o.err != nil {
		return nil, false
	}
	return o.value, o.value != nil
}

// Err returns the validation error, or nil for successful outcomes.
func (o Outcome) Err() error {
	if o.err == nil {
		return nil
	}
	return o.err
}

// Validator resolves raw inputs against the rules of a Registry.
type Validator struct {
	registry *Registry
	validate *validator.Validate
}

// NewValidator creates a Validator reading rules from registry.
func NewValidator(registry *Registry) *Validator {
	return &Validator{
		registry: registry,
		validate: newConstraintValidator(),
	}
}

// Validate resolves key given its raw input. present is false when the source
// has no value for the key. The result depends only on the rule and the input.
func (v *Validator) Validate(key, raw string, present bool) Outcome {
	rule := v.registry.Lookup(key)

	if !present {
		if rule.HasDefault() {
			return Ok(rule.Default)
		}
		return Ok(nil)
	}

	value, err := coerce(rule, raw)
	if err != nil {
		err.Key = key
		return Failed(err)
	}
	if err := checkConstraints(v.validate, rule, value); err != nil {
		err.Key = key
		return Failed(err)
	}
	return Ok(value)
}

// coerce converts raw into the rule's kind.
func coerce(rule Rule, raw string) (any, *ValidationError) {
	if rule.Kind != KindAny && raw == "" {
		return nil, &ValidationError{Reason: "is not allowed to be empty"}
	}

	switch rule.Kind {
	case KindNumber:
		if !numberPattern.MatchString(raw) {
			return nil, &ValidationError{Reason: "is not a number"}
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsInf(n, 0) {
			return nil, &ValidationError{Reason: "is not a number"}
		}
		if math.Abs(n) > maxSafeNumber {
			return nil, &ValidationError{Reason: "must be a safe number between -9007199254740991 and 9007199254740991"}
		}
		return n, nil
	case KindBoolean:
		b, ok := rule.Boolean.Parse(raw)
		if !ok {
			return nil, &ValidationError{Reason: "is not a recognized boolean token"}
		}
		return b, nil
	default:
		return raw, nil
	}
}

// checkConstraints evaluates every constraint of rule against an already
// coerced value. URI rules additionally require a parseable URI.
func checkConstraints(validate *validator.Validate, rule Rule, value any) *ValidationError {
	if rule.Kind == KindURI {
		if s, _ := value.(string); strings.IndexFunc(s, isDisallowedURIRune) >= 0 {
			return &ValidationError{Constraint: "uri", Reason: "must be a valid uri"}
		}
		if err := validate.Var(value, "uri"); err != nil {
			return &ValidationError{Constraint: "uri", Reason: "must be a valid uri"}
		}
	}

	for _, c := range rule.Constraints {
		var ok bool
		if c.Kind == ConstraintPattern {
			s, isString := value.(string)
			ok = isString && c.pattern.MatchString(s)
		} else {
			ok = validate.Var(value, c.tag()) == nil
		}
		if !ok {
			return &ValidationError{Constraint: c.String(), Reason: c.reason(rule.Kind)}
		}
	}
	return nil
}

// newConstraintValidator returns a validator with the scheme check registered.
func newConstraintValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for empty tags or nil functions.
	_ = v.RegisterValidation("scheme", hasScheme)
	return v
}

// isDisallowedURIRune reports runes that must be percent-encoded in a URI:
// anything outside printable ASCII plus the RFC 3986 excluded delimiters.
func isDisallowedURIRune(r rune) bool {
	return r <= ' ' || r >= 0x7f || strings.ContainsRune(`"<>\^`+"`"+`{|}`, r)
}

// hasScheme implements the "scheme" tag: the field parses as a URI whose
// scheme is exactly one of the space-separated schemes in the tag parameter.
// url.Parse lowercases the scheme, so the comparison uses the raw prefix.
func hasScheme(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if _, err := url.Parse(raw); err != nil {
		return false
	}
	prefix, _, found := strings.Cut(raw, ":")
	if !found || prefix == "" {
		return false
	}
	for _, scheme := range strings.Fields(fl.Param()) {
		if prefix == scheme {
			return true
		}
	}
	return false
}
