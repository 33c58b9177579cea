package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the target type a raw configuration string is coerced into.
type Kind int

const (
	// KindAny accepts the raw string unchanged.
	KindAny Kind = iota
	// KindNumber coerces into a float64.
	KindNumber
	// KindString keeps the raw string.
	KindString
	// KindBoolean coerces through the rule's BooleanGrammar.
	KindBoolean
	// KindURI keeps the raw string once it parses as a URI.
	KindURI
)

// String returns the schema name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	case KindURI:
		return "uri"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ConstraintKind names a constraint predicate.
type ConstraintKind string

const (
	ConstraintMin     ConstraintKind = "min"
	ConstraintMax     ConstraintKind = "max"
	ConstraintOneOf   ConstraintKind = "oneof"
	ConstraintScheme  ConstraintKind = "scheme"
	ConstraintPattern ConstraintKind = "pattern"
)

// Constraint is a single predicate a coerced value must satisfy.
// Build one with Min, Max, OneOf, Scheme or Pattern.
type Constraint struct {
	Kind  ConstraintKind
	Param string

	number  float64
	values  []string
	pattern *regexp.Regexp
}

// Min requires a number to be at least n, or a string to be at least n
// characters long.
func Min(n float64) Constraint {
	return Constraint{Kind: ConstraintMin, Param: formatNumber(n), number: n}
}

// Max requires a number to be at most n, or a string to be at most n
// characters long.
func Max(n float64) Constraint {
	return Constraint{Kind: ConstraintMax, Param: formatNumber(n), number: n}
}

// OneOf restricts a string to an enumeration.
func OneOf(values ...string) Constraint {
	quoted := make([]string, len(values))
	for i, v := range values {
		if strings.ContainsAny(v, " \t") {
			v = "'" + v + "'"
		}
		quoted[i] = v
	}
	return Constraint{
		Kind:   ConstraintOneOf,
		Param:  strings.Join(quoted, " "),
		values: append([]string(nil), values...),
	}
}

// Scheme requires a URI whose scheme is exactly one of schemes. Matching is case-sensitive.
func Scheme(schemes ...string) Constraint {
	return Constraint{
		Kind:   ConstraintScheme,
		Param:  strings.Join(schemes, " "),
		values: append([]string(nil), schemes...),
	}
}

// Pattern requires a string to match the regular expression expr.
// It panics if expr does not compile, like regexp.MustCompile.
func Pattern(expr string) Constraint {
	return Constraint{Kind: ConstraintPattern, Param: expr, pattern: regexp.MustCompile(expr)}
}

// String renders the constraint as it appears in schema descriptions.
func (c Constraint) String() string {
	return string(c.Kind) + "=" + c.Param
}

// tag is the go-playground/validator tag for the constraint. Pattern has no tag.
func (c Constraint) tag() string {
	return string(c.Kind) + "=" + c.Param
}

// reason is the human-readable failure reason for the constraint.
func (c Constraint) reason(kind Kind) string {
	switch c.Kind {
	case ConstraintMin:
		if kind == KindNumber {
			return "must be greater than or equal to " + c.Param
		}
		return "length must be at least " + c.Param + " characters long"
	case ConstraintMax:
		if kind == KindNumber {
			return "must be less than or equal to " + c.Param
		}
		return "length must be less than or equal to " + c.Param + " characters long"
	case ConstraintOneOf:
		return "must be one of [" + strings.Join(c.values, ", ") + "]"
	case ConstraintScheme:
		return "must be a valid uri with a scheme matching " + strings.Join(c.values, "|")
	case ConstraintPattern:
		return "fails to match the required pattern: " + c.Param
	default:
		return "fails constraint " + c.String()
	}
}

// appliesTo reports whether the constraint can be evaluated against values of kind.
func (c Constraint) appliesTo(kind Kind) bool {
	switch c.Kind {
	case ConstraintMin, ConstraintMax:
		return kind == KindNumber || kind == KindString || kind == KindURI
	case ConstraintOneOf, ConstraintPattern:
		return kind == KindString || kind == KindURI
	case ConstraintScheme:
		return kind == KindURI
	default:
		return false
	}
}

// BooleanGrammar is the token vocabulary a Boolean rule accepts in addition to
// the literals "true" and "false".
type BooleanGrammar struct {
	Truthy          []string
	Falsy           []string
	CaseInsensitive bool
}

// FlagGrammar is the grammar used by feature flags: 1/enabled/on/yes and
// 0/disabled/off/no, compared case-insensitively.
func FlagGrammar() *BooleanGrammar {
	return &BooleanGrammar{
		Truthy:          []string{"1", "enabled", "on", "yes"},
		Falsy:           []string{"0", "disabled", "off", "no"},
		CaseInsensitive: true,
	}
}

// Parse maps token to a boolean. The second result is false when the token
// belongs to neither vocabulary. A nil grammar only knows the literals.
func (g *BooleanGrammar) Parse(token string) (value bool, ok bool) {
	var truthy, falsy []string
	insensitive := false
	if g != nil {
		truthy, falsy, insensitive = g.Truthy, g.Falsy, g.CaseInsensitive
	}
	match := func(candidate string) bool {
		if insensitive {
			return strings.EqualFold(candidate, token)
		}
		return candidate == token
	}

	if match("true") {
		return true, true
	}
	if match("false") {
		return false, true
	}
	for _, t := range truthy {
		if match(t) {
			return true, true
		}
	}
	for _, f := range falsy {
		if match(f) {
			return false, true
		}
	}
	return false, false
}

func (g *BooleanGrammar) clone() *BooleanGrammar {
	if g == nil {
		return nil
	}
	return &BooleanGrammar{
		Truthy:          append([]string(nil), g.Truthy...),
		Falsy:           append([]string(nil), g.Falsy...),
		CaseInsensitive: g.CaseInsensitive,
	}
}

// overlap returns a token present in both vocabularies, if any.
func (g *BooleanGrammar) overlap() (string, bool) {
	if g == nil {
		return "", false
	}
	for _, t := range g.Truthy {
		for _, f := range g.Falsy {
			if t == f || (g.CaseInsensitive && strings.EqualFold(t, f)) {
				return t, true
			}
		}
	}
	return "", false
}

// Rule is the validation, coercion and default contract of one key.
type Rule struct {
	Kind        Kind
	Constraints []Constraint
	// Default is substituted when the key is absent. A nil Default means the
	// key resolves to absent.
	Default     any
	Description string
	// Boolean holds the token grammar of a KindBoolean rule.
	Boolean *BooleanGrammar
}

// WildcardRule is the rule of every key the registry does not know: no
// constraints, no default, the raw string passes through.
var WildcardRule = Rule{Kind: KindAny}

// HasDefault reports whether the rule substitutes a value for an absent key.
func (r Rule) HasDefault() bool {
	return r.Default != nil
}

func (r Rule) clone() Rule {
	out := r
	out.Constraints = append([]Constraint(nil), r.Constraints...)
	out.Boolean = r.Boolean.clone()
	return out
}

// normalizeDefault converts the rule's default into the type produced by
// coercion, or fails when the default is of the wrong type.
func (r Rule) normalizeDefault() (any, error) {
	if r.Default == nil {
		return nil, nil
	}
	switch r.Kind {
	case KindAny:
		return r.Default, nil
	case KindNumber:
		switch d := r.Default.(type) {
		case float64:
			return d, nil
		case float32:
			return float64(d), nil
		case int:
			return float64(d), nil
		case int64:
			return float64(d), nil
		case int32:
			return float64(d), nil
		case uint:
			return float64(d), nil
		}
	case KindString, KindURI:
		if d, ok := r.Default.(string); ok {
			return d, nil
		}
	case KindBoolean:
		if d, ok := r.Default.(bool); ok {
			return d, nil
		}
	}
	return nil, fmt.Errorf("default %v (%T) is not a %s", r.Default, r.Default, r.Kind)
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
