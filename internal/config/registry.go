package config

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"
)

// Registry maps configuration keys to their rules. Keys are case-sensitive.
// Lookups never fail: unknown keys resolve to WildcardRule.
//
// The table can be swapped wholesale with Replace, which is meant for tests
// and must not race with live validation.
type Registry struct {
	rules atomic.Pointer[map[string]Rule]
}

// NewRegistry builds a registry from rules. Every rule is checked so that its
// constraints fit its kind and its default satisfies its own constraints.
func NewRegistry(rules map[string]Rule) (*Registry, error) {
	table, err := buildTable(rules)
	if err != nil {
		return nil, err
	}
	r := &Registry{}
	r.rules.Store(&table)
	return r, nil
}

// MustRegistry is like NewRegistry but panics on an invalid rule table.
func MustRegistry(rules map[string]Rule) *Registry {
	r, err := NewRegistry(rules)
	if err != nil {
		panic(fmt.Sprintf("invalid configuration schema: %v", err))
	}
	return r
}

// Lookup returns the rule registered for key, or WildcardRule.
func (r *Registry) Lookup(key string) Rule {
	if r == nil {
		return WildcardRule
	}
	table := r.rules.Load()
	if table == nil {
		return WildcardRule
	}
	if rule, ok := (*table)[key]; ok {
		return rule.clone()
	}
	return WildcardRule
}

// Keys returns the registered keys in lexical order.
func (r *Registry) Keys() []string {
	if r == nil || r.rules.Load() == nil {
		return nil
	}
	table := *r.rules.Load()
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Replace swaps the whole rule table. The previous table stays untouched.
func (r *Registry) Replace(rules map[string]Rule) error {
	table, err := buildTable(rules)
	if err != nil {
		return err
	}
	r.rules.Store(&table)
	return nil
}

// KeyDescription documents one registered key. It never carries a value
// read from the environment.
type KeyDescription struct {
	Key         string   `json:"key" yaml:"key"`
	Type        string   `json:"type" yaml:"type"`
	Constraints []string `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Default     any      `json:"default,omitempty" yaml:"default,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Truthy      []string `json:"truthy,omitempty" yaml:"truthy,omitempty"`
	Falsy       []string `json:"falsy,omitempty" yaml:"falsy,omitempty"`
}

// Describe lists every registered key with its contract, ordered by key.
func (r *Registry) Describe() []KeyDescription {
	keys := r.Keys()
	out := make([]KeyDescription, 0, len(keys))
	for _, key := range keys {
		rule := r.Lookup(key)
		d := KeyDescription{
			Key:         key,
			Type:        rule.Kind.String(),
			Default:     rule.Default,
			Description: rule.Description,
		}
		for _, c := range rule.Constraints {
			d.Constraints = append(d.Constraints, c.String())
		}
		if rule.Boolean != nil {
			d.Truthy = append([]string(nil), rule.Boolean.Truthy...)
			d.Falsy = append([]string(nil), rule.Boolean.Falsy...)
		}
		out = append(out, d)
	}
	return out
}

func buildTable(rules map[string]Rule) (map[string]Rule, error) {
	validate := newConstraintValidator()
	table := make(map[string]Rule, len(rules))
	for key, rule := range rules {
		if key == "" {
			return nil, fmt.Errorf("rule registered under an empty key")
		}
		rule = rule.clone()
		if err := checkRule(rule); err != nil {
			return nil, fmt.Errorf("rule %s: %w", key, err)
		}

		def, err := rule.normalizeDefault()
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", key, err)
		}
		rule.Default = def
		if def != nil && rule.Kind != KindAny {
			if verr := checkConstraints(validate, rule, def); verr != nil {
				return nil, fmt.Errorf("rule %s: default %v %s", key, def, verr.Reason)
			}
		}
		table[key] = rule
	}
	return table, nil
}

// checkRule rejects constraints the validator cannot evaluate for the rule's kind.
func checkRule(rule Rule) error {
	if rule.Kind < KindAny || rule.Kind > KindURI {
		return fmt.Errorf("unknown kind %s", rule.Kind)
	}
	if rule.Boolean != nil && rule.Kind != KindBoolean {
		return fmt.Errorf("boolean grammar on a %s rule", rule.Kind)
	}
	if token, ok := rule.Boolean.overlap(); ok {
		return fmt.Errorf("token %q is both truthy and falsy", token)
	}
	for _, c := range rule.Constraints {
		if !c.appliesTo(rule.Kind) {
			return fmt.Errorf("constraint %s does not apply to a %s rule", c, rule.Kind)
		}
		switch c.Kind {
		case ConstraintMin, ConstraintMax:
			if rule.Kind != KindNumber && c.number != math.Trunc(c.number) {
				return fmt.Errorf("length constraint %s must be an integer", c)
			}
		case ConstraintOneOf, ConstraintScheme:
			if len(c.values) == 0 {
				return fmt.Errorf("constraint %s has no values", c.Kind)
			}
			for _, v := range c.values {
				if v == "" || strings.ContainsAny(v, ",|'") ||
					(c.Kind == ConstraintScheme && strings.ContainsAny(v, " \t")) {
					return fmt.Errorf("constraint %s has unsupported value %q", c.Kind, v)
				}
			}
		case ConstraintPattern:
			if c.pattern == nil {
				return fmt.Errorf("pattern constraint %q was not built with Pattern", c.Param)
			}
		}
	}
	return nil
}
