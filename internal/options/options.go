// Package options declares the fields of a settings page, renders them as form controls reflecting the stored
// values, and validates submitted values against the rules each field declares.
package options

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
)

type FieldType string

const (
	TypeText      FieldType = "text"
	TypePassword  FieldType = "password"
	TypeCheckbox  FieldType = "checkbox"
	TypeSelect    FieldType = "select"
	TypeSelectOne FieldType = "select-one"
)

const DefaultClass = "regular-text"

type RuleKind string

const (
	RuleRequired RuleKind = "required"
	RuleRegex    RuleKind = "regex"
	RuleFilter   RuleKind = "filter"
)

var ErrInvalidRule = errors.New("invalid validation rule")

// Choice is one of the values offered by a checkbox or select field.
type Choice struct {
	Value string
	Label string
}

// Rule is a validation step. Message replaces the generic error text of regex and filter rules.
type Rule struct {
	Kind    RuleKind
	Pattern string
	Filter  string
	Message string

	re *regexp.Regexp
}

func Required() Rule {
	return Rule{Kind: RuleRequired}
}

func Regex(pattern, message string) Rule {
	return Rule{Kind: RuleRegex, Pattern: pattern, Message: message}
}

func Filter(kind, message string) Rule {
	return Rule{Kind: RuleFilter, Filter: kind, Message: message}
}

// Field describes a settings field. Name is the key of the value in the store and in the submitted form.
// Default is used when the stored value is absent or empty; it may be a string or a []string for checkboxes.
type Field struct {
	Class   string
	Default any
	Label   string
	Name    string
	Type    FieldType
	Choices []Choice
	Rules   []Rule
}

// Store gives read access to the stored option values, keyed by field name.
type Store interface {
	Get(ctx context.Context, name string) (any, bool)
}

// Values is a Store backed by a map. It is also how submitted forms are passed to ValidateAll.
type Values map[string]any

func (v Values) Get(ctx context.Context, name string) (any, bool) {
	value, ok := v[name]
	return value, ok
}

// ErrorSink receives validation errors. setting is the field id.
type ErrorSink interface {
	AddError(setting, code, message string)
}

// Filterer checks a value against a named filter kind.
type Filterer interface {
	Filter(kind, value string) error
}

type FilterFunc func(kind, value string) error

func (f FilterFunc) Filter(kind, value string) error {
	return f(kind, value)
}

// Registry holds the fields of one settings page. Fields are registered at startup; rendering and validation
// may then run concurrently.
type Registry struct {
	group    string
	store    Store
	filterer Filterer

	mu     sync.RWMutex
	fields map[string]Field
	order  []string
}

// New creates a registry. When group is not empty, inputs are named group[name]. filterer may be nil, in which
// case filter rules report that filtering is unavailable.
func New(group string, store Store, filterer Filterer) *Registry {
	return &Registry{
		group:    group,
		store:    store,
		filterer: filterer,
		fields:   make(map[string]Field),
	}
}

// Register stores the field under id, replacing any previous field with the same id. Rules of an unknown kind
// are kept and skipped by Validate.
func (r *Registry) Register(id string, f Field) error {
	if f.Class == "" {
		f.Class = DefaultClass
	}
	if f.Type == "" {
		f.Type = TypeText
	}
	if f.Default == nil {
		f.Default = ""
	}

	rules := make([]Rule, len(f.Rules))
	for i, rule := range f.Rules {
		switch rule.Kind {
		case RuleRegex:
			re, err := regexp.Compile(rule.Pattern)
			if err != nil {
				return fmt.Errorf("%w: field %s: %w", ErrInvalidRule, id, err)
			}
			rule.re = re
		case RuleFilter:
			if rule.Filter == "" {
				return fmt.Errorf("%w: field %s: filter kind is empty", ErrInvalidRule, id)
			}
		}
		rules[i] = rule
	}
	f.Rules = rules
	f.Choices = append([]Choice(nil), f.Choices...)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.fields[id]; !exists {
		r.order = append(r.order, id)
	}
	r.fields[id] = f
	return nil
}

func (r *Registry) Field(id string) (Field, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fields[id]
	return f, ok
}

// IDs returns the registered field ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// InputName is the name attribute of the field's inputs.
func (r *Registry) InputName(f Field) string {
	if r.group == "" {
		return f.Name
	}
	return r.group + "[" + f.Name + "]"
}

// Value resolves the current value of a field: the stored value when present and not empty, else the default.
func (r *Registry) Value(ctx context.Context, f Field) any {
	if r.store != nil {
		if v, ok := r.store.Get(ctx, f.Name); ok && !isEmpty(v) {
			return v
		}
	}
	return f.Default
}
