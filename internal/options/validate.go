package options

import (
	"context"
	"errors"

	"github.com/sidereusnuntius/postdiaspora/internal/validate"
)

const (
	MessageRequired    = "A value is required."
	MessageWrongFormat = "Enter in the correct format."
	MessageNoFiltering = "Input filtering is not available."
)

// Error is a validation failure reported to an ErrorSink.
type Error struct {
	Setting string
	Code    string
	Message string
}

// Errors collects reported errors in order.
type Errors []Error

func (e *Errors) AddError(setting, code, message string) {
	*e = append(*e, Error{Setting: setting, Code: code, Message: message})
}

// ErrorCode is the code of the errors reported for a field.
func ErrorCode(id string) string {
	return id + "_error"
}

// Validate checks value against the rules of the field registered under id, in declaration order, and stops at
// the first failing rule. Failures are reported to sink; the return value tells whether the value passed.
// Regex and filter rules are skipped for empty values.
func (r *Registry) Validate(id string, value any, sink ErrorSink) bool {
	f, ok := r.Field(id)
	if !ok {
		return true
	}

	for _, rule := range f.Rules {
		var reason string
		switch rule.Kind {
		case RuleRequired:
			if isEmpty(value) {
				reason = MessageRequired
			}
		case RuleRegex:
			if !isEmpty(value) && !matchAll(value, rule) {
				reason = rule.message()
			}
		case RuleFilter:
			if isEmpty(value) {
				continue
			}
			passed, available := r.filterAll(value, rule)
			if !available {
				// Reported without the label, and the remaining rules still run.
				sink.AddError(id, ErrorCode(id), MessageNoFiltering)
				continue
			}
			if !passed {
				reason = rule.message()
			}
		}

		if reason != "" {
			sink.AddError(id, ErrorCode(id), f.Label+": "+reason)
			return false
		}
	}
	return true
}

// ValidateAll validates every registered field, in registration order, taking each submitted value by field
// name. It reports whether all of them passed.
func (r *Registry) ValidateAll(ctx context.Context, submitted Store, sink ErrorSink) bool {
	valid := true
	for _, id := range r.IDs() {
		f, ok := r.Field(id)
		if !ok {
			continue
		}
		value, _ := submitted.Get(ctx, f.Name)
		if !r.Validate(id, value, sink) {
			valid = false
		}
	}
	return valid
}

func (rule Rule) message() string {
	if rule.Message != "" {
		return rule.Message
	}
	return MessageWrongFormat
}

func matchAll(value any, rule Rule) bool {
	for _, s := range Strings(value) {
		if !rule.re.MatchString(s) {
			return false
		}
	}
	return true
}

func (r *Registry) filterAll(value any, rule Rule) (passed, available bool) {
	if r.filterer == nil {
		return false, false
	}
	for _, s := range Strings(value) {
		err := r.filterer.Filter(rule.Filter, s)
		if errors.Is(err, validate.ErrUnknownFilter) {
			return false, false
		}
		if err != nil {
			return false, true
		}
	}
	return true, true
}
