package options

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

func isEmpty(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	return false
}

// Strings flattens a value to its string elements. Scalars give one element.
func Strings(v any) []string {
	switch v := v.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			out = append(out, fmt.Sprint(e))
		}
		return out
	}
	return []string{fmt.Sprint(v)}
}

func text(v any) string {
	return strings.Join(Strings(v), ",")
}

// contains tells whether choice is the value, or one of its elements when the value is a collection.
func contains(v any, choice string) bool {
	return slices.Contains(Strings(v), choice)
}

// Submitted extracts the values of the registered fields from a posted form, keyed by field name. Checkbox
// fields always yield a []string, empty when nothing was checked.
func (r *Registry) Submitted(form url.Values) Values {
	values := make(Values)
	for _, id := range r.IDs() {
		f, ok := r.Field(id)
		if !ok {
			continue
		}

		name := r.InputName(f)
		if f.Type == TypeCheckbox {
			values[f.Name] = append([]string{}, form[name+"[]"]...)
			continue
		}
		if _, ok := form[name]; ok {
			values[f.Name] = strings.TrimSpace(form.Get(name))
		}
	}
	return values
}
