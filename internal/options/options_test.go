package options

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sidereusnuntius/postdiaspora/internal/validate"
)

var ctx = context.Background()

var abc = []Choice{{Value: "a", Label: "A"}, {Value: "b", Label: "B"}, {Value: "c", Label: "C"}}

func render(t *testing.T, r *Registry, id string) string {
	t.Helper()
	var b strings.Builder
	if err := r.Render(id).Render(ctx, &b); err != nil {
		t.Fatal(err)
	}
	return b.String()
}

func mustRegister(t *testing.T, r *Registry, id string, f Field) {
	t.Helper()
	if err := r.Register(id, f); err != nil {
		t.Fatal(err)
	}
}

func TestRenderText(t *testing.T) {
	cases := []struct {
		name     string
		group    string
		store    Values
		expected string
	}{
		{
			name:     "stored value",
			store:    Values{"diaspora_id": "alice@pod.example"},
			expected: `<input id="diaspora_id" class="regular-text" name="diaspora_id" type="text" value="alice@pod.example">`,
		},
		{
			name:     "default",
			store:    Values{"diaspora_id": ""},
			expected: `<input id="diaspora_id" class="regular-text" name="diaspora_id" type="text" value="you@pod">`,
		},
		{
			name:     "group",
			group:    "post_to_diaspora",
			store:    Values{},
			expected: `<input id="diaspora_id" class="regular-text" name="post_to_diaspora[diaspora_id]" type="text" value="you@pod">`,
		},
		{
			name:     "escaped",
			store:    Values{"diaspora_id": `"><script>`},
			expected: `<input id="diaspora_id" class="regular-text" name="diaspora_id" type="text" value="&#34;&gt;&lt;script&gt;">`,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := New(c.group, c.store, nil)
			mustRegister(t, r, "diaspora_id", Field{Name: "diaspora_id", Default: "you@pod"})
			if diff := cmp.Diff(c.expected, render(t, r, "diaspora_id")); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestRenderPassword(t *testing.T) {
	r := New("", Values{"secret": "hunter2"}, nil)
	mustRegister(t, r, "secret", Field{Name: "secret", Type: TypePassword, Class: "wide"})
	expected := `<input id="secret" class="wide" name="secret" type="password" value="hunter2">`
	if got := render(t, r, "secret"); got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}
}

func TestRenderSelect(t *testing.T) {
	r := New("", Values{"protocol": "b"}, nil)
	mustRegister(t, r, "protocol", Field{Name: "protocol", Type: TypeSelect, Choices: abc[:2]})

	expected := `<select id="protocol" class="regular-text" name="protocol">` +
		`<option value="a">A</option><option value="b" selected>B</option></select>`
	if diff := cmp.Diff(expected, render(t, r, "protocol")); diff != "" {
		t.Error(diff)
	}
}

func TestRenderSelectOneDefault(t *testing.T) {
	r := New("", Values{}, nil)
	mustRegister(t, r, "protocol", Field{Name: "protocol", Type: TypeSelectOne, Choices: abc, Default: "c"})

	out := render(t, r, "protocol")
	if strings.Count(out, "selected") != 1 || !strings.Contains(out, `<option value="c" selected>`) {
		t.Errorf("expected only c selected: %s", out)
	}
}

func TestRenderCheckbox(t *testing.T) {
	cases := []struct {
		name    string
		stored  any
		checked []string
	}{
		{"strings", []string{"a", "b"}, []string{"a", "b"}},
		{"decoded json", []any{"a", "b"}, []string{"a", "b"}},
		{"scalar", "c", []string{"c"}},
		{"default", nil, []string{"b"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			store := Values{}
			if c.stored != nil {
				store["notify"] = c.stored
			}
			r := New("opts", store, nil)
			mustRegister(t, r, "notify", Field{Name: "notify", Type: TypeCheckbox, Choices: abc, Default: "b"})

			out := render(t, r, "notify")
			if n := strings.Count(out, `name="opts[notify][]"`); n != len(abc) {
				t.Errorf("expected %d inputs, got %d", len(abc), n)
			}
			if n := strings.Count(out, " checked"); n != len(c.checked) {
				t.Errorf("expected %d checked, got %d: %s", len(c.checked), n, out)
			}
			for _, v := range c.checked {
				if !strings.Contains(out, `value="`+v+`" checked`) {
					t.Errorf("%s is not checked: %s", v, out)
				}
			}
		})
	}
}

func TestRenderUnknown(t *testing.T) {
	r := New("", Values{}, nil)
	mustRegister(t, r, "color", Field{Name: "color", Type: "color"})

	if out := render(t, r, "color"); out != "" {
		t.Errorf("expected no output, got %s", out)
	}
	if out := render(t, r, "missing"); out != "" {
		t.Errorf("expected no output, got %s", out)
	}
}

func TestRenderIdempotent(t *testing.T) {
	store := Values{"notify": []string{"a"}}
	r := New("g", store, nil)
	mustRegister(t, r, "notify", Field{Name: "notify", Type: TypeCheckbox, Choices: abc})

	first := render(t, r, "notify")
	second := render(t, r, "notify")
	if first != second {
		t.Errorf("renders differ:\n%s\n%s", first, second)
	}
	if diff := cmp.Diff(Values{"notify": []string{"a"}}, store); diff != "" {
		t.Errorf("store was modified: %s", diff)
	}
}

func TestRegisterInvalidRegex(t *testing.T) {
	r := New("", nil, nil)
	err := r.Register("x", Field{Name: "x", Rules: []Rule{Regex("(", "")}})
	if !errors.Is(err, ErrInvalidRule) {
		t.Errorf("expected ErrInvalidRule, got %v", err)
	}
	if _, ok := r.Field("x"); ok {
		t.Error("field with an invalid rule was registered")
	}
}

func TestUnknownRuleKindIsSkipped(t *testing.T) {
	r := New("", nil, nil)
	mustRegister(t, r, "x", Field{Name: "x", Label: "X", Rules: []Rule{{Kind: "minlength"}, Required()}})

	var errs Errors
	if !r.Validate("x", "anything", &errs) || len(errs) != 0 {
		t.Errorf("unknown rule was not skipped: %v", errs)
	}
	if r.Validate("x", "", &errs) {
		t.Error("the rules after an unknown one still run")
	}
	if diff := cmp.Diff(Errors{{Setting: "x", Code: "x_error", Message: "X: " + MessageRequired}}, errs); diff != "" {
		t.Error(diff)
	}
}

func TestRegisterOverwrites(t *testing.T) {
	r := New("", nil, nil)
	mustRegister(t, r, "x", Field{Name: "x", Label: "First"})
	mustRegister(t, r, "y", Field{Name: "y"})
	mustRegister(t, r, "x", Field{Name: "x", Label: "Second"})

	f, _ := r.Field("x")
	if f.Label != "Second" {
		t.Errorf("expected the second descriptor, got %s", f.Label)
	}
	if diff := cmp.Diff([]string{"x", "y"}, r.IDs()); diff != "" {
		t.Error(diff)
	}
}

func diasporaID() Field {
	return Field{
		Label: "Diaspora ID",
		Name:  "diaspora_id",
		Rules: []Rule{Required(), Regex(`^[^@]+@[^@]+$`, "Use username@server.")},
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name     string
		value    any
		expected Errors
	}{
		{"valid", "alice@pod.example", nil},
		{
			name:  "empty stops at required",
			value: "",
			expected: Errors{
				{Setting: "diaspora_id", Code: "diaspora_id_error", Message: "Diaspora ID: A value is required."},
			},
		},
		{
			name:  "absent",
			value: nil,
			expected: Errors{
				{Setting: "diaspora_id", Code: "diaspora_id_error", Message: "Diaspora ID: A value is required."},
			},
		},
		{
			name:  "regex",
			value: "alice",
			expected: Errors{
				{Setting: "diaspora_id", Code: "diaspora_id_error", Message: "Diaspora ID: Use username@server."},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := New("", nil, nil)
			mustRegister(t, r, "diaspora_id", diasporaID())

			var errs Errors
			valid := r.Validate("diaspora_id", c.value, &errs)
			if valid != (len(c.expected) == 0) {
				t.Errorf("unexpected result %v", valid)
			}
			if diff := cmp.Diff(c.expected, errs); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestValidateDeclarationOrder(t *testing.T) {
	r := New("", nil, nil)
	mustRegister(t, r, "x", Field{
		Label: "X",
		Name:  "x",
		Rules: []Rule{Regex(`^\d+$`, ""), Required()},
	})

	var errs Errors
	r.Validate("x", "abc", &errs)
	if len(errs) != 1 || errs[0].Message != "X: "+MessageWrongFormat {
		t.Errorf("unexpected errors %v", errs)
	}

	// Regex skips empty values, required still runs afterwards.
	errs = nil
	r.Validate("x", "", &errs)
	if len(errs) != 1 || errs[0].Message != "X: "+MessageRequired {
		t.Errorf("unexpected errors %v", errs)
	}
}

func TestValidateFilter(t *testing.T) {
	port := Field{Label: "Port", Name: "port", Rules: []Rule{Filter(validate.KindInt, "")}}

	cases := []struct {
		name     string
		filterer Filterer
		field    Field
		value    any
		expected []string
	}{
		{"valid", FilterFunc(validate.Filter), port, "4000", nil},
		{"empty skipped", FilterFunc(validate.Filter), port, "", nil},
		{"rejected", FilterFunc(validate.Filter), port, "80a", []string{"Port: " + MessageWrongFormat}},
		{
			name:     "custom message",
			filterer: FilterFunc(validate.Filter),
			field:    Field{Label: "Mail", Name: "mail", Rules: []Rule{Filter(validate.KindEmail, "Not an email.")}},
			value:    "nope",
			expected: []string{"Mail: Not an email."},
		},
		{"no filterer", nil, port, "4000", []string{MessageNoFiltering}},
		{
			name:     "unknown kind",
			filterer: FilterFunc(validate.Filter),
			field:    Field{Label: "X", Name: "x", Rules: []Rule{Filter("regexp", "")}},
			value:    "x",
			expected: []string{MessageNoFiltering},
		},
		{
			name:     "unavailable does not stop the next rules",
			filterer: nil,
			field:    Field{Label: "P", Name: "p", Rules: []Rule{Filter(validate.KindInt, ""), Regex(`^\d+$`, "")}},
			value:    "x",
			expected: []string{MessageNoFiltering, "P: " + MessageWrongFormat},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := New("", nil, c.filterer)
			mustRegister(t, r, "f", c.field)

			var errs Errors
			r.Validate("f", c.value, &errs)
			var messages []string
			for _, e := range errs {
				messages = append(messages, e.Message)
				if e.Code != "f_error" {
					t.Errorf("unexpected code %s", e.Code)
				}
			}
			if diff := cmp.Diff(c.expected, messages); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestValidateAll(t *testing.T) {
	r := New("", nil, FilterFunc(validate.Filter))
	mustRegister(t, r, "diaspora_id", diasporaID())
	mustRegister(t, r, "secret", Field{Label: "Secret", Name: "oauth2_secret", Rules: []Rule{Required()}})
	mustRegister(t, r, "port", Field{Label: "Port", Name: "port", Rules: []Rule{Filter(validate.KindInt, "")}})

	var errs Errors
	valid := r.ValidateAll(ctx, Values{"diaspora_id": "", "port": "x"}, &errs)
	if valid {
		t.Error("expected validation to fail")
	}

	var settings []string
	for _, e := range errs {
		settings = append(settings, e.Setting)
	}
	if diff := cmp.Diff([]string{"diaspora_id", "secret", "port"}, settings); diff != "" {
		t.Error(diff)
	}
}

func TestSubmitted(t *testing.T) {
	r := New("opts", nil, nil)
	mustRegister(t, r, "id", Field{Name: "diaspora_id"})
	mustRegister(t, r, "notify", Field{Name: "notify", Type: TypeCheckbox, Choices: abc})
	mustRegister(t, r, "port", Field{Name: "port"})

	form := url.Values{
		"opts[diaspora_id]": {" alice@pod.example "},
		"opts[notify][]":    {"a", "c"},
		"unrelated":         {"x"},
	}
	expected := Values{
		"diaspora_id": "alice@pod.example",
		"notify":      []string{"a", "c"},
	}
	if diff := cmp.Diff(expected, r.Submitted(form)); diff != "" {
		t.Error(diff)
	}

	expected = Values{"notify": []string{}}
	if diff := cmp.Diff(expected, r.Submitted(url.Values{})); diff != "" {
		t.Error(diff)
	}
}
