package validate

import (
	"errors"
	"testing"
)

func TestFilter(t *testing.T) {
	cases := []struct {
		kind  string
		value string
		ok    bool
	}{
		{KindEmail, "alice@example.com", true},
		{KindEmail, "alice", false},
		{KindURL, "https://pod.example/u/alice", true},
		{KindURL, "pod example", false},
		{KindInt, "4000", true},
		{KindInt, "-12", true},
		{KindInt, "40.5", false},
		{KindInt, "abc", false},
		{KindFloat, "40.5", true},
		{KindFloat, "1e3", true},
		{KindFloat, "forty", false},
		{KindBoolean, "on", true},
		{KindBoolean, "maybe", false},
		{KindIP, "192.168.0.1", true},
		{KindIP, "::1", true},
		{KindIP, "300.1.1.1", false},
		{KindMAC, "00:1a:2b:3c:4d:5e", true},
		{KindMAC, "00:1a", false},
		{KindDomain, "pod.example.org", true},
		{KindDomain, "bad domain", false},
	}

	for _, c := range cases {
		t.Run(c.kind+"/"+c.value, func(t *testing.T) {
			err := Filter(c.kind, c.value)
			if c.ok && err != nil {
				t.Errorf("expected %q to pass, got %v", c.value, err)
			}
			if !c.ok && !errors.Is(err, ErrFiltered) {
				t.Errorf("expected %q to be filtered, got %v", c.value, err)
			}
		})
	}
}

func TestFilterUnknownKind(t *testing.T) {
	if err := Filter("regexp", "x"); !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("expected ErrUnknownFilter, got %v", err)
	}
}

func TestLoginForm(t *testing.T) {
	if err := LoginForm("admin", "correct horse"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := LoginForm("", "short"); err == nil {
		t.Error("expected an error")
	}
}

func TestPostForm(t *testing.T) {
	if err := PostForm("Hello", "world"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := PostForm("", ""); err == nil {
		t.Error("expected an error")
	}
}
