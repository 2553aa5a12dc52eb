package classify

import (
	"testing"

	"github.com/nao1215/scamguard/internal/model"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected model.ItemKind
	}{
		{"plain email", "user@example.com", model.ItemEmail},
		{"email with plus tag", "first.last+tag@mail.example.org", model.ItemEmail},
		{"email with surrounding spaces", "  user@example.com  ", model.ItemEmail},
		{"international phone", "+12345678901", model.ItemPhone},
		{"local phone", "1234567", model.ItemPhone},
		{"fifteen digit phone", "123456789012345", model.ItemPhone},
		{"too short for phone", "123456", model.ItemCredential},
		{"too long for phone", "1234567890123456", model.ItemCredential},
		{"phone with dashes", "123-456-7890", model.ItemCredential},
		{"password", "hunter2", model.ItemCredential},
		{"login", "john_doe", model.ItemCredential},
		{"email without tld", "user@localhost", model.ItemCredential},
		{"empty", "", model.ItemCredential},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tc.input)
			if got.Kind != tc.expected {
				t.Errorf("Classify(%q).Kind = %v, expected %v", tc.input, got.Kind, tc.expected)
			}
		})
	}
}

func TestClassifyTrimsValue(t *testing.T) {
	t.Parallel()

	got := Classify("\t+1234567890\n")
	if got.Value != "+1234567890" {
		t.Errorf("Value = %q, expected trimmed value", got.Value)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	t.Parallel()

	inputs := []string{"user@example.com", "+12345678901", "s3cret"}
	for _, in := range inputs {
		first := Classify(in)
		for range 10 {
			if Classify(in) != first {
				t.Fatalf("Classify(%q) is not deterministic", in)
			}
		}
	}
}

func TestNormalizeLink(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"bare domain gets https", "example.com", "https://example.com", true},
		{"domain with path", "example.com/login?x=1", "https://example.com/login?x=1", true},
		{"explicit http", "http://example.com", "http://example.com", true},
		{"explicit https with port", "https://example.com:8443/a", "https://example.com:8443/a", true},
		{"plain word", "hello", "", false},
		{"sentence", "check this out", "", false},
		{"underscore in host", "exa_mple.com", "", false},
		{"ftp scheme", "ftp://example.com", "", false},
		{"empty", "", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := NormalizeLink(tc.input)
			if ok != tc.ok {
				t.Fatalf("NormalizeLink(%q) ok = %v, expected %v", tc.input, ok, tc.ok)
			}
			if got != tc.expected {
				t.Errorf("NormalizeLink(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestRegistrableDomain(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		link     string
		expected string
	}{
		{"https://login.example.co.uk/path", "example.co.uk"},
		{"https://www.example.com", "example.com"},
		{"https://localhost", "localhost"},
	}

	for _, tc := range testCases {
		t.Run(tc.link, func(t *testing.T) {
			t.Parallel()
			if got := RegistrableDomain(tc.link); got != tc.expected {
				t.Errorf("RegistrableDomain(%q) = %q, expected %q", tc.link, got, tc.expected)
			}
		})
	}
}
