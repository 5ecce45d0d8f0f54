package placeholders

import (
	"testing"

	"github.com/nikpietanze/Pressr/internal/variables"
)

func TestApplyRecord(t *testing.T) {
	record := map[string]string{"id": "42", "name": "widget"}

	got := Apply("/items/{{id}}?name={{name}}", record, nil)
	want := "/items/42?name=widget"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestApplyStoreFallback(t *testing.T) {
	store := variables.NewStore()
	store.Set("token", "abc123")

	got := Apply("Bearer {{token}}", nil, store)
	if got != "Bearer abc123" {
		t.Errorf("expected store value, got %q", got)
	}
}

func TestApplyRecordBeatsStore(t *testing.T) {
	store := variables.NewStore()
	store.Set("id", "from-store")
	record := map[string]string{"id": "from-record"}

	got := Apply("{{id}}", record, store)
	if got != "from-record" {
		t.Errorf("expected record to take precedence, got %q", got)
	}
}

func TestApplyDefaults(t *testing.T) {
	tests := []struct {
		name     string
		template string
		record   map[string]string
		want     string
	}{
		{"default used", "{{region|us-east}}", map[string]string{}, "us-east"},
		{"default ignored when resolved", "{{region|us-east}}", map[string]string{"region": "eu-west"}, "eu-west"},
		{"empty default", "[{{missing|}}]", map[string]string{"x": "y"}, "[]"},
		{"unresolved left intact", "{{missing}}", map[string]string{"x": "y"}, "{{missing}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.template, tt.record, nil)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestApplyToMap(t *testing.T) {
	record := map[string]string{"tenant": "acme"}
	headers := map[string]string{
		"X-Tenant":     "{{tenant}}",
		"Content-Type": "application/json",
	}

	got := ApplyToMap(headers, record, nil)
	if got["X-Tenant"] != "acme" {
		t.Errorf("expected substituted header, got %q", got["X-Tenant"])
	}
	if got["Content-Type"] != "application/json" {
		t.Errorf("expected literal header untouched, got %q", got["Content-Type"])
	}
}

func TestApplyNoInputs(t *testing.T) {
	got := Apply("{{anything}}", nil, nil)
	if got != "{{anything}}" {
		t.Errorf("expected template unchanged, got %q", got)
	}
}
