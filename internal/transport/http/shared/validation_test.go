package shared

import "testing"

func TestValidatorCollectsIssues(t *testing.T) {
	v := NewValidator()
	v.Required("label", "", "label is required")
	v.Enum("runType", "bonus", []string{"regular", "off_cycle"}, "unknown run type")
	v.Positive("amount", 0, "must be positive")

	if !v.HasIssues() {
		t.Fatal("expected issues")
	}
	if len(v.Issues()) != 3 {
		t.Fatalf("expected 3 issues, got %v", v.Issues())
	}
}

func TestValidatorAcceptsValidInput(t *testing.T) {
	v := NewValidator()
	v.Required("label", "overtime", "label is required")
	v.Enum("runType", "Regular", []string{"regular", "off_cycle"}, "unknown run type")
	v.Positive("amount", 100, "must be positive")

	start, ok := v.Date("periodStart", "2026-03-01")
	if !ok {
		t.Fatal("expected date to parse")
	}
	end, ok := v.Date("periodEnd", "2026-03-31")
	if !ok {
		t.Fatal("expected date to parse")
	}
	v.DateOrder("periodStart", start, "periodEnd", end)

	if v.HasIssues() {
		t.Fatalf("expected no issues, got %v", v.Issues())
	}
}

func TestValidatorDateOrder(t *testing.T) {
	v := NewValidator()
	start, _ := v.Date("periodStart", "2026-03-31")
	end, _ := v.Date("periodEnd", "2026-03-01")
	v.DateOrder("periodStart", start, "periodEnd", end)

	if len(v.Issues()) != 2 {
		t.Fatalf("expected issues on both fields, got %v", v.Issues())
	}
}

func TestParseDateFormats(t *testing.T) {
	plain, err := ParseDate("2026-03-01")
	if err != nil {
		t.Fatalf("parse plain date: %v", err)
	}
	rfc, err := ParseDate("2026-03-01T00:00:00Z")
	if err != nil {
		t.Fatalf("parse rfc3339 date: %v", err)
	}
	if !plain.Equal(rfc) {
		t.Fatalf("expected equal dates, got %v and %v", plain, rfc)
	}
	if _, err := ParseDate("March 1"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
