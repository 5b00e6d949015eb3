package dserrors

import (
	"errors"
	"testing"
)

func TestEnvelopeErrorFormatting(t *testing.T) {
	err := New("DIRSCHEMA_PARSE_ERROR", "unknown rule keyword").
		WithSeverity(SeverityCritical).
		WithPath("rules/root.yaml").
		WithDetail("keyword", "bogus")

	if err.Severity != SeverityCritical {
		t.Fatalf("Severity = %v", err.Severity)
	}
	if err.Details["keyword"] != "bogus" {
		t.Fatalf("Details = %v", err.Details)
	}
	want := "DIRSCHEMA_PARSE_ERROR: unknown rule keyword (path: rules/root.yaml)"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestEnvelopeErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := New("DIRSCHEMA_IO_ERROR", "could not open archive").WithCause(cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the wrapped cause")
	}
}
