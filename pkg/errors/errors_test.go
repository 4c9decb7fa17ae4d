package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeCheckout, http.StatusBadGateway},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInternal, http.StatusInternalServerError},
		{CodeDependency, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.code, tc.status, got)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("socket closed")
	err := Wrap(CodeDependency, cause, "redis write")
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("expected dependency code, got %s", err.Code())
	}
}

func TestAsFindsTypedErrorThroughWrapping(t *testing.T) {
	typed := New(CodeNotFound, "no remote cart for session")
	wrapped := fmt.Errorf("checkout: %w", typed)
	found := As(wrapped)
	if found == nil {
		t.Fatal("expected typed error through fmt wrapping")
	}
	if found.Code() != CodeNotFound {
		t.Fatalf("expected not-found, got %s", found.Code())
	}
}

func TestAsReturnsNilForPlainErrors(t *testing.T) {
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
	if As(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "validation failed").WithDetails(map[string]string{"quantity": "is required"})
	details, ok := err.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details type %T", err.Details())
	}
	if details["quantity"] != "is required" {
		t.Fatalf("details lost: %v", details)
	}
}

func TestDumpWalksChain(t *testing.T) {
	root := stdErrors.New("connection refused")
	mid := Wrap(CodeDependency, root, "persist cart")
	top := Wrap(CodeCheckout, mid, "checkout hand-off failed")

	dump := Dump(top)
	if dump.Code != string(CodeCheckout) {
		t.Fatalf("expected top code, got %s", dump.Code)
	}
	if len(dump.Chain) < 3 {
		t.Fatalf("expected full chain, got %v", dump.Chain)
	}
	if dump.Chain[len(dump.Chain)-1] != "connection refused" {
		t.Fatalf("expected root cause last, got %v", dump.Chain)
	}
}
