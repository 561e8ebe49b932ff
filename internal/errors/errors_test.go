package errors

import (
	"errors"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := NewNotFound("ghost")
	want := "NOT_FOUND: account not found: ghost"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	if !Is(NewQuotaExceeded("sama"), ErrQuotaExceeded) {
		t.Error("Is should match QUOTA_EXCEEDED")
	}
	if Is(NewQuotaExceeded("sama"), ErrNotFound) {
		t.Error("Is should not match a different code")
	}
	if Is(errors.New("plain"), ErrInternal) {
		t.Error("Is should not match a non-structured error")
	}
	if Is(nil, ErrInternal) {
		t.Error("Is should not match nil")
	}
}

func TestIsOperational(t *testing.T) {
	operational := []error{
		NewNotFound("x"),
		NewQuotaExceeded("x"),
		NewServerError(503),
	}
	for _, err := range operational {
		if !IsOperational(err) {
			t.Errorf("%v should be operational", err)
		}
	}

	terminal := []error{
		NewDuplicate("123"),
		NewInvalidRequest("bad"),
		NewConflict("busy"),
		NewInternal(errors.New("boom")),
		errors.New("plain"),
		nil,
	}
	for _, err := range terminal {
		if IsOperational(err) {
			t.Errorf("%v should not be operational", err)
		}
	}
}

func TestNewInternal_NilError(t *testing.T) {
	err := NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q, want %q", err.Message, "internal error")
	}
}

func TestDetails(t *testing.T) {
	err := NewServerError(502)
	if err.Details["status"] != 502 {
		t.Errorf("Details[status] = %v, want 502", err.Details["status"])
	}
}
