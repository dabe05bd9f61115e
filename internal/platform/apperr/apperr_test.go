package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{E(ErrUnauthenticated, "x"), http.StatusForbidden},
		{E(ErrForbidden, "x"), http.StatusForbidden},
		{E(ErrNotFound, "x"), http.StatusNotFound},
		{E(ErrConflict, "x"), http.StatusConflict},
		{E(ErrValidation, "x"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := Status(c.err); got != c.want {
			t.Errorf("Status(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestMessageStripsPrefix(t *testing.T) {
	err := E(ErrNotFound, "Record not found")
	if got := Message(err); got != "Record not found" {
		t.Errorf("Message = %q", got)
	}
}

func TestMessageMasksInternal(t *testing.T) {
	err := fmt.Errorf("pq: connection refused")
	if got := Message(err); got != "Internal server error" {
		t.Errorf("Message = %q, want masked", got)
	}
}

func TestWrappedErrorKeepsKind(t *testing.T) {
	err := fmt.Errorf("context: %w", E(ErrConflict, "dup"))
	if !errors.Is(err, ErrConflict) {
		t.Error("wrapped error lost its kind")
	}
	if Status(err) != http.StatusConflict {
		t.Errorf("status = %d, want 409", Status(err))
	}
}
