package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestRateLimitError(t *testing.T) {
	err := NewRateLimitError("slow down")

	if err.Error() != "slow down" {
		t.Fatalf("Error message = %q, want %q", err.Error(), "slow down")
	}

	if !IsRateLimitError(err) {
		t.Fatalf("IsRateLimitError returned false for RateLimitError")
	}

	wrapped := fmt.Errorf("omdb: %w", err)
	if !IsRateLimitError(wrapped) {
		t.Fatalf("IsRateLimitError returned false for wrapped RateLimitError")
	}
}

func TestNoResultsError(t *testing.T) {
	err := NewNoResultsError("no results for the current filters")

	if err.Error() != "no results for the current filters" {
		t.Fatalf("Error message = %q", err.Error())
	}

	if !IsNoResultsError(err) {
		t.Fatalf("IsNoResultsError returned false for NoResultsError")
	}

	wrapped := stdErrors.Join(err)
	if !IsNoResultsError(wrapped) {
		t.Fatalf("IsNoResultsError returned false for wrapped NoResultsError")
	}

	if IsNoResultsError(stdErrors.New("plain")) {
		t.Fatalf("IsNoResultsError returned true for unrelated error")
	}
}

func TestInputError(t *testing.T) {
	err := NewInputError("missing both tmdb_id and kp_id")

	if !IsInputError(err) {
		t.Fatalf("IsInputError returned false for InputError")
	}

	if IsInputError(NewNoResultsError("nope")) {
		t.Fatalf("IsInputError returned true for NoResultsError")
	}
}
