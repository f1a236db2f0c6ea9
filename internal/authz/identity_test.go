package authz_test

import (
	"testing"

	"github.com/taskvault/taskvault/internal/auth"
	"github.com/taskvault/taskvault/internal/authz"
)

func TestMatchIdentity(t *testing.T) {
	p := &auth.Principal{SubjectID: "user123"}

	if outcome := authz.MatchIdentity(p, "user123"); outcome.Denied {
		t.Fatalf("expected exact match to be permitted, got %+v", outcome)
	}

	// Comparison is exact and case-sensitive; no normalization.
	for _, path := range []string{"user456", "USER123", "user123 ", ""} {
		outcome := authz.MatchIdentity(p, path)
		if !outcome.Denied || outcome.Reason != authz.ReasonPathIdentityMismatch {
			t.Fatalf("expected mismatch for %q, got %+v", path, outcome)
		}
	}

	if outcome := authz.MatchIdentity(nil, "user123"); !outcome.Denied {
		t.Fatal("expected nil principal to be denied")
	}
}
