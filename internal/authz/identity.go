package authz

import "github.com/taskvault/taskvault/internal/auth"

// MatchIdentity checks that the authenticated principal matches the user
// segment of the request path. The comparison is exact and case-sensitive;
// no normalization is applied. It runs before any resource lookup so a
// mismatched request never reveals whether the path's user has resources.
func MatchIdentity(p *auth.Principal, pathUserID string) Outcome {
	if p == nil || p.SubjectID != pathUserID {
		return DenyWithDetail(ReasonPathIdentityMismatch, pathUserID)
	}
	return Permit()
}
