// Package authz implements the per-request authorization decision: token
// presence, path identity match and resource ownership, in that order.
package authz

// Reason classifies why a request was denied.
type Reason string

const (
	ReasonMissingToken          Reason = "missing_token"
	ReasonMalformedToken        Reason = "malformed_token"
	ReasonExpiredOrInvalidToken Reason = "expired_or_invalid_token"
	ReasonPathIdentityMismatch  Reason = "path_identity_mismatch"
	ReasonResourceNotFound      Reason = "resource_not_found"
	ReasonNotOwner              Reason = "not_owner"
)

// Outcome is the result of an authorization check. Denials are ordinary
// values to be inspected by the caller, never errors; they are deterministic
// for identical inputs and are never retried.
type Outcome struct {
	Denied bool
	Reason Reason
	// Detail carries reason-specific context for the client message, e.g.
	// the denied path identifier. It never contains resource content.
	Detail string
}

// Permit returns the permitted outcome.
func Permit() Outcome {
	return Outcome{}
}

// Deny returns a denial with the given reason.
func Deny(reason Reason) Outcome {
	return Outcome{Denied: true, Reason: reason}
}

// DenyWithDetail returns a denial carrying extra message context.
func DenyWithDetail(reason Reason, detail string) Outcome {
	return Outcome{Denied: true, Reason: reason, Detail: detail}
}
