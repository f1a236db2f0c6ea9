package authz

import (
	"fmt"
	"net/http"

	"github.com/taskvault/taskvault/internal/platform/httpx"
)

// StatusFor returns the HTTP status for a denial reason. The mapping is
// fixed: token problems are 401, identity and ownership problems are 403,
// missing resources are 404.
func StatusFor(reason Reason) int {
	switch reason {
	case ReasonMissingToken, ReasonMalformedToken, ReasonExpiredOrInvalidToken:
		return http.StatusUnauthorized
	case ReasonPathIdentityMismatch, ReasonNotOwner:
		return http.StatusForbidden
	case ReasonResourceNotFound:
		return http.StatusNotFound
	default:
		return http.StatusForbidden
	}
}

// CategoryFor returns the client-facing error category for a denial reason.
func CategoryFor(reason Reason) string {
	switch reason {
	case ReasonMissingToken, ReasonMalformedToken, ReasonExpiredOrInvalidToken:
		return "Authentication Error"
	case ReasonResourceNotFound:
		return "Not Found"
	default:
		return "Forbidden"
	}
}

// MessageFor builds the client-facing message for a denial. The not-found
// message never mentions ownership and the not-owner message never repeats
// resource content.
func MessageFor(o Outcome) string {
	switch o.Reason {
	case ReasonMissingToken, ReasonMalformedToken:
		return "Missing or invalid Authorization header. Expected format: 'Bearer <token>'"
	case ReasonExpiredOrInvalidToken:
		if o.Detail != "" {
			return o.Detail
		}
		return "Invalid token"
	case ReasonPathIdentityMismatch:
		return fmt.Sprintf("Access denied: cannot access resources for user '%s'", o.Detail)
	case ReasonResourceNotFound:
		return "Resource not found"
	case ReasonNotOwner:
		return "You do not have access to this resource"
	default:
		return "Access denied"
	}
}

// WriteDenial renders a denial as the standard error envelope. 401 responses
// carry a bearer challenge so clients know how to authenticate.
func WriteDenial(w http.ResponseWriter, o Outcome) {
	status := StatusFor(o.Reason)
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	httpx.Error(w, status, CategoryFor(o.Reason), MessageFor(o))
}
