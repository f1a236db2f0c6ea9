package authz

import (
	"context"

	"github.com/taskvault/taskvault/internal/auth"
)

// Resource is the minimal view of a stored resource the gate needs: who
// created it. Ownership is recorded at creation and never changes here.
type Resource interface {
	OwnerID() string
}

// ResourceFinder is the single downstream collaborator of the gate. Absence
// is not an error: a missing resource returns found=false with a nil error,
// while a non-nil error means the store itself failed.
type ResourceFinder interface {
	FindByID(ctx context.Context, id int64) (Resource, bool, error)
}

// Gate confirms that a resource exists and belongs to the requesting
// principal. It holds no state beyond the finder and performs exactly one
// read per check, so it is safe for concurrent use.
type Gate struct {
	finder ResourceFinder
}

// NewGate constructs a Gate over the given finder.
func NewGate(finder ResourceFinder) *Gate {
	return &Gate{finder: finder}
}

// CheckResource decides whether the principal may act on the resource.
// Existence is checked before ownership: a 403 for an id that does not exist
// would reveal which parts of the id space are populated, so missing
// resources always deny with ResourceNotFound and ownership is never
// evaluated for them. Store failures propagate unchanged for the caller to
// map to a generic 500.
func (g *Gate) CheckResource(ctx context.Context, p *auth.Principal, resourceID int64) (Outcome, error) {
	resource, found, err := g.finder.FindByID(ctx, resourceID)
	if err != nil {
		return Outcome{}, err
	}
	if !found {
		return Deny(ReasonResourceNotFound), nil
	}
	if p == nil || resource.OwnerID() != p.SubjectID {
		return Deny(ReasonNotOwner), nil
	}
	return Permit(), nil
}
