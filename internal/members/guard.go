package members

import (
	"context"

	"boiadda-backend/internal/platform/apperr"
	"boiadda-backend/internal/platform/db"
)

// Guard gates admin-only decisions. The actor must exist AND carry the admin
// role tag; a plain member id is not enough.
type Guard struct {
	store *Store
}

func NewGuard() *Guard { return &Guard{store: NewStore()} }

func (g *Guard) AuthorizeAdmin(ctx context.Context, q db.DBTX, actorID int64) error {
	m, err := g.store.GetMember(ctx, q, actorID)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return apperr.ErrNotFound("admin not found")
		}
		return err
	}
	if m.RoleName != RoleAdmin {
		return apperr.ErrUnauthorized("actor does not hold the admin role")
	}
	return nil
}
