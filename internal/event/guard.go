package event

import (
	"context"
	"errors"
)

// resolveOwnedEvent loads an active event and fails closed unless userID
// owns its organization.
func resolveOwnedEvent(ctx context.Context, store Store, eventID uint, userID string) (*Event, error) {
	e, err := store.FindActiveByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, errNotFound("event not found")
		}
		return nil, err
	}
	if e.Organization == nil || e.Organization.OwnerUserID != userID {
		return nil, errForbidden()
	}
	return e, nil
}
