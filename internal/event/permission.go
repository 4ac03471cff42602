package event

import (
	"context"
)

// PermissionEnricher attaches the caller's permission lists to summaries
// with a single call to the authorization service.
type PermissionEnricher struct {
	client PermissionClient
}

func NewPermissionEnricher(client PermissionClient) *PermissionEnricher {
	return &PermissionEnricher{client: client}
}

// Enrich fills PermissionList on every summary. An entry applies to a
// summary when its id is the event id or the event's organization id.
func (p *PermissionEnricher) Enrich(ctx context.Context, organizationID uint, userID string, summaries []EventSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	ids := make([]uint, len(summaries))
	for i, s := range summaries {
		ids[i] = s.ID
	}

	entries, err := p.client.EventPermissions(ctx, EventPermissionRequest{
		OrganizationID: organizationID,
		UserID:         userID,
		EventIDs:       ids,
	})
	if err != nil {
		return errDependency("permission service call failed", err)
	}
	if len(entries) == 0 {
		return errDependency("permission service returned no entries", nil)
	}

	for i := range summaries {
		lists := [][]string{}
		for _, entry := range entries {
			if entry.EntityID != summaries[i].ID && entry.EntityID != summaries[i].OrganizationID {
				continue
			}
			perms := entry.Permissions
			if perms == nil {
				perms = []string{}
			}
			lists = append(lists, perms)
		}
		summaries[i].PermissionList = lists
	}
	return nil
}
