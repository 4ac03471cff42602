package event

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ===========================
// 📄 Query Events

// QueryEvents lists the organization's active events matching req. Dates
// are rendered in the caller's timezone and every summary carries the
// caller's permission lists.
func (s *Service) QueryEvents(ctx context.Context, language string, req EventQueryRequest, userID string, organizationID uint) ([]EventSummary, error) {
	now := s.now()
	events, err := s.store.QueryEvents(ctx, BuildQuerySpec(req, organizationID, now))
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	if language == "" {
		language = s.profiles.Language(ctx, userID)
	}
	timezone := s.profiles.Timezone(ctx, userID)

	summaries := make([]EventSummary, 0, len(events))
	for i := range events {
		summaries = append(summaries, toSummary(&events[i], language, timezone, now))
	}
	if err := s.enricher.Enrich(ctx, organizationID, userID, summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func toSummary(e *Event, language, timezone string, now time.Time) EventSummary {
	out := EventSummary{
		ID:             e.ID,
		OrganizationID: e.OrganizationID,
		Name:           displayName(e, language),
		NameMainLang:   e.NameMainLang,
		NameSecondLang: e.NameSecondLang,
		URL:            e.URL,
		Picture:        e.Picture,
		LocationType:   e.LocationType,
		Status:         e.Status,
		PermissionList: [][]string{},
	}
	if e.Tenant != nil {
		out.TenantActive = e.Tenant.Active
	}
	if d := e.IntervalDate; d != nil {
		if state, ok := ClassifyTime(d, now); ok {
			out.TimeStatus = state
		}
		out.GeneralStartDate = inZone(d.GeneralStartDate, timezone)
		out.GeneralEndDate = inZone(d.GeneralEndDate, timezone)
		out.ActiveStartDate = inZone(d.ActiveStartDate, timezone)
		out.ActiveEndDate = inZone(d.ActiveEndDate, timezone)
	}
	return out
}

// displayName prefers the main-language name unless the caller reads the
// other language and a translation exists.
func displayName(e *Event, language string) string {
	if e.NameSecondLang == "" || language == "" || strings.EqualFold(e.MainLanguage, language) {
		return e.NameMainLang
	}
	return e.NameSecondLang
}
