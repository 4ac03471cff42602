package event

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

// memStore is an in-memory Store. Transactions snapshot the whole state
// and restore it when fn fails. QueryEvents evaluates the QuerySpec the
// way the SQL translation would.
type memStore struct {
	orgs    map[uint]Organization
	members []OrganizationTeamMember
	events  map[uint]*Event
	tags    map[uint][]string
	groups  []EventGroup
	nextID  uint

	specs  []QuerySpec
	failOn string

	// urlRace makes URLTaken miss every collision, as a concurrent insert
	// would, and lets the writes reject it like the unique index does.
	urlRace bool
}

func newMemStore() *memStore {
	return &memStore{
		orgs:   map[uint]Organization{},
		events: map[uint]*Event{},
		tags:   map[uint][]string{},
		nextID: 1,
	}
}

var errInjected = errors.New("injected store failure")

func (m *memStore) fail(op string) error {
	if m.failOn == op {
		return errInjected
	}
	return nil
}

func cloneEvent(e *Event) *Event {
	c := *e
	if e.IntervalDate != nil {
		d := *e.IntervalDate
		c.IntervalDate = &d
	}
	if e.Tenant != nil {
		t := *e.Tenant
		c.Tenant = &t
	}
	c.Organization = nil
	c.Tags = nil
	return &c
}

type memSnapshot struct {
	members []OrganizationTeamMember
	events  map[uint]*Event
	tags    map[uint][]string
	groups  []EventGroup
	nextID  uint
}

func (m *memStore) snapshot() memSnapshot {
	s := memSnapshot{
		members: append([]OrganizationTeamMember(nil), m.members...),
		events:  make(map[uint]*Event, len(m.events)),
		tags:    make(map[uint][]string, len(m.tags)),
		groups:  append([]EventGroup(nil), m.groups...),
		nextID:  m.nextID,
	}
	for id, e := range m.events {
		s.events[id] = cloneEvent(e)
	}
	for id, t := range m.tags {
		s.tags[id] = append([]string(nil), t...)
	}
	return s
}

func (m *memStore) restore(s memSnapshot) {
	m.members, m.events, m.tags, m.groups, m.nextID = s.members, s.events, s.tags, s.groups, s.nextID
}

func (m *memStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *memStore) withOrganization(e *Event) *Event {
	c := cloneEvent(e)
	if org, ok := m.orgs[e.OrganizationID]; ok {
		c.Organization = &org
	}
	return c
}

func (m *memStore) FindOrganization(ctx context.Context, id uint) (*Organization, error) {
	org, ok := m.orgs[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &org, nil
}

func (m *memStore) IsActiveTeamMember(ctx context.Context, userID string, organizationID uint) (bool, error) {
	for _, tm := range m.members {
		if tm.UserID == userID && tm.OrganizationID == organizationID && tm.Active {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) FindActiveByID(ctx context.Context, id uint) (*Event, error) {
	e, ok := m.events[id]
	if !ok || !e.IsActive {
		return nil, ErrRecordNotFound
	}
	return m.withOrganization(e), nil
}

func (m *memStore) FindByIDInOrganization(ctx context.Context, id, organizationID uint) (*Event, error) {
	e, ok := m.events[id]
	if !ok || e.OrganizationID != organizationID {
		return nil, ErrRecordNotFound
	}
	return m.withOrganization(e), nil
}

func (m *memStore) URLTaken(ctx context.Context, url string, excludeID *uint) (bool, error) {
	if m.urlRace {
		return false, nil
	}
	for _, e := range m.events {
		if !e.IsActive || e.URL != url {
			continue
		}
		if excludeID != nil && e.ID == *excludeID {
			continue
		}
		return true, nil
	}
	return false, nil
}

// uniqueIndex mirrors idx_events_active_url when urlRace is set.
func (m *memStore) uniqueIndex(e *Event) error {
	if !m.urlRace || !e.IsActive {
		return nil
	}
	for _, other := range m.events {
		if other.ID != e.ID && other.IsActive && other.URL == e.URL {
			return ErrDuplicateURL
		}
	}
	return nil
}

func (m *memStore) CreateEvent(ctx context.Context, e *Event) error {
	if err := m.fail("CreateEvent"); err != nil {
		return err
	}
	if err := m.uniqueIndex(e); err != nil {
		return err
	}
	e.ID = m.nextID
	m.nextID++
	if e.IntervalDate != nil {
		e.IntervalDate.ID = e.ID
		e.IntervalDate.EventID = e.ID
	}
	if e.Tenant != nil {
		e.Tenant.ID = e.ID
		e.Tenant.EventID = e.ID
	}
	e.CreatedAt = time.Date(2024, 1, 1, 0, 0, int(e.ID), 0, time.UTC)
	m.events[e.ID] = cloneEvent(e)
	return nil
}

func (m *memStore) SaveEvent(ctx context.Context, e *Event) error {
	if err := m.fail("SaveEvent"); err != nil {
		return err
	}
	if err := m.uniqueIndex(e); err != nil {
		return err
	}
	stored, ok := m.events[e.ID]
	if !ok {
		return ErrRecordNotFound
	}
	c := cloneEvent(e)
	c.IntervalDate, c.Tenant = stored.IntervalDate, stored.Tenant
	m.events[e.ID] = c
	return nil
}

func (m *memStore) SaveIntervalDate(ctx context.Context, d *EventIntervalDate) error {
	stored, ok := m.events[d.EventID]
	if !ok {
		return ErrRecordNotFound
	}
	c := *d
	stored.IntervalDate = &c
	return nil
}

func (m *memStore) SaveTenant(ctx context.Context, t *EventTenant) error {
	stored, ok := m.events[t.EventID]
	if !ok {
		return ErrRecordNotFound
	}
	c := *t
	stored.Tenant = &c
	return nil
}

func (m *memStore) ListTags(ctx context.Context, eventID uint) ([]string, error) {
	return append([]string(nil), m.tags[eventID]...), nil
}

func (m *memStore) AddTags(ctx context.Context, eventID uint, tags []string) error {
	m.tags[eventID] = append(m.tags[eventID], tags...)
	return nil
}

func (m *memStore) RemoveTags(ctx context.Context, eventID uint, tags []string) error {
	drop := toSet(tags)
	var kept []string
	for _, t := range m.tags[eventID] {
		if _, ok := drop[t]; !ok {
			kept = append(kept, t)
		}
	}
	m.tags[eventID] = kept
	return nil
}

func (m *memStore) CreateDefaultGroups(ctx context.Context, eventID uint) error {
	for _, g := range defaultGroups {
		g.EventID = eventID
		g.IsDefault = true
		m.groups = append(m.groups, g)
	}
	return nil
}

func (m *memStore) QueryEvents(ctx context.Context, spec QuerySpec) ([]Event, error) {
	m.specs = append(m.specs, spec)
	var out []Event
	for _, e := range m.events {
		if matchesSpec(e, spec) {
			out = append(out, *cloneEvent(e))
		}
	}
	sortEvents(out, spec.Sort)
	return out, nil
}

func (m *memStore) CountActiveByOrganization(ctx context.Context, organizationID uint) (int64, error) {
	var n int64
	for _, e := range m.events {
		if e.IsActive && e.OrganizationID == organizationID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListActiveByOrganization(ctx context.Context, organizationID uint) ([]Event, error) {
	var out []Event
	for _, e := range m.events {
		if e.IsActive && e.OrganizationID == organizationID {
			out = append(out, *cloneEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func matchesSpec(e *Event, spec QuerySpec) bool {
	for _, group := range spec.Filters {
		if !matchesAnyOf(e, group) {
			return false
		}
	}
	return true
}

func matchesAnyOf(e *Event, group AnyOf) bool {
	for _, all := range group {
		ok := true
		for _, c := range all {
			if !matchesCondition(e, c) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func matchesCondition(e *Event, c Condition) bool {
	switch c.Column {
	case colActive:
		return e.IsActive == c.Value.(bool)
	case colOrganizationID:
		return e.OrganizationID == c.Value.(uint)
	case colNameLower:
		needle := strings.Trim(c.Value.(string), "%")
		return strings.Contains(strings.ToLower(e.NameMainLang), needle)
	case colGeneralStart, colGeneralEnd:
		if e.IntervalDate == nil {
			return false
		}
		v := e.IntervalDate.GeneralStartDate
		if c.Column == colGeneralEnd {
			v = e.IntervalDate.GeneralEndDate
		}
		at := c.Value.(time.Time)
		if c.Op == OpGt {
			return v.After(at)
		}
		return !v.After(at)
	}
	return false
}

func sortEvents(events []Event, s Sort) {
	less := func(a, b Event) bool { return a.ID < b.ID }
	switch s.Column {
	case orderColumns[OrderByName]:
		less = func(a, b Event) bool { return a.NameMainLang < b.NameMainLang }
	case orderColumns[OrderByURL]:
		less = func(a, b Event) bool { return a.URL < b.URL }
	case orderColumns[OrderByCreated]:
		less = func(a, b Event) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case orderColumns[OrderByTime]:
		less = func(a, b Event) bool {
			if a.IntervalDate == nil || b.IntervalDate == nil {
				return a.IntervalDate != nil
			}
			return a.IntervalDate.GeneralStartDate.Before(b.IntervalDate.GeneralStartDate)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if s.Desc {
			return less(events[j], events[i])
		}
		return less(events[i], events[j])
	})
}
