package event

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

var _ Store = (*Repository)(nil)

// defaultGroups are inserted for every new event.
var defaultGroups = []EventGroup{
	{Kind: GroupSponsor, Name: "Platinum"},
	{Kind: GroupSponsor, Name: "Gold"},
	{Kind: GroupSponsor, Name: "Silver"},
	{Kind: GroupSession, Name: "Main Stage"},
	{Kind: GroupAttendee, Name: "Visitor"},
	{Kind: GroupBooth, Name: "Default"},
}

// ===========================
// 🔁 Transaction
func (r *Repository) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{DB: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}

// duplicateURL maps the unique violation of the active url index. It needs
// gorm's TranslateError.
func duplicateURL(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateURL
	}
	return err
}

func (r *Repository) withRelations(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Preload("Organization").
		Preload("IntervalDate").
		Preload("Tenant")
}

// ===========================
// 🏢 Organization
func (r *Repository) FindOrganization(ctx context.Context, id uint) (*Organization, error) {
	var org Organization
	if err := r.DB.WithContext(ctx).First(&org, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &org, nil
}

func (r *Repository) IsActiveTeamMember(ctx context.Context, userID string, organizationID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&OrganizationTeamMember{}).
		Where("user_id = ? AND organization_id = ? AND active = ?", userID, organizationID, true).
		Count(&count).Error
	return count > 0, err
}

// ===========================
// 🔍 Lookups
func (r *Repository) FindActiveByID(ctx context.Context, id uint) (*Event, error) {
	var e Event
	err := r.withRelations(ctx).
		Where("events.id = ? AND events.is_active = ?", id, true).
		First(&e).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (r *Repository) FindByIDInOrganization(ctx context.Context, id, organizationID uint) (*Event, error) {
	var e Event
	err := r.withRelations(ctx).
		Where("events.id = ? AND events.organization_id = ?", id, organizationID).
		First(&e).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// URLTaken only looks at active events; deleted ones carry a mangled url.
func (r *Repository) URLTaken(ctx context.Context, url string, excludeID *uint) (bool, error) {
	q := r.DB.WithContext(ctx).
		Model(&Event{}).
		Where("url = ? AND is_active = ?", url, true)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ===========================
// 🛠 Writes

// CreateEvent inserts the event with its interval date and tenant marker.
func (r *Repository) CreateEvent(ctx context.Context, e *Event) error {
	return duplicateURL(r.DB.WithContext(ctx).Omit("Organization", "Tags").Create(e).Error)
}

func (r *Repository) SaveEvent(ctx context.Context, e *Event) error {
	return duplicateURL(r.DB.WithContext(ctx).Omit(clause.Associations).Save(e).Error)
}

func (r *Repository) SaveIntervalDate(ctx context.Context, d *EventIntervalDate) error {
	return r.DB.WithContext(ctx).Save(d).Error
}

func (r *Repository) SaveTenant(ctx context.Context, t *EventTenant) error {
	return r.DB.WithContext(ctx).Save(t).Error
}

// ===========================
// 🏷 Tags
func (r *Repository) ListTags(ctx context.Context, eventID uint) ([]string, error) {
	var tags []string
	err := r.DB.WithContext(ctx).
		Model(&EventTag{}).
		Where("event_id = ?", eventID).
		Order("id ASC").
		Pluck("tag", &tags).Error
	return tags, err
}

func (r *Repository) AddTags(ctx context.Context, eventID uint, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	rows := make([]EventTag, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, EventTag{EventID: eventID, Tag: t})
	}
	return r.DB.WithContext(ctx).Create(&rows).Error
}

func (r *Repository) RemoveTags(ctx context.Context, eventID uint, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Where("event_id = ? AND tag IN ?", eventID, tags).
		Delete(&EventTag{}).Error
}

func (r *Repository) CreateDefaultGroups(ctx context.Context, eventID uint) error {
	rows := make([]EventGroup, len(defaultGroups))
	for i, g := range defaultGroups {
		g.EventID = eventID
		g.IsDefault = true
		rows[i] = g
	}
	return r.DB.WithContext(ctx).Create(&rows).Error
}

// ===========================
// 📄 Listing
func (r *Repository) QueryEvents(ctx context.Context, spec QuerySpec) ([]Event, error) {
	var events []Event
	err := r.DB.WithContext(ctx).
		Model(&Event{}).
		Scopes(applySpec(spec)).
		Preload("IntervalDate").
		Preload("Tenant").
		Find(&events).Error
	return events, err
}

func (r *Repository) CountActiveByOrganization(ctx context.Context, organizationID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&Event{}).
		Where("organization_id = ? AND is_active = ?", organizationID, true).
		Count(&count).Error
	return count, err
}

func (r *Repository) ListActiveByOrganization(ctx context.Context, organizationID uint) ([]Event, error) {
	var events []Event
	err := r.DB.WithContext(ctx).
		Preload("IntervalDate").
		Preload("Tenant").
		Where("organization_id = ? AND is_active = ?", organizationID, true).
		Order("id ASC").
		Find(&events).Error
	return events, err
}

// applySpec translates a QuerySpec into gorm clauses.
func applySpec(spec QuerySpec) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if spec.JoinIntervalDate {
			db = db.Select("events.*").
				Joins("LEFT JOIN event_interval_dates ON event_interval_dates.event_id = events.id")
		}
		for _, group := range spec.Filters {
			if sql, args := anyOfSQL(group); sql != "" {
				db = db.Where(sql, args...)
			}
		}
		if spec.Sort.Column != "" {
			db = db.Order(clause.OrderByColumn{
				Column: clause.Column{Name: spec.Sort.Column, Raw: true},
				Desc:   spec.Sort.Desc,
			})
		}
		return db
	}
}

func anyOfSQL(group AnyOf) (string, []interface{}) {
	var (
		parts []string
		args  []interface{}
	)
	for _, all := range group {
		var conds []string
		for _, c := range all {
			conds = append(conds, fmt.Sprintf("%s %s ?", c.Column, c.Op))
			args = append(args, c.Value)
		}
		if len(conds) > 0 {
			parts = append(parts, "("+strings.Join(conds, " AND ")+")")
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}
