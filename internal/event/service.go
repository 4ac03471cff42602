package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Actor identifies the caller of a mutation.
type Actor struct {
	UserID string
	IP     string
}

// Dependencies are the collaborators of the Service. Metrics, Auditor and
// Now are optional.
type Dependencies struct {
	Store       Store
	Files       FileStorage
	Roles       RoleProvisioner
	Permissions PermissionClient
	Profiles    ProfileResolver
	Notifier    Notifier
	Auditor     Auditor
	Metrics     *Metrics
	Logger      *zap.Logger
	Now         func() time.Time
}

// Service implements the event lifecycle and listing.
type Service struct {
	store    Store
	files    FileStorage
	roles    RoleProvisioner
	profiles ProfileResolver
	notifier Notifier
	auditor  Auditor
	enricher *PermissionEnricher
	metrics  *Metrics
	log      *zap.Logger
	now      func() time.Time
}

func NewService(d Dependencies) *Service {
	s := &Service{
		store:    d.Store,
		files:    d.Files,
		roles:    d.Roles,
		profiles: d.Profiles,
		notifier: d.Notifier,
		auditor:  d.Auditor,
		enricher: NewPermissionEnricher(d.Permissions),
		metrics:  d.Metrics,
		log:      d.Logger,
		now:      d.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ===========================
// 🎯 Create Event
func (s *Service) CreateEvent(ctx context.Context, req SaveEventRequest, organizationID uint, picture *Picture, actor Actor) (id uint, err error) {
	defer func() { s.metrics.observe("create", err) }()

	if err := CheckPicture(picture); err != nil {
		return 0, err
	}
	if err := CheckURLFormat(req.URL); err != nil {
		return 0, err
	}
	if _, err := loadLocation(req.Timezone); err != nil {
		return 0, err
	}

	e := &Event{
		OrganizationID: organizationID,
		NameMainLang:   req.NameMainLang,
		NameSecondLang: req.NameSecondLang,
		URL:            req.URL,
		LocationType:   req.LocationType,
		MainLanguage:   req.MainLanguage,
		Timezone:       req.Timezone,
		IsActive:       true,
		Status:         StatusDraft,
		Tenant:         &EventTenant{Active: false},
	}
	if req.hasDates() {
		if e.IntervalDate, err = parseIntervalDate(req, req.Timezone); err != nil {
			return 0, err
		}
	}

	var uploaded string
	hooks := &postCommit{}
	err = s.store.Transaction(ctx, func(tx Store) error {
		if _, err := tx.FindOrganization(ctx, organizationID); err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				return errNotFound("organization not found")
			}
			return err
		}
		if err := s.checkURL(ctx, tx, req.URL, nil); err != nil {
			return err
		}

		name, err := s.files.Upload(ctx, picture, BucketEventPicture)
		if err != nil {
			return errDependency("picture upload failed", err)
		}
		uploaded = name
		e.Picture = name

		if err := tx.CreateEvent(ctx, e); err != nil {
			if errors.Is(err, ErrDuplicateURL) {
				return errURLUnavailable()
			}
			return fmt.Errorf("create event: %w", err)
		}
		if err := tx.AddTags(ctx, e.ID, uniqueTags(req.Tags)); err != nil {
			return fmt.Errorf("add tags: %w", err)
		}
		if err := tx.CreateDefaultGroups(ctx, e.ID); err != nil {
			return fmt.Errorf("create default groups: %w", err)
		}
		if err := s.roles.ProvisionDefaultRoles(ctx, RoleScopeEvent, DefaultRoleTemplates, e.ID); err != nil {
			return errDependency("role provisioning failed", err)
		}
		return nil
	})
	if err != nil {
		if uploaded != "" {
			s.discardUpload(ctx, uploaded)
		}
		return 0, err
	}

	s.audit(hooks, actor, e, "EVENT_CREATED", map[string]interface{}{"url": e.URL})
	hooks.run(ctx, s.log)
	s.log.Info("✅ event created", zap.Uint("event_id", e.ID), zap.Uint("organization_id", organizationID))
	return e.ID, nil
}

// discardUpload removes a picture whose event never committed.
func (s *Service) discardUpload(ctx context.Context, name string) {
	if err := s.files.Remove(context.WithoutCancel(ctx), BucketEventPicture, name); err != nil {
		s.log.Warn("⚠️ could not remove orphaned picture", zap.String("picture", name), zap.Error(err))
	}
}

// ===========================
// 🔍 Get Event
func (s *Service) GetEvent(ctx context.Context, eventID, organizationID uint, userID string) (*EventDetail, error) {
	member, err := s.store.IsActiveTeamMember(ctx, userID, organizationID)
	if err != nil {
		return nil, fmt.Errorf("check team membership: %w", err)
	}

	var e *Event
	if member {
		e, err = s.store.FindByIDInOrganization(ctx, eventID, organizationID)
		if errors.Is(err, ErrRecordNotFound) || (err == nil && !e.IsActive) {
			return nil, errNotFound("event not found")
		}
	} else {
		e, err = resolveOwnedEvent(ctx, s.store, eventID, userID)
	}
	if err != nil {
		return nil, err
	}

	tags, err := s.store.ListTags(ctx, e.ID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}

	language := s.profiles.Language(ctx, userID)
	timezone := s.profiles.Timezone(ctx, userID)
	return &EventDetail{
		EventSummary: toSummary(e, language, timezone, s.now()),
		MainLanguage: e.MainLanguage,
		Timezone:     e.Timezone,
		Tags:         tags,
	}, nil
}

// ===========================
// 🛠 Update Event
func (s *Service) UpdateEvent(ctx context.Context, eventID uint, req SaveEventRequest, picture *Picture, actor Actor) (err error) {
	defer func() { s.metrics.observe("update", err) }()

	var (
		e           *Event
		priorStatus EventStatus
		uploaded    string
	)
	hooks := &postCommit{}
	err = s.store.Transaction(ctx, func(tx Store) error {
		var err error
		if e, err = resolveOwnedEvent(ctx, tx, eventID, actor.UserID); err != nil {
			return err
		}
		priorStatus = e.Status

		if e.Status == StatusCancelled {
			return errStatusConflict("cancelled event cannot be updated")
		}
		now := s.now()
		state, ok := ClassifyTime(e.IntervalDate, now)
		switch {
		case ok && state == TimeCompleted:
			return errTimeConflict("completed event cannot be updated")
		case ok && state == TimeOngoing:
			err = applyOngoingChanges(e, req, now)
		default:
			err = applyFullChanges(e, req)
		}
		if err != nil {
			return err
		}

		if picture != nil {
			if err := CheckPicture(picture); err != nil {
				return err
			}
		}
		if err := s.checkURL(ctx, tx, e.URL, &e.ID); err != nil {
			return err
		}
		// The old picture goes last, once nothing can roll the row back to it.
		var replaced string
		if picture != nil {
			name, err := s.files.Upload(ctx, picture, BucketEventPicture)
			if err != nil {
				return errDependency("picture upload failed", err)
			}
			uploaded = name
			replaced, e.Picture = e.Picture, name
		}

		if err := tx.SaveEvent(ctx, e); err != nil {
			if errors.Is(err, ErrDuplicateURL) {
				return errURLUnavailable()
			}
			return fmt.Errorf("save event: %w", err)
		}
		if e.IntervalDate != nil {
			e.IntervalDate.EventID = e.ID
			if err := tx.SaveIntervalDate(ctx, e.IntervalDate); err != nil {
				return fmt.Errorf("save interval date: %w", err)
			}
		}
		if err := s.reconcileTags(ctx, tx, e.ID, req.Tags); err != nil {
			return err
		}

		if replaced != "" {
			if err := s.files.Remove(ctx, BucketEventPicture, replaced); err != nil {
				return errDependency("picture removal failed", err)
			}
		}
		return nil
	})
	if err != nil {
		if uploaded != "" {
			s.discardUpload(ctx, uploaded)
		}
		return err
	}

	if priorStatus == StatusReleased {
		edit := ActiveEventEdit{EventID: e.ID}
		if e.Organization != nil {
			edit.Email = e.Organization.Email
		}
		hooks.add("active-event-edited-mail", func(ctx context.Context) error {
			edit.Language = s.profiles.Language(ctx, actor.UserID)
			return s.notifier.ActiveEventEdited(ctx, edit)
		})
	}
	s.audit(hooks, actor, e, "EVENT_UPDATED", map[string]interface{}{"prior_status": priorStatus})
	hooks.run(ctx, s.log)
	return nil
}

// applyOngoingChanges only touches the dates that may still move once an
// event has started. An active start in the past is ignored.
func applyOngoingChanges(e *Event, req SaveEventRequest, now time.Time) error {
	d := e.IntervalDate
	if req.ActiveStartDate != "" {
		start, err := ParseLocalDateTime(req.ActiveStartDate, e.Timezone)
		if err != nil {
			return err
		}
		if start.After(now) {
			d.ActiveStartDate = start
		}
	}
	if req.ActiveEndDate != "" {
		end, err := ParseLocalDateTime(req.ActiveEndDate, e.Timezone)
		if err != nil {
			return err
		}
		d.ActiveEndDate = end
	}
	if req.GeneralEndDate != "" {
		end, err := ParseLocalDateTime(req.GeneralEndDate, e.Timezone)
		if err != nil {
			return err
		}
		d.GeneralEndDate = end
	}
	return checkIntervalOrder(d)
}

// applyFullChanges replaces every editable field. Without a complete date
// block the stored interval is kept.
func applyFullChanges(e *Event, req SaveEventRequest) error {
	if _, err := loadLocation(req.Timezone); err != nil {
		return err
	}
	e.NameMainLang = req.NameMainLang
	e.NameSecondLang = req.NameSecondLang
	e.URL = req.URL
	e.LocationType = req.LocationType
	e.MainLanguage = req.MainLanguage
	e.Timezone = req.Timezone

	if !req.hasDates() {
		return nil
	}
	parsed, err := parseIntervalDate(req, req.Timezone)
	if err != nil {
		return err
	}
	if e.IntervalDate != nil {
		parsed.ID = e.IntervalDate.ID
	}
	parsed.EventID = e.ID
	e.IntervalDate = parsed
	return nil
}

func (s *Service) reconcileTags(ctx context.Context, tx Store, eventID uint, requested []string) error {
	existing, err := tx.ListTags(ctx, eventID)
	if err != nil {
		return fmt.Errorf("list tags: %w", err)
	}
	diff := ReconcileTags(existing, requested)
	if err := tx.RemoveTags(ctx, eventID, diff.ToRemove); err != nil {
		return fmt.Errorf("remove tags: %w", err)
	}
	if err := tx.AddTags(ctx, eventID, diff.ToAdd); err != nil {
		return fmt.Errorf("add tags: %w", err)
	}
	return nil
}

// ===========================
// 📢 Publish / Unpublish
func (s *Service) PublishEvent(ctx context.Context, eventID uint, actor Actor) (err error) {
	defer func() { s.metrics.observe("publish", err) }()

	var e *Event
	hooks := &postCommit{}
	err = s.store.Transaction(ctx, func(tx Store) error {
		var err error
		if e, err = resolveOwnedEvent(ctx, tx, eventID, actor.UserID); err != nil {
			return err
		}
		if !e.IsActive {
			return errNotFound("event not found")
		}
		if e.Status != StatusDraft && e.Status != StatusUnpublished {
			return errStatusConflict("only draft or unpublished events can be published")
		}
		state, ok := ClassifyTime(e.IntervalDate, s.now())
		if !ok {
			return errTimeConflict("event has no dates")
		}
		if state == TimeCompleted {
			return errTimeConflict("completed event cannot be published")
		}
		return s.setPublication(ctx, tx, e, StatusReleased, true)
	})
	if err != nil {
		return err
	}

	s.queueStatusMail(hooks, e, actor.UserID, true)
	published := EventPublished{
		EventID:        e.ID,
		OrganizationID: e.OrganizationID,
		URL:            e.URL,
		EventName:      e.NameMainLang,
		PublishedAt:    s.now(),
	}
	hooks.add("sponsor-broadcast", func(ctx context.Context) error {
		return s.notifier.EventPublished(ctx, published)
	})
	s.audit(hooks, actor, e, "EVENT_PUBLISHED", nil)
	hooks.run(ctx, s.log)
	return nil
}

func (s *Service) UnpublishEvent(ctx context.Context, eventID uint, actor Actor) (err error) {
	defer func() { s.metrics.observe("unpublish", err) }()

	var e *Event
	hooks := &postCommit{}
	err = s.store.Transaction(ctx, func(tx Store) error {
		var err error
		if e, err = resolveOwnedEvent(ctx, tx, eventID, actor.UserID); err != nil {
			return err
		}
		if e.Status == StatusDraft || e.Status == StatusUnpublished {
			return errStatusConflict("event is not published")
		}
		if state, ok := ClassifyTime(e.IntervalDate, s.now()); ok && state == TimeCompleted {
			return errTimeConflict("completed event cannot be unpublished")
		}
		return s.setPublication(ctx, tx, e, StatusUnpublished, false)
	})
	if err != nil {
		return err
	}

	s.queueStatusMail(hooks, e, actor.UserID, false)
	s.audit(hooks, actor, e, "EVENT_UNPUBLISHED", nil)
	hooks.run(ctx, s.log)
	return nil
}

// ChangeStatus routes a requested target status to publish or unpublish.
func (s *Service) ChangeStatus(ctx context.Context, eventID uint, status EventStatus, actor Actor) error {
	switch status {
	case StatusReleased:
		return s.PublishEvent(ctx, eventID, actor)
	case StatusUnpublished:
		return s.UnpublishEvent(ctx, eventID, actor)
	default:
		return errStatusConflict(fmt.Sprintf("status %q cannot be requested", status))
	}
}

func (s *Service) setPublication(ctx context.Context, tx Store, e *Event, status EventStatus, tenantActive bool) error {
	e.Status = status
	if err := tx.SaveEvent(ctx, e); err != nil {
		return fmt.Errorf("save event: %w", err)
	}
	if e.Tenant == nil {
		e.Tenant = &EventTenant{EventID: e.ID}
	}
	e.Tenant.Active = tenantActive
	if err := tx.SaveTenant(ctx, e.Tenant); err != nil {
		return fmt.Errorf("save tenant: %w", err)
	}
	return nil
}

func (s *Service) queueStatusMail(hooks *postCommit, e *Event, ownerID string, published bool) {
	change := PublishStatusChange{
		EventID:        e.ID,
		OrganizationID: e.OrganizationID,
		EventName:      e.NameMainLang,
		MainName:       e.NameMainLang,
		LocationType:   e.LocationType,
		Language:       e.MainLanguage,
		Published:      published,
	}
	if e.IntervalDate != nil {
		change.GeneralStartDate = inZone(e.IntervalDate.GeneralStartDate, e.Timezone)
		change.GeneralEndDate = inZone(e.IntervalDate.GeneralEndDate, e.Timezone)
	}
	hooks.add("publish-status-mail", func(ctx context.Context) error {
		owner, err := s.profiles.FindUser(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("find owner %s: %w", ownerID, err)
		}
		change.OrganizerName = owner.FullName()
		change.Email = owner.Email
		if owner.Language != "" {
			change.Language = owner.Language
		}
		change.EventName = displayName(e, change.Language)
		return s.notifier.PublishStatusChanged(ctx, change)
	})
}

// ===========================
// 🗑 Delete Event
func (s *Service) DeleteEvent(ctx context.Context, eventID uint, actor Actor) (err error) {
	defer func() { s.metrics.observe("delete", err) }()

	var e *Event
	hooks := &postCommit{}
	err = s.store.Transaction(ctx, func(tx Store) error {
		var err error
		if e, err = resolveOwnedEvent(ctx, tx, eventID, actor.UserID); err != nil {
			return err
		}
		if e.Status == StatusReleased {
			if state, ok := ClassifyTime(e.IntervalDate, s.now()); ok && state != TimeCompleted {
				return errStatusConflict("published event cannot be deleted before it completes")
			}
		}
		if e.Picture != "" {
			if err := s.files.Remove(ctx, BucketEventPicture, e.Picture); err != nil {
				return errDependency("picture removal failed", err)
			}
		}
		e.IsActive = false
		e.URL = MarkDeleted(e.URL)
		if err := tx.SaveEvent(ctx, e); err != nil {
			return fmt.Errorf("save event: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit(hooks, actor, e, "EVENT_DELETED", map[string]interface{}{"url": e.URL})
	hooks.run(ctx, s.log)
	return nil
}

// ===========================
// 🔗 Url availability
func (s *Service) CheckURL(ctx context.Context, url string, eventID *uint) error {
	return s.checkURL(ctx, s.store, url, eventID)
}

func (s *Service) checkURL(ctx context.Context, store Store, url string, excludeID *uint) error {
	if err := CheckURLFormat(url); err != nil {
		return err
	}
	taken, err := store.URLTaken(ctx, url, excludeID)
	if err != nil {
		return fmt.Errorf("check url: %w", err)
	}
	if taken {
		return errURLUnavailable()
	}
	return nil
}

func errURLUnavailable() error {
	return errValidation(CodeURLUnavailable, "domain name is unavailable")
}

// ===========================
// 🏢 Organization helpers
func (s *Service) CountForOrganization(ctx context.Context, organizationID uint) (int64, error) {
	return s.store.CountActiveByOrganization(ctx, organizationID)
}

func (s *Service) ListForOrganization(ctx context.Context, organizationID uint, userID string) ([]EventSummary, error) {
	events, err := s.store.ListActiveByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	language := s.profiles.Language(ctx, userID)
	timezone := s.profiles.Timezone(ctx, userID)
	now := s.now()
	out := make([]EventSummary, 0, len(events))
	for i := range events {
		out = append(out, toSummary(&events[i], language, timezone, now))
	}
	return out, nil
}

func (s *Service) audit(hooks *postCommit, actor Actor, e *Event, action string, details map[string]interface{}) {
	if s.auditor == nil {
		return
	}
	entry := AuditEntry{
		UserID:         actor.UserID,
		EventID:        e.ID,
		OrganizationID: e.OrganizationID,
		Action:         action,
		Details:        details,
		IP:             actor.IP,
	}
	hooks.add("audit", func(ctx context.Context) error {
		return s.auditor.Record(ctx, entry)
	})
}
