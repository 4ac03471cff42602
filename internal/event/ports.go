package event

import (
	"context"
	"errors"
	"time"
)

// ErrRecordNotFound is returned by Store lookups that match no row.
var ErrRecordNotFound = errors.New("record not found")

// ErrDuplicateURL is returned by writes that collide with another active
// event's url.
var ErrDuplicateURL = errors.New("url already used by an active event")

// Store is the persistence port of the service. Transaction runs fn against
// a Store bound to a single database transaction.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	FindOrganization(ctx context.Context, id uint) (*Organization, error)
	IsActiveTeamMember(ctx context.Context, userID string, organizationID uint) (bool, error)

	FindActiveByID(ctx context.Context, id uint) (*Event, error)
	FindByIDInOrganization(ctx context.Context, id, organizationID uint) (*Event, error)
	URLTaken(ctx context.Context, url string, excludeID *uint) (bool, error)

	CreateEvent(ctx context.Context, e *Event) error
	SaveEvent(ctx context.Context, e *Event) error
	SaveIntervalDate(ctx context.Context, d *EventIntervalDate) error
	SaveTenant(ctx context.Context, t *EventTenant) error

	ListTags(ctx context.Context, eventID uint) ([]string, error)
	AddTags(ctx context.Context, eventID uint, tags []string) error
	RemoveTags(ctx context.Context, eventID uint, tags []string) error

	CreateDefaultGroups(ctx context.Context, eventID uint) error

	QueryEvents(ctx context.Context, spec QuerySpec) ([]Event, error)
	CountActiveByOrganization(ctx context.Context, organizationID uint) (int64, error)
	ListActiveByOrganization(ctx context.Context, organizationID uint) ([]Event, error)
}

// Buckets on the file service.
const BucketEventPicture = "event-picture"

type FileStorage interface {
	Upload(ctx context.Context, picture *Picture, bucket string) (string, error)
	Remove(ctx context.Context, bucket, fileName string) error
}

// Role scope and templates provisioned for every new event.
const RoleScopeEvent = "EVENT"

var DefaultRoleTemplates = []string{"EVENT_MANAGER_ID", "BOOTH_ADMIN_ID", "BOOTH_TEAM_MEMBER_ID"}

type RoleProvisioner interface {
	ProvisionDefaultRoles(ctx context.Context, scope string, templates []string, eventID uint) error
}

type EventPermissionRequest struct {
	OrganizationID uint   `json:"organizationId"`
	UserID         string `json:"userId"`
	EventIDs       []uint `json:"eventIdList"`
}

// EntityPermissions binds a permission list to an event id or, as a
// fallback for every event it owns, an organization id.
type EntityPermissions struct {
	EntityID    uint     `json:"eventId"`
	Permissions []string `json:"userPermissionList"`
}

type PermissionClient interface {
	EventPermissions(ctx context.Context, req EventPermissionRequest) ([]EntityPermissions, error)
}

type UserInfo struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email"`
	Language string `json:"language"`
	Timezone string `json:"timezone"`
}

func (u UserInfo) FullName() string {
	if u.LastName == "" {
		return u.Name
	}
	return u.Name + " " + u.LastName
}

// ProfileResolver answers per-user display preferences.
type ProfileResolver interface {
	Timezone(ctx context.Context, userID string) string
	Language(ctx context.Context, userID string) string
	FindUser(ctx context.Context, userID string) (*UserInfo, error)
}

type ActiveEventEdit struct {
	EventID  uint
	Email    string
	Language string
}

type PublishStatusChange struct {
	EventID          uint
	OrganizationID   uint
	EventName        string
	MainName         string
	LocationType     LocationType
	OrganizerName    string
	Email            string
	Language         string
	GeneralStartDate *time.Time
	GeneralEndDate   *time.Time
	Published        bool
}

type EventPublished struct {
	EventID        uint
	OrganizationID uint
	URL            string
	EventName      string
	PublishedAt    time.Time
}

// Notifier delivers best-effort messages after a mutation has committed.
type Notifier interface {
	ActiveEventEdited(ctx context.Context, n ActiveEventEdit) error
	PublishStatusChanged(ctx context.Context, n PublishStatusChange) error
	EventPublished(ctx context.Context, n EventPublished) error
}

type AuditEntry struct {
	UserID         string
	EventID        uint
	OrganizationID uint
	Action         string
	Details        map[string]interface{}
	IP             string
}

type Auditor interface {
	Record(ctx context.Context, entry AuditEntry) error
}
