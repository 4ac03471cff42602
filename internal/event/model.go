package event

import (
	"time"
)

// EventStatus is the stored publication state of an event.
type EventStatus string

const (
	StatusDraft       EventStatus = "DRAFT"
	StatusReleased    EventStatus = "RELEASED"
	StatusUnpublished EventStatus = "UNPUBLISHED"
	StatusCancelled   EventStatus = "CANCELLED"
)

// TimeStatus is derived from the interval dates and never persisted.
type TimeStatus string

const (
	TimeUpcoming  TimeStatus = "UPCOMING"
	TimeOngoing   TimeStatus = "ONGOING"
	TimeCompleted TimeStatus = "COMPLETED"
)

type LocationType string

const (
	LocationOnline   LocationType = "ONLINE"
	LocationPhysical LocationType = "PHYSICAL"
	LocationHybrid   LocationType = "HYBRID"
)

// ============================
// 🔷 GORM Models

type Organization struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Email       string    `gorm:"type:varchar(255)" json:"email"`
	OwnerUserID string    `gorm:"type:varchar(64);not null;index" json:"owner_user_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type Event struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	OrganizationID uint         `gorm:"not null;index" json:"organization_id"`
	NameMainLang   string       `gorm:"type:varchar(255);not null" json:"name_main_lang"`
	NameSecondLang string       `gorm:"type:varchar(255)" json:"name_second_lang"`
	URL            string       `gorm:"column:url;type:varchar(128);not null;index" json:"url"`
	Picture        string       `gorm:"type:varchar(255)" json:"picture"`
	LocationType   LocationType `gorm:"type:varchar(20)" json:"location_type"`
	MainLanguage   string       `gorm:"type:varchar(8)" json:"main_language"`
	Timezone       string       `gorm:"type:varchar(64)" json:"timezone"`
	IsActive       bool         `gorm:"not null;default:true;index" json:"is_active"`
	Status         EventStatus  `gorm:"column:event_status;type:varchar(20);not null" json:"event_status"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"autoUpdateTime" json:"updated_at"`

	Organization *Organization      `gorm:"foreignKey:OrganizationID" json:"-"`
	IntervalDate *EventIntervalDate `gorm:"foreignKey:EventID" json:"-"`
	Tenant       *EventTenant       `gorm:"foreignKey:EventID" json:"-"`
	Tags         []EventTag         `gorm:"foreignKey:EventID" json:"-"`
}

// EventIntervalDate dates are stored in UTC.
type EventIntervalDate struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	EventID          uint      `gorm:"not null;uniqueIndex" json:"event_id"`
	GeneralStartDate time.Time `gorm:"not null" json:"general_start_date"`
	GeneralEndDate   time.Time `gorm:"not null" json:"general_end_date"`
	ActiveStartDate  time.Time `gorm:"not null" json:"active_start_date"`
	ActiveEndDate    time.Time `gorm:"not null" json:"active_end_date"`
}

type EventTag struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	EventID uint   `gorm:"not null;index" json:"event_id"`
	Tag     string `gorm:"type:varchar(100);not null" json:"tag"`
}

// EventTenant marks whether the event's workspace is open.
type EventTenant struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	EventID uint `gorm:"not null;uniqueIndex" json:"event_id"`
	Active  bool `gorm:"not null;default:false" json:"active"`
}

type GroupKind string

const (
	GroupSponsor  GroupKind = "SPONSOR"
	GroupSession  GroupKind = "SESSION"
	GroupAttendee GroupKind = "ATTENDEE"
	GroupBooth    GroupKind = "BOOTH"
)

// EventGroup rows are the default sub-resources created with every event.
type EventGroup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"not null;index" json:"event_id"`
	Kind      GroupKind `gorm:"type:varchar(20);not null" json:"kind"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	IsDefault bool      `gorm:"not null;default:true" json:"is_default"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type OrganizationTeamMember struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	OrganizationID uint   `gorm:"not null;index" json:"organization_id"`
	UserID         string `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Active         bool   `gorm:"not null;default:true" json:"active"`
}

// ============================
// 🟡 Requests

// SaveEventRequest is shared by create and update. Dates use the
// "2006-01-02 15:04" layout in the event timezone.
type SaveEventRequest struct {
	NameMainLang     string       `json:"name_main_lang" binding:"required"`
	NameSecondLang   string       `json:"name_second_lang"`
	URL              string       `json:"url" binding:"required"`
	LocationType     LocationType `json:"location_type" binding:"required,oneof=ONLINE PHYSICAL HYBRID"`
	MainLanguage     string       `json:"main_language" binding:"required"`
	Timezone         string       `json:"timezone" binding:"required"`
	IsKnownDate      bool         `json:"is_known_date"`
	GeneralStartDate string       `json:"general_start_date"`
	GeneralEndDate   string       `json:"general_end_date"`
	ActiveStartDate  string       `json:"active_start_date"`
	ActiveEndDate    string       `json:"active_end_date"`
	Tags             []string     `json:"tags"`
}

// hasDates reports whether the request carries a complete date block.
func (r SaveEventRequest) hasDates() bool {
	return r.IsKnownDate && r.GeneralStartDate != "" && r.GeneralEndDate != "" &&
		r.ActiveStartDate != "" && r.ActiveEndDate != ""
}

type ChangeStatusRequest struct {
	Status EventStatus `json:"status" binding:"required"`
}

// Picture is an uploaded image as received from the client.
type Picture struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// EventQueryRequest filters the organization's event listing.
type EventQueryRequest struct {
	Search      string       `json:"search"`
	StatusList  []TimeStatus `json:"status_list" binding:"dive,timestatus"`
	OrderColumn string       `json:"order_column" binding:"omitempty,eventcolumn"`
	Direction   string       `json:"direction"`
}

// ============================
// 🟢 Responses

type EventSummary struct {
	ID               uint         `json:"id"`
	OrganizationID   uint         `json:"organization_id"`
	Name             string       `json:"name"`
	NameMainLang     string       `json:"name_main_lang"`
	NameSecondLang   string       `json:"name_second_lang,omitempty"`
	URL              string       `json:"url"`
	Picture          string       `json:"picture"`
	LocationType     LocationType `json:"location_type"`
	Status           EventStatus  `json:"event_status"`
	TimeStatus       TimeStatus   `json:"time_status,omitempty"`
	TenantActive     bool         `json:"tenant_active"`
	GeneralStartDate *time.Time   `json:"general_start_date,omitempty"`
	GeneralEndDate   *time.Time   `json:"general_end_date,omitempty"`
	ActiveStartDate  *time.Time   `json:"active_start_date,omitempty"`
	ActiveEndDate    *time.Time   `json:"active_end_date,omitempty"`
	PermissionList   [][]string   `json:"permission_list"`
}

type EventDetail struct {
	EventSummary
	MainLanguage string   `json:"main_language"`
	Timezone     string   `json:"timezone"`
	Tags         []string `json:"tags"`
}
