package auditlog

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// AuditLog is one row of the event audit trail.
type AuditLog struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         string         `gorm:"size:64;index" json:"user_id"`
	EventID        uint           `gorm:"index" json:"event_id"`
	OrganizationID uint           `gorm:"index" json:"organization_id"`
	Action         string         `gorm:"size:100;not null;index" json:"action"`
	Details        datatypes.JSON `gorm:"type:jsonb" json:"details"`
	IPAddress      string         `gorm:"size:45" json:"ip_address"`
	Status         string         `gorm:"size:20;not null" json:"status"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogFilter narrows the trail of one organization.
type AuditLogFilter struct {
	OrganizationID uint
	EventID        uint
	Action         string
	FromDate       *time.Time
	ToDate         *time.Time
	Page           int
	Limit          int
}

type PaginatedAuditLogs struct {
	Data       []AuditLog `json:"data"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
}
