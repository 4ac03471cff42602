package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"gorm.io/datatypes"

	"github.com/sharath018/expo-event-service/internal/event"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Service interface {
	Record(ctx context.Context, entry event.AuditEntry) error
	GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

var _ event.Auditor = (*service)(nil)

// Record stores a successful lifecycle mutation.
func (s *service) Record(ctx context.Context, entry event.AuditEntry) error {
	details := entry.Details
	if details == nil {
		details = map[string]interface{}{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		raw = []byte("{}")
	}

	return s.repo.Create(ctx, &AuditLog{
		UserID:         entry.UserID,
		EventID:        entry.EventID,
		OrganizationID: entry.OrganizationID,
		Action:         entry.Action,
		Details:        datatypes.JSON(raw),
		IPAddress:      entry.IP,
		Status:         StatusSuccess,
	})
}

func (s *service) GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > maxLimit {
		filter.Limit = defaultLimit
	}

	logs, total, err := s.repo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load audit logs: %w", err)
	}
	if logs == nil {
		logs = []AuditLog{}
	}

	return &PaginatedAuditLogs{
		Data:       logs,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}
