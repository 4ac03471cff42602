package event

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

type mockFiles struct{ mock.Mock }

func (m *mockFiles) Upload(ctx context.Context, picture *Picture, bucket string) (string, error) {
	args := m.Called(ctx, picture, bucket)
	return args.String(0), args.Error(1)
}

func (m *mockFiles) Remove(ctx context.Context, bucket, fileName string) error {
	return m.Called(ctx, bucket, fileName).Error(0)
}

type mockRoles struct{ mock.Mock }

func (m *mockRoles) ProvisionDefaultRoles(ctx context.Context, scope string, templates []string, eventID uint) error {
	return m.Called(ctx, scope, templates, eventID).Error(0)
}

type mockPermissions struct{ mock.Mock }

func (m *mockPermissions) EventPermissions(ctx context.Context, req EventPermissionRequest) ([]EntityPermissions, error) {
	args := m.Called(ctx, req)
	entries, _ := args.Get(0).([]EntityPermissions)
	return entries, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) ActiveEventEdited(ctx context.Context, n ActiveEventEdit) error {
	return m.Called(ctx, n).Error(0)
}

func (m *mockNotifier) PublishStatusChanged(ctx context.Context, n PublishStatusChange) error {
	return m.Called(ctx, n).Error(0)
}

func (m *mockNotifier) EventPublished(ctx context.Context, n EventPublished) error {
	return m.Called(ctx, n).Error(0)
}

// stubProfiles answers fixed preferences and knows a fixed set of users.
type stubProfiles struct {
	timezone string
	language string
	users    map[string]UserInfo
}

func (s stubProfiles) Timezone(ctx context.Context, userID string) string { return s.timezone }
func (s stubProfiles) Language(ctx context.Context, userID string) string { return s.language }

func (s stubProfiles) FindUser(ctx context.Context, userID string) (*UserInfo, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &u, nil
}

type recordingAuditor struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (r *recordingAuditor) Record(ctx context.Context, entry AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingAuditor) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}

// fixedClock returns a settable now.
type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }
