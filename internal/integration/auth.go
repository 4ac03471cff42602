package integration

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/sharath018/expo-event-service/internal/event"
)

// Permission view types understood by the auth service.
const (
	PermissionViewGeneral      = 0
	PermissionViewOrganization = 1
	PermissionViewEvent        = 2
)

// AuthClient talks to the auth service for roles, permissions and users.
type AuthClient struct {
	baseClient
}

var (
	_ event.PermissionClient = (*AuthClient)(nil)
	_ event.RoleProvisioner  = (*AuthClient)(nil)
)

func NewAuthClient(baseURL string, timeout time.Duration, log *zap.Logger) *AuthClient {
	return &AuthClient{baseClient: newBaseClient("auth-service", baseURL, timeout, log)}
}

// EventPermissions returns the caller's permission lists per event id, or
// per organization id for organization-wide grants.
func (c *AuthClient) EventPermissions(ctx context.Context, req event.EventPermissionRequest) ([]event.EntityPermissions, error) {
	var out []event.EntityPermissions
	if err := c.doJSON(ctx, http.MethodPost, "/user/role/event-permission", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type roleRelationPayload struct {
	Scope     string   `json:"roleType"`
	Templates []string `json:"defaultRoleNameList"`
	TypeID    uint     `json:"typeId"`
}

func (c *AuthClient) ProvisionDefaultRoles(ctx context.Context, scope string, templates []string, eventID uint) error {
	payload := roleRelationPayload{Scope: scope, Templates: templates, TypeID: eventID}
	return c.doJSON(ctx, http.MethodPost, "/role", payload, nil, http.StatusOK, http.StatusCreated)
}

type permissionListPayload struct {
	UserID   string `json:"userId"`
	ViewType int    `json:"permissionViewType"`
	TypeID   *uint  `json:"permissionTypeId,omitempty"`
}

// UserPermissions lists the permissions the user holds on the organization
// (or globally when organizationID is 0).
func (c *AuthClient) UserPermissions(ctx context.Context, userID string, organizationID uint) ([]string, error) {
	payload := permissionListPayload{UserID: userID, ViewType: PermissionViewGeneral}
	if organizationID > 0 {
		payload.ViewType = PermissionViewOrganization
		payload.TypeID = &organizationID
	}

	var out []string
	if err := c.doJSON(ctx, http.MethodPost, "/user/role/permission/list/real", payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindUser loads the profile of userID. An unknown user maps to event.ErrRecordNotFound.
func (c *AuthClient) FindUser(ctx context.Context, userID string) (*event.UserInfo, error) {
	var out event.UserInfo
	err := c.doJSON(ctx, http.MethodGet, "/user/"+url.PathEscape(userID), nil, &out)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return nil, event.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
