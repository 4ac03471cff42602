package integration

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharath018/expo-event-service/internal/event"
)

func TestFileClient_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/file/upload/event-picture", r.URL.Path)

		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(params["boundary"], "expo-"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "cover.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, "png-bytes", string(data))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"fileName":"a1b2.png"}`))
	}))
	defer srv.Close()

	c := NewFileClient(srv.URL+"/", 0, nil)
	name, err := c.Upload(context.Background(), &event.Picture{Filename: "cover.png", ContentType: "image/png", Data: []byte("png-bytes")}, event.BucketEventPicture)
	require.NoError(t, err)
	assert.Equal(t, "a1b2.png", name)
}

func TestFileClient_UploadRequiresCreated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"fileName":"a.png"}`))
	}))
	defer srv.Close()

	_, err := NewFileClient(srv.URL, 0, nil).Upload(context.Background(), &event.Picture{Filename: "a.png", Data: []byte("x")}, "b")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusOK, statusErr.StatusCode)

	_, err = NewFileClient(srv.URL, 0, nil).Upload(context.Background(), nil, "b")
	assert.Error(t, err)
}

func TestFileClient_Remove(t *testing.T) {
	removed := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/file/event-picture/old.png", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]bool{"removed": removed})
	}))
	defer srv.Close()

	c := NewFileClient(srv.URL, 0, nil)
	require.NoError(t, c.Remove(context.Background(), event.BucketEventPicture, "old.png"))

	removed = false
	assert.Error(t, c.Remove(context.Background(), event.BucketEventPicture, "old.png"))
}

func TestAuthClient_EventPermissions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/role/event-permission", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u-1", body["userId"])
		assert.EqualValues(t, 10, body["organizationId"])
		assert.Len(t, body["eventIdList"], 2)
		_, _ = w.Write([]byte(`[{"eventId":10,"userPermissionList":["EVENT_VIEW"]},{"eventId":3,"userPermissionList":null}]`))
	}))
	defer srv.Close()

	got, err := NewAuthClient(srv.URL, 0, nil).EventPermissions(context.Background(), event.EventPermissionRequest{
		OrganizationID: 10, UserID: "u-1", EventIDs: []uint{3, 4},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint(10), got[0].EntityID)
	assert.Equal(t, []string{"EVENT_VIEW"}, got[0].Permissions)
	assert.Nil(t, got[1].Permissions)
}

func TestAuthClient_ProvisionDefaultRoles(t *testing.T) {
	var got roleRelationPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/role", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := NewAuthClient(srv.URL, 0, nil).ProvisionDefaultRoles(context.Background(), event.RoleScopeEvent, event.DefaultRoleTemplates, 7)
	require.NoError(t, err)
	assert.Equal(t, event.RoleScopeEvent, got.Scope)
	assert.Equal(t, event.DefaultRoleTemplates, got.Templates)
	assert.Equal(t, uint(7), got.TypeID)
}

func TestAuthClient_ProvisionDefaultRolesFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewAuthClient(srv.URL, 0, nil).ProvisionDefaultRoles(context.Background(), event.RoleScopeEvent, nil, 1)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "auth-service", statusErr.Service)
	assert.Equal(t, "boom", statusErr.Body)
}

func TestAuthClient_UserPermissions(t *testing.T) {
	var bodies []map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		_, _ = w.Write([]byte(`["EVENT_CREATE","EVENT_VIEW"]`))
	}))
	defer srv.Close()

	c := NewAuthClient(srv.URL, 0, nil)
	perms, err := c.UserPermissions(context.Background(), "u-1", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"EVENT_CREATE", "EVENT_VIEW"}, perms)

	_, err = c.UserPermissions(context.Background(), "u-1", 0)
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	assert.EqualValues(t, PermissionViewOrganization, bodies[0]["permissionViewType"])
	assert.EqualValues(t, 10, bodies[0]["permissionTypeId"])
	assert.EqualValues(t, PermissionViewGeneral, bodies[1]["permissionViewType"])
	assert.NotContains(t, bodies[1], "permissionTypeId")
}

func TestAuthClient_FindUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/user/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"userId":"u-1","name":"Ada","lastName":"Lovelace","email":"ada@expo.test","language":"en","timezone":"Europe/London"}`))
	}))
	defer srv.Close()

	c := NewAuthClient(srv.URL, 0, nil)
	u, err := c.FindUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", u.FullName())
	assert.Equal(t, "Europe/London", u.Timezone)

	_, err = c.FindUser(context.Background(), "missing")
	assert.ErrorIs(t, err, event.ErrRecordNotFound)
}
