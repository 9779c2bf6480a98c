package workspace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"workspace-core-svc/src/internal/config"
	"workspace-core-svc/src/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handlerConfig() *config.Configuration {
	return &config.Configuration{App: config.Application{Timeout: 5}}
}

func testContext(t *testing.T, method, path string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(method, path, nil)
	return c, recorder
}

func TestUpdateMemberAccess_StampsMembership(t *testing.T) {
	svc, repo, contexts, _ := newTestService()
	h := NewHandler(handlerConfig(), svc, contexts)

	workspace, err := svc.Create(context.Background(), &CreateRequest{Name: "Casting"}, "user-1")
	require.NoError(t, err)

	c, recorder := testContext(t, http.MethodPatch, "/api/v1/workspaces/"+workspace.ID+"/members/access")
	c.Params = gin.Params{{Key: "id", Value: workspace.ID}}
	c.Set("user_id", "user-1")

	h.UpdateMemberAccess(c)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, []string{workspace.ID + ":user-1"}, repo.accessUpdates)
}

func TestUpdateMemberAccess_UnknownMember(t *testing.T) {
	svc, _, contexts, _ := newTestService()
	h := NewHandler(handlerConfig(), svc, contexts)

	workspace, err := svc.Create(context.Background(), &CreateRequest{Name: "Casting"}, "user-1")
	require.NoError(t, err)

	c, recorder := testContext(t, http.MethodPatch, "/api/v1/workspaces/"+workspace.ID+"/members/access")
	c.Params = gin.Params{{Key: "id", Value: workspace.ID}}
	c.Set("user_id", "stranger")

	h.UpdateMemberAccess(c)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestDefaultWorkspace_ResolvesFromContext(t *testing.T) {
	svc, _, _, _ := newTestService()
	contexts := &recordingContextService{defaultWorkspace: "ws-1", setCalls: make(map[string][]string)}
	h := NewHandler(handlerConfig(), svc, contexts)

	c, recorder := testContext(t, http.MethodGet, "/api/v1/members/user-1/default")
	c.Params = gin.Params{{Key: "userId", Value: "user-1"}}

	h.DefaultWorkspace(c)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "ws-1")
}

func TestDefaultWorkspace_NoWorkspaces(t *testing.T) {
	svc, _, contexts, _ := newTestService()
	h := NewHandler(handlerConfig(), svc, contexts)

	c, recorder := testContext(t, http.MethodGet, "/api/v1/members/user-1/default")
	c.Params = gin.Params{{Key: "userId", Value: "user-1"}}

	h.DefaultWorkspace(c)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHandleServiceError_BackendFailures(t *testing.T) {
	svc, _, contexts, _ := newTestService()
	h := NewHandler(handlerConfig(), svc, contexts).(*handler)

	for _, err := range []error{models.ErrDatabaseQuery, models.ErrDatabaseInsert, models.ErrRedisSet} {
		c, recorder := testContext(t, http.MethodGet, "/api/v1/workspaces")
		h.handleServiceError(c, err)
		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
		assert.Contains(t, recorder.Body.String(), models.ErrServiceUnavailable.Error())
	}
}
