package activitylog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildFilter_AlwaysScopesWorkspace(t *testing.T) {
	filter := buildFilter(&SearchRequest{WorkspaceID: "ws-1"})

	assert.Equal(t, bson.M{"workspace_id": "ws-1"}, filter)
}

func TestBuildFilter_AndCombinesPopulatedFields(t *testing.T) {
	filter := buildFilter(&SearchRequest{
		WorkspaceID:   "ws-1",
		ProjectID:     "proj-1",
		ApplicationID: "app-1",
		ActivityType:  "PROJECT_CREATED",
		CreatedBy:     "user-1",
	})

	assert.Equal(t, "ws-1", filter["workspace_id"])
	assert.Equal(t, "proj-1", filter["project_id"])
	assert.Equal(t, "app-1", filter["application_id"])
	assert.Equal(t, "PROJECT_CREATED", filter["activity_type"])
	assert.Equal(t, "user-1", filter["created_by"])
}

func TestBuildFilter_InclusiveTimeBounds(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)

	filter := buildFilter(&SearchRequest{
		WorkspaceID: "ws-1",
		StartTime:   &start,
		EndTime:     &end,
	})

	timeRange, ok := filter["created_at"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, start, timeRange["$gte"])
	assert.Equal(t, end, timeRange["$lte"])
}

func TestBuildFilter_OpenEndedTimeRange(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	filter := buildFilter(&SearchRequest{WorkspaceID: "ws-1", StartTime: &start})

	timeRange, ok := filter["created_at"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, start, timeRange["$gte"])
	assert.NotContains(t, timeRange, "$lte")
}

func TestBuildFilter_RoleIDMatchesRoleActivityTypes(t *testing.T) {
	filter := buildFilter(&SearchRequest{WorkspaceID: "ws-1", RoleID: "role-7"})

	assert.Equal(t, "role-7", filter["variables.roleId"])
	assert.Equal(t, bson.M{"$in": roleActivityTypes}, filter["activity_type"])
}

func TestParseActivityType(t *testing.T) {
	activityType, err := ParseActivityType("ROLE_CREATED")
	require.NoError(t, err)
	assert.Equal(t, TypeRoleCreated, activityType)

	_, err = ParseActivityType("SOMETHING_ELSE")
	assert.Error(t, err)
}
