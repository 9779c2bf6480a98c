package activitylog

import "workspace-core-svc/src/internal/models"

// ActivityType is the string enum tag carried on queue messages and
// persisted rows. Descriptions are templates rendered at read time by
// substituting {key} tokens from the log's variables.
type ActivityType string

const (
	TypeWorkspaceCreated     ActivityType = "WORKSPACE_CREATED"
	TypeWorkspaceUpdated     ActivityType = "WORKSPACE_UPDATED"
	TypeWorkspaceDeleted     ActivityType = "WORKSPACE_DELETED"
	TypeMemberInvited        ActivityType = "MEMBER_INVITED"
	TypeMemberJoined         ActivityType = "MEMBER_JOINED"
	TypeMemberRemoved        ActivityType = "MEMBER_REMOVED"
	TypeProjectCreated       ActivityType = "PROJECT_CREATED"
	TypeProjectStatusUpdate  ActivityType = "PROJECT_STATUS_UPDATE"
	TypeRoleCreated          ActivityType = "ROLE_CREATED"
	TypeRoleStatusUpdate     ActivityType = "ROLE_STATUS_UPDATE"
	TypeApplicationCreated   ActivityType = "APPLICATION_CREATED"
	TypeApplicationSubmitted ActivityType = "APPLICATION_SUBMITTED"
	TypeShortlistShared      ActivityType = "SHORTLIST_SHARED"
)

var activityTemplates = map[ActivityType]string{
	TypeWorkspaceCreated:     "Workspace {workspaceName} created by {user}",
	TypeWorkspaceUpdated:     "Workspace {workspaceName} updated by {user}",
	TypeWorkspaceDeleted:     "Workspace {workspaceName} deleted by {user}",
	TypeMemberInvited:        "{user} invited {inviteeEmail} to workspace {workspaceName}",
	TypeMemberJoined:         "{user} joined workspace {workspaceName}",
	TypeMemberRemoved:        "{user} removed {memberName} from workspace {workspaceName}",
	TypeProjectCreated:       "Project {projectName} created by {user}",
	TypeProjectStatusUpdate:  "Project {projectName} status changed to {status} by {user}",
	TypeRoleCreated:          "Role {roleName} created by {user}",
	TypeRoleStatusUpdate:     "Role {roleName} status changed to {status} by {user}",
	TypeApplicationCreated:   "Application for {roleName} created by {user}",
	TypeApplicationSubmitted: "Application for {roleName} submitted by {user}",
	TypeShortlistShared:      "Shortlist for {projectName} shared by {user}",
}

// roleActivityTypes are the types whose variables carry a roleId and that
// the roleId search filter matches against.
var roleActivityTypes = []ActivityType{TypeRoleCreated, TypeRoleStatusUpdate}

// ParseActivityType validates a wire tag against the registry.
func ParseActivityType(tag string) (ActivityType, error) {
	activityType := ActivityType(tag)
	if _, ok := activityTemplates[activityType]; !ok {
		return "", models.ErrUnknownActivityType
	}
	return activityType, nil
}

// Template returns the human-readable description template for the type.
func (t ActivityType) Template() string {
	return activityTemplates[t]
}

// Descriptions returns the full tag-to-template map for the types endpoint.
func Descriptions() map[string]string {
	descriptions := make(map[string]string, len(activityTemplates))
	for activityType, template := range activityTemplates {
		descriptions[string(activityType)] = template
	}
	return descriptions
}
