package models

import "errors"

var (
	ErrRedisConnection = errors.New("redis connection error")
	ErrRedisGet        = errors.New("redis get error")
	ErrRedisSet        = errors.New("redis set error")
	ErrRedisDelete     = errors.New("redis delete error")
	ErrRedisExpire     = errors.New("redis expire error")
)

var (
	ErrWorkspaceNotFound   = errors.New("workspace not found")
	ErrWorkspaceDuplicated = errors.New("workspace with this name already exists")
	ErrWorkspaceDeleted    = errors.New("workspace is deleted")
	ErrMemberNotFound      = errors.New("workspace member not found")
	ErrMemberDuplicated    = errors.New("user is already a workspace member")
	ErrInvitationNotFound  = errors.New("workspace invitation not found")
	ErrInvitationExpired   = errors.New("workspace invitation expired")
)

var (
	ErrUnknownActivityType = errors.New("unknown activity type")
	ErrConversionFailed    = errors.New("failed to convert activity log message")
	ErrQueuePoll           = errors.New("queue poll error")
	ErrQueuePublish        = errors.New("queue publish error")
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrIdentityUnavailable = errors.New("identity service unavailable")
	ErrServiceUnavailable  = errors.New("service unavailable")
	ErrInvalidParams       = errors.New("invalid parameters")
)

var (
	ErrDatabaseConnection = errors.New("database connection error")
	ErrDatabaseQuery      = errors.New("database query error")
	ErrDatabaseInsert     = errors.New("database insert error")
	ErrDatabaseUpdate     = errors.New("database update error")
	ErrDatabaseDelete     = errors.New("database delete error")
	ErrRecordNotFound     = errors.New("record not found")
	ErrDuplicateRecord    = errors.New("duplicate record")
)
