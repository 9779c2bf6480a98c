package activitylog

import (
	"context"
	"workspace-core-svc/src/clients"
	"workspace-core-svc/src/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	InsertBatch(ctx context.Context, logs []*ActivityLog) error
	Search(ctx context.Context, req *SearchRequest) ([]*ActivityLog, int64, error)
	Count(ctx context.Context, req *SearchRequest) (int64, error)
}

type repository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewRepository(db *clients.MongoDB, collectionName string) Repository {
	return &repository{
		client:     db.Client,
		collection: db.Database.Collection(collectionName),
	}
}

// InsertBatch persists a full batch in one transaction: either every row of
// the polling tick lands or none does.
func (r *repository) InsertBatch(ctx context.Context, logs []*ActivityLog) error {
	if len(logs) == 0 {
		return nil
	}

	documents := make([]interface{}, len(logs))
	for i, log := range logs {
		documents[i] = log
	}

	session, err := r.client.StartSession()
	if err != nil {
		logrus.WithError(err).Error("Failed to start mongo session for batch insert")
		return models.ErrDatabaseInsert
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return r.collection.InsertMany(sessCtx, documents)
	})
	if err != nil {
		logrus.WithError(err).WithField("batch_size", len(logs)).Error("Failed to insert activity log batch")
		return models.ErrDatabaseInsert
	}

	logrus.WithField("count", len(logs)).Debug("Activity log batch persisted")
	return nil
}

func (r *repository) Search(ctx context.Context, req *SearchRequest) ([]*ActivityLog, int64, error) {
	filter := buildFilter(req)

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		logrus.WithError(err).Error("Failed to count activity logs")
		return nil, 0, models.ErrDatabaseQuery
	}

	skip := (req.Page - 1) * req.Size

	sortField := "created_at"
	if req.SortField != "" {
		sortField = req.SortField
	}
	sortDirection := -1
	if req.SortDirection == "asc" {
		sortDirection = 1
	}

	opts := options.Find().
		SetLimit(int64(req.Size)).
		SetSkip(int64(skip)).
		SetSort(bson.D{{Key: sortField, Value: sortDirection}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		logrus.WithError(err).Error("Failed to find activity logs")
		return nil, 0, models.ErrDatabaseQuery
	}
	defer cursor.Close(ctx)

	var logs []*ActivityLog
	for cursor.Next(ctx) {
		var entry ActivityLog
		if err := cursor.Decode(&entry); err != nil {
			logrus.WithError(err).Error("Failed to decode activity log")
			continue
		}
		logs = append(logs, &entry)
	}

	if err := cursor.Err(); err != nil {
		logrus.WithError(err).Error("Cursor error")
		return nil, 0, models.ErrDatabaseQuery
	}

	logrus.WithFields(logrus.Fields{
		"count": len(logs),
		"total": totalCount,
		"page":  req.Page,
	}).Debug("Retrieved activity logs")

	return logs, totalCount, nil
}

func (r *repository) Count(ctx context.Context, req *SearchRequest) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, buildFilter(req))
	if err != nil {
		logrus.WithError(err).Error("Failed to count activity logs")
		return 0, models.ErrDatabaseQuery
	}
	return count, nil
}

// buildFilter appends one condition per populated field of the request.
// Conditions are AND-combined; time bounds are inclusive. The roleId
// predicate matches role-scoped activity types whose variables carry the
// requested role id.
func buildFilter(req *SearchRequest) bson.M {
	filter := bson.M{"workspace_id": req.WorkspaceID}

	if req.ProjectID != "" {
		filter["project_id"] = req.ProjectID
	}

	if req.ApplicationID != "" {
		filter["application_id"] = req.ApplicationID
	}

	if req.ActivityType != "" {
		filter["activity_type"] = req.ActivityType
	}

	if req.CreatedBy != "" {
		filter["created_by"] = req.CreatedBy
	}

	if req.RoleID != "" {
		filter["activity_type"] = bson.M{"$in": roleActivityTypes}
		filter["variables.roleId"] = req.RoleID
	}

	timeRange := bson.M{}
	if req.StartTime != nil {
		timeRange["$gte"] = *req.StartTime
	}
	if req.EndTime != nil {
		timeRange["$lte"] = *req.EndTime
	}
	if len(timeRange) > 0 {
		filter["created_at"] = timeRange
	}

	return filter
}
