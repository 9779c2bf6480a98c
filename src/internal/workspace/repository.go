package workspace

import (
	"context"
	"errors"
	"time"
	"workspace-core-svc/src/clients"
	"workspace-core-svc/src/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*Workspace, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*Workspace, error)
	FindActiveByOwner(ctx context.Context, ownerID string) ([]*Workspace, error)
	FindActiveByMember(ctx context.Context, userID string) ([]*Workspace, error)
	ExistsByNameAndOwner(ctx context.Context, name, ownerID string) (bool, error)
	Insert(ctx context.Context, workspace *Workspace) error
	Update(ctx context.Context, workspace *Workspace) error
	AddMember(ctx context.Context, workspaceID string, member Member) error
	UpdateMemberLastAccess(ctx context.Context, workspaceID, userID string) error
	InsertInvitation(ctx context.Context, invitation *Invitation) error
	FindInvitationByID(ctx context.Context, id string) (*Invitation, error)
	UpdateInvitationStatus(ctx context.Context, id, status string) error
}

type repository struct {
	workspaces  *mongo.Collection
	invitations *mongo.Collection
}

func NewRepository(db *clients.MongoDB, workspaceCollection, invitationCollection string) Repository {
	return &repository{
		workspaces:  db.Database.Collection(workspaceCollection),
		invitations: db.Database.Collection(invitationCollection),
	}
}

func (r *repository) FindByID(ctx context.Context, id string) (*Workspace, error) {
	var workspace Workspace
	err := r.workspaces.FindOne(ctx, bson.M{"_id": id}).Decode(&workspace)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrWorkspaceNotFound
		}
		logrus.WithError(err).WithField("workspace_id", id).Error("Failed to find workspace")
		return nil, models.ErrDatabaseQuery
	}
	return &workspace, nil
}

func (r *repository) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*Workspace, error) {
	filter := bson.M{
		"_id":      id,
		"owner_id": ownerID,
		"status":   StatusActive,
	}

	var workspace Workspace
	err := r.workspaces.FindOne(ctx, filter).Decode(&workspace)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrWorkspaceNotFound
		}
		logrus.WithError(err).WithFields(logrus.Fields{
			"workspace_id": id,
			"owner_id":     ownerID,
		}).Error("Failed to find workspace by owner")
		return nil, models.ErrDatabaseQuery
	}
	return &workspace, nil
}

func (r *repository) FindActiveByOwner(ctx context.Context, ownerID string) ([]*Workspace, error) {
	filter := bson.M{
		"owner_id": ownerID,
		"status":   StatusActive,
	}
	return r.findAll(ctx, filter)
}

func (r *repository) FindActiveByMember(ctx context.Context, userID string) ([]*Workspace, error) {
	filter := bson.M{
		"members.user_id": userID,
		"status":          StatusActive,
	}
	return r.findAll(ctx, filter)
}

func (r *repository) findAll(ctx context.Context, filter bson.M) ([]*Workspace, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})

	cursor, err := r.workspaces.Find(ctx, filter, opts)
	if err != nil {
		logrus.WithError(err).Error("Failed to find workspaces")
		return nil, models.ErrDatabaseQuery
	}
	defer cursor.Close(ctx)

	var workspaces []*Workspace
	for cursor.Next(ctx) {
		var workspace Workspace
		if err := cursor.Decode(&workspace); err != nil {
			logrus.WithError(err).Error("Failed to decode workspace")
			continue
		}
		workspaces = append(workspaces, &workspace)
	}

	if err := cursor.Err(); err != nil {
		logrus.WithError(err).Error("Cursor error")
		return nil, models.ErrDatabaseQuery
	}

	return workspaces, nil
}

func (r *repository) ExistsByNameAndOwner(ctx context.Context, name, ownerID string) (bool, error) {
	filter := bson.M{
		"name":     name,
		"owner_id": ownerID,
		"status":   StatusActive,
	}

	count, err := r.workspaces.CountDocuments(ctx, filter)
	if err != nil {
		logrus.WithError(err).Error("Failed to count workspaces by name")
		return false, models.ErrDatabaseQuery
	}
	return count > 0, nil
}

func (r *repository) Insert(ctx context.Context, workspace *Workspace) error {
	_, err := r.workspaces.InsertOne(ctx, workspace)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateRecord
		}
		logrus.WithError(err).WithField("workspace_id", workspace.ID).Error("Failed to insert workspace")
		return models.ErrDatabaseInsert
	}
	return nil
}

func (r *repository) Update(ctx context.Context, workspace *Workspace) error {
	workspace.UpdatedAt = time.Now()

	result, err := r.workspaces.ReplaceOne(ctx, bson.M{"_id": workspace.ID}, workspace)
	if err != nil {
		logrus.WithError(err).WithField("workspace_id", workspace.ID).Error("Failed to update workspace")
		return models.ErrDatabaseUpdate
	}
	if result.MatchedCount == 0 {
		return models.ErrWorkspaceNotFound
	}
	return nil
}

func (r *repository) AddMember(ctx context.Context, workspaceID string, member Member) error {
	filter := bson.M{
		"_id":    workspaceID,
		"status": StatusActive,
	}
	update := bson.M{
		"$push": bson.M{"members": member},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	result, err := r.workspaces.UpdateOne(ctx, filter, update)
	if err != nil {
		logrus.WithError(err).WithField("workspace_id", workspaceID).Error("Failed to add workspace member")
		return models.ErrDatabaseUpdate
	}
	if result.MatchedCount == 0 {
		return models.ErrWorkspaceNotFound
	}
	return nil
}

func (r *repository) UpdateMemberLastAccess(ctx context.Context, workspaceID, userID string) error {
	filter := bson.M{
		"_id":             workspaceID,
		"members.user_id": userID,
	}
	update := bson.M{
		"$set": bson.M{"members.$.last_accessed_at": time.Now()},
	}

	result, err := r.workspaces.UpdateOne(ctx, filter, update)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"workspace_id": workspaceID,
			"user_id":      userID,
		}).Error("Failed to update member last access")
		return models.ErrDatabaseUpdate
	}
	if result.MatchedCount == 0 {
		return models.ErrMemberNotFound
	}
	return nil
}

func (r *repository) InsertInvitation(ctx context.Context, invitation *Invitation) error {
	_, err := r.invitations.InsertOne(ctx, invitation)
	if err != nil {
		logrus.WithError(err).WithField("invitation_id", invitation.ID).Error("Failed to insert invitation")
		return models.ErrDatabaseInsert
	}
	return nil
}

func (r *repository) FindInvitationByID(ctx context.Context, id string) (*Invitation, error) {
	var invitation Invitation
	err := r.invitations.FindOne(ctx, bson.M{"_id": id}).Decode(&invitation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrInvitationNotFound
		}
		logrus.WithError(err).WithField("invitation_id", id).Error("Failed to find invitation")
		return nil, models.ErrDatabaseQuery
	}
	return &invitation, nil
}

func (r *repository) UpdateInvitationStatus(ctx context.Context, id, status string) error {
	update := bson.M{"$set": bson.M{"status": status}}

	result, err := r.invitations.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		logrus.WithError(err).WithField("invitation_id", id).Error("Failed to update invitation status")
		return models.ErrDatabaseUpdate
	}
	if result.MatchedCount == 0 {
		return models.ErrInvitationNotFound
	}
	return nil
}
