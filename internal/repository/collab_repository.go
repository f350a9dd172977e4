package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"todoapp/internal/model"
)

// CollabRepository manages pending collaboration requests. A row existing
// means the request is pending; resolution deletes it.
type CollabRepository struct {
	db *gorm.DB
}

func NewCollabRepository(db *gorm.DB) *CollabRepository {
	return &CollabRepository{db: db}
}

func (r *CollabRepository) Create(ctx context.Context, req *model.TaskCollabRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("create collab request: %w", err)
	}
	return nil
}

func (r *CollabRepository) FindByID(ctx context.Context, id uint) (*model.TaskCollabRequest, error) {
	var req model.TaskCollabRequest
	if err := r.db.WithContext(ctx).
		Preload("Task").Preload("Task.Creator").
		Preload("FromUser").Preload("ToUser").
		First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *CollabRepository) Delete(ctx context.Context, req *model.TaskCollabRequest) error {
	if err := r.db.WithContext(ctx).Delete(req).Error; err != nil {
		return fmt.Errorf("delete collab request: %w", err)
	}
	return nil
}

// DeleteForTaskUser removes any pending request for the task addressed
// to the user. Returns how many rows were removed (zero is fine: the
// link-based accept path may have no prior request).
func (r *CollabRepository) DeleteForTaskUser(ctx context.Context, taskID, toUserID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("task_id = ? AND to_user_id = ?", taskID, toUserID).
		Delete(&model.TaskCollabRequest{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete collab request: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ListReceived returns pending requests addressed to the user.
func (r *CollabRepository) ListReceived(ctx context.Context, userID uint) ([]model.TaskCollabRequest, error) {
	var reqs []model.TaskCollabRequest
	if err := r.db.WithContext(ctx).
		Preload("Task").Preload("Task.Creator").Preload("FromUser").
		Where("to_user_id = ?", userID).
		Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// PendingUserIDs returns the ids of users who already have a pending
// request for the task.
func (r *CollabRepository) PendingUserIDs(ctx context.Context, taskID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.TaskCollabRequest{}).
		Where("task_id = ?", taskID).
		Pluck("to_user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Exists reports whether a pending request for the task addressed to
// the user exists.
func (r *CollabRepository) Exists(ctx context.Context, taskID, toUserID uint) (bool, error) {
	var req model.TaskCollabRequest
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND to_user_id = ?", taskID, toUserID).
		First(&req).Error
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("find collab request: %w", err)
	}
}
