package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"todoapp/internal/model"
)

// TaskRepository handles CRUD and queries for tasks and their owned rows
// (subtasks, progress events, collaboration requests).
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Save persists the task's scalar fields. Associations are managed
// explicitly via ReplaceCategories / AddAssignee / RemoveAssignee.
func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Omit("Categories", "AssignedUsers", "SubTasks", "Creator").Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Categories").
		Preload("AssignedUsers").
		Preload("SubTasks").
		First(&task, taskID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a task and everything it owns: subtasks, progress
// events, pending collaboration requests and the join rows.
func (r *TaskRepository) Delete(ctx context.Context, task *model.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&model.SubTask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&model.TaskProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&model.TaskCollabRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Model(task).Association("Categories").Clear(); err != nil {
			return err
		}
		if err := tx.Model(task).Association("AssignedUsers").Clear(); err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// assignedTaskIDs is a subquery over the task/user join table.
func (r *TaskRepository) assignedTaskIDs(userID uint) *gorm.DB {
	return r.db.Table("task_assigned_users").Select("task_id").Where("user_id = ?", userID)
}

// ListOwnedActive returns unarchived tasks created by the user.
func (r *TaskRepository) ListOwnedActive(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Preload("Creator").Preload("Categories").Preload("AssignedUsers").
		Where("creator_id = ? AND is_archived = ?", userID, false).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListSharedActive returns unarchived tasks the user is assigned to.
func (r *TaskRepository) ListSharedActive(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Preload("Creator").Preload("Categories").Preload("AssignedUsers").
		Where("is_archived = ? AND id IN (?)", false, r.assignedTaskIDs(userID)).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListArchivedFor returns archived tasks the user created or is assigned to.
func (r *TaskRepository) ListArchivedFor(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Preload("Creator").Preload("Categories").Preload("AssignedUsers").
		Where("is_archived = ?", true).
		Where("creator_id = ? OR id IN (?)", userID, r.assignedTaskIDs(userID)).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListActiveFor returns incomplete, unarchived tasks the user created or
// is assigned to, soonest due first. Feeds the calendar sidebar.
func (r *TaskRepository) ListActiveFor(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Preload("Creator").Preload("Categories").Preload("AssignedUsers").
		Where("is_completed = ? AND is_archived = ?", false, false).
		Where("creator_id = ? OR id IN (?)", userID, r.assignedTaskIDs(userID)).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListDueBetweenFor returns tasks for the user with a due date in
// [start, end), soonest first. Feeds the calendar month grid.
func (r *TaskRepository) ListDueBetweenFor(ctx context.Context, userID uint, start, end time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Preload("Creator").Preload("Categories").Preload("AssignedUsers").
		Where("due_date >= ? AND due_date < ?", start, end).
		Where("creator_id = ? OR id IN (?)", userID, r.assignedTaskIDs(userID)).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByCreator returns every task the user created, for the AI
// suggestion prompt.
func (r *TaskRepository) ListByCreator(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Preload("Categories").
		Where("creator_id = ?", userID).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// HasTasksBy reports whether the user has created any task at all.
func (r *TaskRepository) HasTasksBy(ctx context.Context, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("creator_id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListNotifiable returns push-channel tasks that are eligible for
// reminders: not yet due, not completed, notifications on. Window
// matching happens in the reminder service.
func (r *TaskRepository) ListNotifiable(ctx context.Context, now time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Preload("Creator").Preload("AssignedUsers").
		Where("notifications_enabled = ? AND is_completed = ? AND notification_type = ? AND due_date >= ?",
			true, false, model.NotificationPush, now).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListEmailNotifiable returns email-channel tasks due in [now, end].
func (r *TaskRepository) ListEmailNotifiable(ctx context.Context, now, end time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Preload("Creator").Preload("AssignedUsers").
		Where("notifications_enabled = ? AND is_completed = ? AND notification_type = ?", true, false, model.NotificationEmail).
		Where("due_date >= ? AND due_date <= ?", now, end).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) ReplaceCategories(ctx context.Context, task *model.Task, categories []model.Category) error {
	if err := r.db.WithContext(ctx).Model(task).Association("Categories").Replace(categories); err != nil {
		return fmt.Errorf("replace categories: %w", err)
	}
	return nil
}

func (r *TaskRepository) AddAssignee(ctx context.Context, task *model.Task, user *model.User) error {
	if err := r.db.WithContext(ctx).Model(task).Association("AssignedUsers").Append(user); err != nil {
		return fmt.Errorf("add assignee: %w", err)
	}
	return nil
}

func (r *TaskRepository) RemoveAssignee(ctx context.Context, task *model.Task, user *model.User) error {
	if err := r.db.WithContext(ctx).Model(task).Association("AssignedUsers").Delete(user); err != nil {
		return fmt.Errorf("remove assignee: %w", err)
	}
	return nil
}

// AddProgress appends one progress-update event.
func (r *TaskRepository) AddProgress(ctx context.Context, event *model.TaskProgress) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("add progress: %w", err)
	}
	return nil
}
