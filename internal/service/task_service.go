package service

import (
	"context"
	"fmt"
	"time"

	"todoapp/internal/model"
	"todoapp/internal/repository"
)

// TaskInput represents data required to create or edit a task.
type TaskInput struct {
	Name                 string
	Description          string
	DueDate              time.Time
	Progress             int
	CategoryIDs          []uint
	NotificationsEnabled bool
	NotificationTime     int
	NotificationType     string
}

func (in *TaskInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.Progress < 0 || in.Progress > 100 {
		return fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalidInput)
	}
	if in.NotificationTime == 0 {
		in.NotificationTime = model.NotifyOneHour
	}
	if !model.ValidNotificationTime(in.NotificationTime) {
		return fmt.Errorf("%w: unknown notification time %d", ErrInvalidInput, in.NotificationTime)
	}
	if in.NotificationType == "" {
		in.NotificationType = model.NotificationPush
	}
	if !model.ValidNotificationType(in.NotificationType) {
		return fmt.Errorf("%w: unknown notification type %q", ErrInvalidInput, in.NotificationType)
	}
	return nil
}

// TaskService wraps task lifecycle logic: creation, edits, progress
// updates, archival and restoration. The completion/archival invariants
// are applied on every save.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
}

func NewTaskService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, categoryRepo: categoryRepo}
}

func (s *TaskService) Create(ctx context.Context, creator *model.User, input TaskInput) (*model.Task, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.FindByIDs(ctx, input.CategoryIDs)
	if err != nil {
		return nil, err
	}

	task := model.Task{
		Name:                 input.Name,
		CreatorID:            creator.ID,
		Description:          input.Description,
		DueDate:              input.DueDate,
		Progress:             input.Progress,
		NotificationsEnabled: input.NotificationsEnabled,
		NotificationTime:     input.NotificationTime,
		NotificationType:     input.NotificationType,
		Categories:           categories,
	}
	task.ApplySaveRules(time.Now())

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) Get(ctx context.Context, taskID uint) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, taskID)
}

// Update edits a task's fields. Only the creator or an assigned user
// may edit.
func (s *TaskService) Update(ctx context.Context, actor *model.User, taskID uint, input TaskInput) (*model.Task, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !canModify(task, actor) {
		return nil, ErrNotAuthorized
	}

	task.Name = input.Name
	task.Description = input.Description
	task.DueDate = input.DueDate
	task.Progress = input.Progress
	task.NotificationsEnabled = input.NotificationsEnabled
	task.NotificationTime = input.NotificationTime
	task.NotificationType = input.NotificationType
	task.ApplySaveRules(time.Now())

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.FindByIDs(ctx, input.CategoryIDs)
	if err != nil {
		return nil, err
	}
	if err := s.taskRepo.ReplaceCategories(ctx, task, categories); err != nil {
		return nil, err
	}
	task.Categories = categories

	return task, nil
}

// UpdateProgress records one progress-update event and moves the task's
// progress, applying the completion rule.
func (s *TaskService) UpdateProgress(ctx context.Context, actor *model.User, taskID uint, progress int, now time.Time) (*model.Task, error) {
	if progress < 0 || progress > 100 {
		return nil, fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalidInput)
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !canModify(task, actor) {
		return nil, ErrNotAuthorized
	}

	event := model.TaskProgress{
		TaskID:     task.ID,
		UserID:     actor.ID,
		Progress:   progress,
		UpdateTime: now,
	}
	if err := s.taskRepo.AddProgress(ctx, &event); err != nil {
		return nil, err
	}

	task.Progress = progress
	task.ApplySaveRules(now)
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task and everything it owns. Creator only.
func (s *TaskService) Delete(ctx context.Context, actor *model.User, taskID uint) error {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.CreatorID != actor.ID {
		return ErrNotAuthorized
	}
	return s.taskRepo.Delete(ctx, task)
}

// Archive moves a task to the archive. Creator or assigned users only.
func (s *TaskService) Archive(ctx context.Context, actor *model.User, taskID uint) error {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	if !canModify(task, actor) {
		return ErrNotAuthorized
	}
	task.IsArchived = true
	task.IgnoreArchive = false
	return s.taskRepo.Save(ctx, task)
}

// Restore brings an archived task back to the active set. The restore
// sticks: the auto-archive rule is suppressed for the task until it is
// archived again.
func (s *TaskService) Restore(ctx context.Context, actor *model.User, taskID uint) error {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	if !canModify(task, actor) {
		return ErrNotAuthorized
	}
	task.IsArchived = false
	task.IgnoreArchive = true
	return s.taskRepo.Save(ctx, task)
}

// ListActive returns incomplete, unarchived tasks the user participates
// in, soonest due first.
func (s *TaskService) ListActive(ctx context.Context, user *model.User) ([]model.Task, error) {
	return s.taskRepo.ListActiveFor(ctx, user.ID)
}

// ListDueBetween returns the user's tasks due in [start, end).
func (s *TaskService) ListDueBetween(ctx context.Context, user *model.User, start, end time.Time) ([]model.Task, error) {
	return s.taskRepo.ListDueBetweenFor(ctx, user.ID, start, end)
}

// HasTasks reports whether the user has created any tasks.
func (s *TaskService) HasTasks(ctx context.Context, user *model.User) (bool, error) {
	return s.taskRepo.HasTasksBy(ctx, user.ID)
}

// canModify reports whether the user created the task or is assigned
// to it.
func canModify(task *model.Task, user *model.User) bool {
	if task.CreatorID == user.ID {
		return true
	}
	for _, u := range task.AssignedUsers {
		if u.ID == user.ID {
			return true
		}
	}
	return false
}
