package service

import (
	"context"

	"todoapp/internal/model"
	"todoapp/internal/repository"
)

// CategoryFilter is the parsed filter form. Selected category ids apply
// only when the form was actually submitted.
type CategoryFilter struct {
	Submitted   bool
	CategoryIDs []uint
}

// Active reports whether the filter should restrict results.
func (f CategoryFilter) Active() bool {
	return f.Submitted && len(f.CategoryIDs) > 0
}

// TaskSets is the per-user partition of visible tasks.
type TaskSets struct {
	Owned    []model.Task
	Shared   []model.Task
	Archived []model.Task
}

// FilterService computes which tasks a user sees: owned and shared
// active tasks, plus the archive the user participates in, each
// optionally narrowed by category.
type FilterService struct {
	taskRepo *repository.TaskRepository
}

func NewFilterService(taskRepo *repository.TaskRepository) *FilterService {
	return &FilterService{taskRepo: taskRepo}
}

// TasksFor partitions the user's tasks and applies the category filter
// to each set independently. Tasks without any category always pass the
// filter.
func (s *FilterService) TasksFor(ctx context.Context, user *model.User, filter CategoryFilter) (*TaskSets, error) {
	owned, err := s.taskRepo.ListOwnedActive(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	shared, err := s.taskRepo.ListSharedActive(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	archived, err := s.taskRepo.ListArchivedFor(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	sets := &TaskSets{Owned: owned, Shared: shared, Archived: archived}
	if filter.Active() {
		sets.Owned = filterByCategories(sets.Owned, filter.CategoryIDs)
		sets.Shared = filterByCategories(sets.Shared, filter.CategoryIDs)
		sets.Archived = filterByCategories(sets.Archived, filter.CategoryIDs)
	}
	return sets, nil
}

// Apply narrows an already-loaded task list with the same category
// semantics as TasksFor. Used by the calendar view.
func (s *FilterService) Apply(tasks []model.Task, filter CategoryFilter) []model.Task {
	if !filter.Active() {
		return tasks
	}
	return filterByCategories(tasks, filter.CategoryIDs)
}

// filterByCategories keeps tasks with at least one selected category or
// with no categories at all, counting each task once.
func filterByCategories(tasks []model.Task, categoryIDs []uint) []model.Task {
	selected := make(map[uint]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		selected[id] = true
	}

	seen := make(map[uint]bool, len(tasks))
	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if seen[task.ID] {
			continue
		}
		if len(task.Categories) == 0 {
			seen[task.ID] = true
			out = append(out, task)
			continue
		}
		for _, cat := range task.Categories {
			if selected[cat.ID] {
				seen[task.ID] = true
				out = append(out, task)
				break
			}
		}
	}
	return out
}
