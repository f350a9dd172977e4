package service

import (
	"context"

	"todoapp/internal/model"
	"todoapp/internal/repository"
)

// CollabService runs the task-sharing workflow: pending requests between
// users, acceptance (by request or by link), decline, and exit. A request
// has no resolved state; accepting or declining deletes the row.
type CollabService struct {
	taskRepo   *repository.TaskRepository
	userRepo   *repository.UserRepository
	collabRepo *repository.CollabRepository
}

func NewCollabService(taskRepo *repository.TaskRepository, userRepo *repository.UserRepository, collabRepo *repository.CollabRepository) *CollabService {
	return &CollabService{taskRepo: taskRepo, userRepo: userRepo, collabRepo: collabRepo}
}

// EligibleCandidates returns the users the actor may invite to the task.
// Excluded: the actor, the task's creator, users already assigned, and
// users with a pending request for this task.
func (s *CollabService) EligibleCandidates(ctx context.Context, actor *model.User, task *model.Task) ([]model.User, error) {
	exclude := []uint{actor.ID, task.CreatorID}
	for _, u := range task.AssignedUsers {
		exclude = append(exclude, u.ID)
	}

	pending, err := s.collabRepo.PendingUserIDs(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	exclude = append(exclude, pending...)

	return s.userRepo.ListExcluding(ctx, exclude)
}

// ShareTask creates a pending collaboration request from the actor to
// the candidate. The candidate must be in the eligible set; a pending
// request for the same task and candidate yields ErrRequestAlreadySent.
func (s *CollabService) ShareTask(ctx context.Context, actor *model.User, taskID, candidateID uint) (*model.TaskCollabRequest, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if candidateID == actor.ID || candidateID == task.CreatorID {
		return nil, ErrNotEligible
	}
	for _, u := range task.AssignedUsers {
		if u.ID == candidateID {
			return nil, ErrNotEligible
		}
	}

	exists, err := s.collabRepo.Exists(ctx, task.ID, candidateID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrRequestAlreadySent
	}

	candidate, err := s.userRepo.FindByID(ctx, candidateID)
	if err != nil {
		return nil, ErrNotEligible
	}

	req := model.TaskCollabRequest{
		TaskID:     task.ID,
		FromUserID: actor.ID,
		ToUserID:   candidate.ID,
	}
	if err := s.collabRepo.Create(ctx, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Accept resolves a pending request in the actor's favor: the actor
// joins the task's assigned users and the request row is deleted. The
// actor must be the request's addressee.
func (s *CollabService) Accept(ctx context.Context, actor *model.User, requestID uint) error {
	req, err := s.collabRepo.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.ToUserID != actor.ID {
		return ErrNotAuthorized
	}

	task, err := s.taskRepo.FindByID(ctx, req.TaskID)
	if err != nil {
		return err
	}
	if err := s.taskRepo.AddAssignee(ctx, task, actor); err != nil {
		return err
	}
	return s.collabRepo.Delete(ctx, req)
}

// Decline deletes the request row without touching membership.
func (s *CollabService) Decline(ctx context.Context, actor *model.User, requestID uint) error {
	req, err := s.collabRepo.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.ToUserID != actor.ID {
		return ErrNotAuthorized
	}
	return s.collabRepo.Delete(ctx, req)
}

// CanAcceptByLink reports whether the actor may join the task through a
// share link: not the creator, not already assigned, and no pending
// request addressed to them for this task.
func (s *CollabService) CanAcceptByLink(ctx context.Context, actor *model.User, task *model.Task) (bool, error) {
	if actor == nil || actor.ID == task.CreatorID {
		return false, nil
	}
	for _, u := range task.AssignedUsers {
		if u.ID == actor.ID {
			return false, nil
		}
	}
	pending, err := s.collabRepo.Exists(ctx, task.ID, actor.ID)
	if err != nil {
		return false, err
	}
	return !pending, nil
}

// AcceptByLink joins the actor to the task through a share link. A
// pending request row addressed to the actor, if any, is consumed; link
// acceptance also works with no prior request at all.
func (s *CollabService) AcceptByLink(ctx context.Context, actor *model.User, taskID uint) error {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return err
	}

	ok, err := s.CanAcceptByLink(ctx, actor, task)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotEligible
	}

	if err := s.taskRepo.AddAssignee(ctx, task, actor); err != nil {
		return err
	}
	if _, err := s.collabRepo.DeleteForTaskUser(ctx, task.ID, actor.ID); err != nil {
		return err
	}
	return nil
}

// Exit removes the actor from the task's assigned users. No
// confirmation, no barrier against a later re-invite.
func (s *CollabService) Exit(ctx context.Context, actor *model.User, taskID uint) error {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	return s.taskRepo.RemoveAssignee(ctx, task, actor)
}

// ReceivedRequests returns pending requests addressed to the user, for
// the task list page.
func (s *CollabService) ReceivedRequests(ctx context.Context, user *model.User) ([]model.TaskCollabRequest, error) {
	return s.collabRepo.ListReceived(ctx, user.ID)
}
