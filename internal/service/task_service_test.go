package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoapp/internal/model"
)

func newTaskFixture(t *testing.T) (*testEnv, *TaskService) {
	env := newTestEnv(t)
	svc := NewTaskService(env.tasks, env.categories)
	return env, svc
}

func TestCreateTaskValidation(t *testing.T) {
	env, svc := newTaskFixture(t)
	ctx := context.Background()
	alice := env.mustCreateUser(t, "alice", "")

	_, err := svc.Create(ctx, alice, TaskInput{Name: "", DueDate: time.Now()})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, alice, TaskInput{Name: "x", DueDate: time.Now(), Progress: 150})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, alice, TaskInput{Name: "x", DueDate: time.Now(), NotificationTime: 42})
	assert.ErrorIs(t, err, ErrInvalidInput)

	task, err := svc.Create(ctx, alice, TaskInput{Name: "defaults", DueDate: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, model.NotifyOneHour, task.NotificationTime)
	assert.Equal(t, model.NotificationPush, task.NotificationType)
}

func TestCreateCompletedTaskArchivesWhenPastDue(t *testing.T) {
	env, svc := newTaskFixture(t)
	ctx := context.Background()
	alice := env.mustCreateUser(t, "alice", "")

	task, err := svc.Create(ctx, alice, TaskInput{
		Name:     "already done",
		DueDate:  time.Now().Add(-time.Hour),
		Progress: 100,
	})
	require.NoError(t, err)
	assert.True(t, task.IsCompleted)
	assert.True(t, task.IsArchived)
}

func TestUpdateProgressCompletesAndLogs(t *testing.T) {
	env, svc := newTaskFixture(t)
	ctx := context.Background()

	alice := env.mustCreateUser(t, "alice", "")
	bob := env.mustCreateUser(t, "bob", "")
	task := env.mustCreateTask(t, alice, "shared work", time.Now().Add(time.Hour))
	env.mustAssign(t, task, bob)

	now := time.Now()
	updated, err := svc.UpdateProgress(ctx, bob, task.ID, 100, now)
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
	assert.False(t, updated.IsArchived, "not yet due, so not archived")

	var events []model.TaskProgress
	require.NoError(t, env.db.Where("task_id = ?", task.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, bob.ID, events[0].UserID)
	assert.Equal(t, 100, events[0].Progress)
}

func TestUpdateProgressAppendsPerEvent(t *testing.T) {
	env, svc := newTaskFixture(t)
	ctx := context.Background()

	alice := env.mustCreateUser(t, "alice", "")
	task := env.mustCreateTask(t, alice, "steps", time.Now().Add(time.Hour))

	for _, p := range []int{10, 40, 40} {
		_, err := svc.UpdateProgress(ctx, alice, task.ID, p, time.Now())
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, env.db.Model(&model.TaskProgress{}).Where("task_id = ?", task.ID).Count(&count).Error)
	assert.EqualValues(t, 3, count, "one row per update event, duplicates included")
}

func TestUpdateProgressByOutsiderForbidden(t *testing.T) {
	env, svc := newTaskFixture(t)
	ctx := context.Background()

	alice := env.mustCreateUser(t, "alice", "")
	mallory := env.mustCreateUser(t, "mallory", "")
	task := env.mustCreateTask(t, alice, "private", time.Now().Add(time.Hour))

	_, err := svc.UpdateProgress(ctx, mallory, task.ID, 50, time.Now())
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestArchiveAndRestore(t *testing.T) {
	env, svc := newTaskFixture(t)
	ctx := context.Background()

	alice := env.mustCreateUser(t, "alice", "")
	mallory := env.mustCreateUser(t, "mallory", "")
	task := env.mustCreateTask(t, alice, "old chore", time.Now().Add(-time.Hour))

	assert.ErrorIs(t, svc.Archive(ctx, mallory, task.ID), ErrNotAuthorized)

	require.NoError(t, svc.Archive(ctx, alice, task.ID))
	assert.True(t, env.reloadTask(t, task.ID).IsArchived)

	assert.ErrorIs(t, svc.Restore(ctx, mallory, task.ID), ErrNotAuthorized)

	require.NoError(t, svc.Restore(ctx, alice, task.ID))
	reloaded := env.reloadTask(t, task.ID)
	assert.False(t, reloaded.IsArchived)
	assert.True(t, reloaded.IgnoreArchive)
}

// A restored task must survive later saves even while completed and
// past due.
func TestRestoreSticksAcrossSaves(t *testing.T) {
	env, svc := newTaskFixture(t)
	ctx := context.Background()

	alice := env.mustCreateUser(t, "alice", "")
	task := env.mustCreateTask(t, alice, "finished late", time.Now().Add(-time.Hour))

	_, err := svc.UpdateProgress(ctx, alice, task.ID, 100, time.Now())
	require.NoError(t, err)
	require.True(t, env.reloadTask(t, task.ID).IsArchived, "completed past-due task auto-archives")

	require.NoError(t, svc.Restore(ctx, alice, task.ID))

	_, err = svc.UpdateProgress(ctx, alice, task.ID, 100, time.Now())
	require.NoError(t, err)
	assert.False(t, env.reloadTask(t, task.ID).IsArchived, "restore overrides the auto-archive rule")
}

func TestDeleteCreatorOnlyAndCascades(t *testing.T) {
	env, svc := newTaskFixture(t)
	collab := NewCollabService(env.tasks, env.users, env.collabs)
	ctx := context.Background()

	alice := env.mustCreateUser(t, "alice", "")
	bob := env.mustCreateUser(t, "bob", "")
	carol := env.mustCreateUser(t, "carol", "")
	task := env.mustCreateTask(t, alice, "doomed", time.Now().Add(time.Hour))
	env.mustAssign(t, task, bob)

	_, err := collab.ShareTask(ctx, alice, task.ID, carol.ID)
	require.NoError(t, err)
	require.NoError(t, env.db.Create(&model.SubTask{Name: "step", TaskID: task.ID}).Error)
	_, err = svc.UpdateProgress(ctx, bob, task.ID, 30, time.Now())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, bob, task.ID), ErrNotAuthorized)

	require.NoError(t, svc.Delete(ctx, alice, task.ID))

	var subtasks, progress, requests int64
	require.NoError(t, env.db.Model(&model.SubTask{}).Where("task_id = ?", task.ID).Count(&subtasks).Error)
	require.NoError(t, env.db.Model(&model.TaskProgress{}).Where("task_id = ?", task.ID).Count(&progress).Error)
	require.NoError(t, env.db.Model(&model.TaskCollabRequest{}).Where("task_id = ?", task.ID).Count(&requests).Error)
	assert.Zero(t, subtasks)
	assert.Zero(t, progress)
	assert.Zero(t, requests)
}

func TestUpdateReplacesCategories(t *testing.T) {
	env, svc := newTaskFixture(t)
	ctx := context.Background()

	alice := env.mustCreateUser(t, "alice", "")
	work := env.mustCreateCategory(t, "Work")
	misc := env.mustCreateCategory(t, "Misc")

	task, err := svc.Create(ctx, alice, TaskInput{
		Name:        "retag me",
		DueDate:     time.Now().Add(time.Hour),
		CategoryIDs: []uint{work.ID},
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, alice, task.ID, TaskInput{
		Name:        "retag me",
		DueDate:     task.DueDate,
		CategoryIDs: []uint{misc.ID},
	})
	require.NoError(t, err)

	reloaded := env.reloadTask(t, task.ID)
	require.Len(t, reloaded.Categories, 1)
	assert.Equal(t, "Misc", reloaded.Categories[0].Name)
}
