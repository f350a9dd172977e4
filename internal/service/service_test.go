package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"todoapp/internal/model"
	"todoapp/internal/repository"
)

// newTestDB opens a fresh in-memory database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Task{},
		&model.SubTask{},
		&model.TaskProgress{},
		&model.TaskCollabRequest{},
		&model.WebPushSubscription{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

type testEnv struct {
	db         *gorm.DB
	users      *repository.UserRepository
	categories *repository.CategoryRepository
	tasks      *repository.TaskRepository
	collabs    *repository.CollabRepository
	pushes     *repository.PushRepository
}

func newTestEnv(t *testing.T) *testEnv {
	db := newTestDB(t)
	return &testEnv{
		db:         db,
		users:      repository.NewUserRepository(db),
		categories: repository.NewCategoryRepository(db),
		tasks:      repository.NewTaskRepository(db),
		collabs:    repository.NewCollabRepository(db),
		pushes:     repository.NewPushRepository(db),
	}
}

func (e *testEnv) mustCreateUser(t *testing.T, username, email string) *model.User {
	t.Helper()
	user := model.User{Username: username, Email: email}
	if err := e.users.Create(context.Background(), &user); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &user
}

func (e *testEnv) mustCreateTask(t *testing.T, creator *model.User, name string, due time.Time) *model.Task {
	t.Helper()
	task := model.Task{Name: name, CreatorID: creator.ID, DueDate: due}
	if err := e.tasks.Create(context.Background(), &task); err != nil {
		t.Fatalf("create task %s: %v", name, err)
	}
	return &task
}

func (e *testEnv) mustCreateCategory(t *testing.T, name string) *model.Category {
	t.Helper()
	cat, err := e.categories.GetOrCreate(context.Background(), name)
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return cat
}

func (e *testEnv) mustAssign(t *testing.T, task *model.Task, user *model.User) {
	t.Helper()
	if err := e.tasks.AddAssignee(context.Background(), task, user); err != nil {
		t.Fatalf("assign %s: %v", user.Username, err)
	}
}

func (e *testEnv) reloadTask(t *testing.T, id uint) *model.Task {
	t.Helper()
	task, err := e.tasks.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload task %d: %v", id, err)
	}
	return task
}
