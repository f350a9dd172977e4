package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoapp/internal/model"
	"todoapp/internal/notify"
)

type sentPush struct {
	userID  uint
	payload notify.PushPayload
}

type fakePushSender struct {
	sent     []sentPush
	failUser uint
}

func (f *fakePushSender) Send(_ context.Context, sub *model.WebPushSubscription, payload notify.PushPayload) error {
	if f.failUser != 0 && sub.UserID == f.failUser {
		return fmt.Errorf("endpoint returned 410")
	}
	f.sent = append(f.sent, sentPush{userID: sub.UserID, payload: payload})
	return nil
}

type sentEmail struct {
	to      string
	subject string
	body    string
}

type fakeEmailSender struct {
	sent     []sentEmail
	failAddr string
}

func (f *fakeEmailSender) Send(_ context.Context, to, subject, body string) error {
	if to == f.failAddr {
		return fmt.Errorf("mailbox unavailable")
	}
	f.sent = append(f.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}

func newReminderFixture(t *testing.T) (*testEnv, *ReminderService, *fakePushSender, *fakeEmailSender) {
	env := newTestEnv(t)
	push := &fakePushSender{}
	email := &fakeEmailSender{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewReminderService(env.tasks, env.pushes, push, email, logger)
	return env, svc, push, email
}

func (e *testEnv) mustCreateNotifiableTask(t *testing.T, creator *model.User, name string, due time.Time, notifType string) *model.Task {
	t.Helper()
	task := model.Task{
		Name:                 name,
		CreatorID:            creator.ID,
		DueDate:              due,
		NotificationsEnabled: true,
		NotificationTime:     model.NotifyOneHour,
		NotificationType:     notifType,
	}
	if err := e.tasks.Create(context.Background(), &task); err != nil {
		t.Fatalf("create task %s: %v", name, err)
	}
	return &task
}

func (e *testEnv) mustSubscribe(t *testing.T, user *model.User) {
	t.Helper()
	info := fmt.Sprintf(`{"endpoint":"https://push.example/%s","keys":{"p256dh":"k","auth":"a"}}`, user.Username)
	if err := e.pushes.Upsert(context.Background(), user.ID, info); err != nil {
		t.Fatalf("subscribe %s: %v", user.Username, err)
	}
}

func TestSendPushRemindersNotifiesAllRecipients(t *testing.T) {
	env, svc, push, _ := newReminderFixture(t)
	ctx := context.Background()
	now := time.Now()

	alice := env.mustCreateUser(t, "alice", "")
	bob := env.mustCreateUser(t, "bob", "")
	env.mustSubscribe(t, alice)
	env.mustSubscribe(t, bob)

	// due in 50 minutes with a 60 minute lead: inside the window
	task := env.mustCreateNotifiableTask(t, alice, "standup prep", now.Add(50*time.Minute), model.NotificationPush)
	env.mustAssign(t, task, bob)

	sent, err := svc.SendPushReminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, push.sent, 2)

	for _, p := range push.sent {
		assert.Equal(t, "Task Reminder!", p.payload.Head)
		assert.Contains(t, p.payload.Body, "'standup prep' is coming up at")
		assert.Equal(t, "/task_view/", p.payload.URL)
	}
	assert.Equal(t, alice.ID, push.sent[0].userID, "creator is notified first")
	assert.Equal(t, bob.ID, push.sent[1].userID)
}

func TestSendPushRemindersSkipsOutsideWindow(t *testing.T) {
	env, svc, push, _ := newReminderFixture(t)
	ctx := context.Background()
	now := time.Now()

	alice := env.mustCreateUser(t, "alice", "")
	env.mustSubscribe(t, alice)

	// due in 3 hours but lead is only 1 hour
	env.mustCreateNotifiableTask(t, alice, "too early", now.Add(3*time.Hour), model.NotificationPush)

	sent, err := svc.SendPushReminders(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, push.sent)
}

func TestSendPushRemindersIgnoresEmailChannelTasks(t *testing.T) {
	env, svc, push, _ := newReminderFixture(t)
	ctx := context.Background()
	now := time.Now()

	alice := env.mustCreateUser(t, "alice", "alice@example.com")
	env.mustSubscribe(t, alice)
	env.mustCreateNotifiableTask(t, alice, "mail only", now.Add(30*time.Minute), model.NotificationEmail)

	sent, err := svc.SendPushReminders(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, push.sent)
}

func TestSendPushRemindersSkipsUnsubscribedRecipients(t *testing.T) {
	env, svc, push, _ := newReminderFixture(t)
	ctx := context.Background()
	now := time.Now()

	alice := env.mustCreateUser(t, "alice", "")
	bob := env.mustCreateUser(t, "bob", "")
	env.mustSubscribe(t, bob) // alice never subscribed

	task := env.mustCreateNotifiableTask(t, alice, "half subscribed", now.Add(10*time.Minute), model.NotificationPush)
	env.mustAssign(t, task, bob)

	sent, err := svc.SendPushReminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, push.sent, 1)
	assert.Equal(t, bob.ID, push.sent[0].userID)
}

func TestSendPushRemindersIsolatesPerRecipientFailures(t *testing.T) {
	env, svc, push, _ := newReminderFixture(t)
	ctx := context.Background()
	now := time.Now()

	alice := env.mustCreateUser(t, "alice", "")
	bob := env.mustCreateUser(t, "bob", "")
	env.mustSubscribe(t, alice)
	env.mustSubscribe(t, bob)
	push.failUser = alice.ID

	task := env.mustCreateNotifiableTask(t, alice, "flaky endpoint", now.Add(20*time.Minute), model.NotificationPush)
	env.mustAssign(t, task, bob)

	sent, err := svc.SendPushReminders(ctx, now)
	require.NoError(t, err, "one failed endpoint must not abort the batch")
	assert.Equal(t, 1, sent)
	require.Len(t, push.sent, 1)
	assert.Equal(t, bob.ID, push.sent[0].userID)
}

func TestSendEmailRemindersWithinWindow(t *testing.T) {
	env, svc, _, email := newReminderFixture(t)
	ctx := context.Background()
	now := time.Now()

	alice := env.mustCreateUser(t, "alice", "alice@example.com")
	bob := env.mustCreateUser(t, "bob", "bob@example.com")

	due := now.Add(20 * time.Hour)
	task := env.mustCreateNotifiableTask(t, alice, "quarterly report", due, model.NotificationEmail)
	env.mustAssign(t, task, bob)

	// outside the 24 hour window
	env.mustCreateNotifiableTask(t, alice, "far away", now.Add(48*time.Hour), model.NotificationEmail)

	sent, err := svc.SendEmailReminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, email.sent, 2)

	dueStr := due.Format("2006-01-02 15:04")
	for _, m := range email.sent {
		assert.Equal(t, "Reminder: Task 'quarterly report' is due soon!", m.subject)
		assert.Contains(t, m.body, dueStr)
		assert.Contains(t, m.body, `"quarterly report"`)
	}
	assert.Equal(t, "alice@example.com", email.sent[0].to)
	assert.Equal(t, "bob@example.com", email.sent[1].to)
	assert.True(t, strings.HasPrefix(email.sent[0].body, "Hi alice,"))
}

func TestSendEmailRemindersSkipsUsersWithoutAddress(t *testing.T) {
	env, svc, _, email := newReminderFixture(t)
	ctx := context.Background()
	now := time.Now()

	alice := env.mustCreateUser(t, "alice", "")
	bob := env.mustCreateUser(t, "bob", "bob@example.com")

	task := env.mustCreateNotifiableTask(t, alice, "no address", now.Add(2*time.Hour), model.NotificationEmail)
	env.mustAssign(t, task, bob)

	sent, err := svc.SendEmailReminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, email.sent, 1)
	assert.Equal(t, "bob@example.com", email.sent[0].to)
}

func TestSendEmailRemindersIsolatesFailures(t *testing.T) {
	env, svc, _, email := newReminderFixture(t)
	ctx := context.Background()
	now := time.Now()

	alice := env.mustCreateUser(t, "alice", "alice@example.com")
	bob := env.mustCreateUser(t, "bob", "bob@example.com")
	email.failAddr = "alice@example.com"

	task := env.mustCreateNotifiableTask(t, alice, "bouncy", now.Add(time.Hour), model.NotificationEmail)
	env.mustAssign(t, task, bob)

	sent, err := svc.SendEmailReminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, email.sent, 1)
	assert.Equal(t, "bob@example.com", email.sent[0].to)
}
