package model

import (
	"testing"
	"time"
)

func TestApplySaveRulesCompletesAtFullProgress(t *testing.T) {
	now := time.Now()
	task := Task{Progress: 100, DueDate: now.Add(time.Hour)}

	task.ApplySaveRules(now)

	if !task.IsCompleted {
		t.Error("progress 100 should mark the task completed")
	}
	if task.IsArchived {
		t.Error("task due in the future should not be archived")
	}
}

func TestApplySaveRulesDoesNotUncomplete(t *testing.T) {
	now := time.Now()
	task := Task{Progress: 40, IsCompleted: true, DueDate: now.Add(time.Hour)}

	task.ApplySaveRules(now)

	if !task.IsCompleted {
		t.Error("lowering progress must not un-complete a task")
	}
}

func TestApplySaveRulesArchivesCompletedPastDue(t *testing.T) {
	now := time.Now()
	task := Task{Progress: 100, DueDate: now.Add(-time.Hour)}

	task.ApplySaveRules(now)

	if !task.IsCompleted || !task.IsArchived {
		t.Errorf("completed past-due task should be archived, got completed=%v archived=%v",
			task.IsCompleted, task.IsArchived)
	}
}

func TestApplySaveRulesHonorsRestoreOverride(t *testing.T) {
	now := time.Now()
	task := Task{
		Progress:      100,
		IsCompleted:   true,
		DueDate:       now.Add(-time.Hour),
		IgnoreArchive: true,
	}

	task.ApplySaveRules(now)

	if task.IsArchived {
		t.Error("restored task must not be re-archived automatically")
	}
}

func TestApplySaveRulesIncompleteNotArchived(t *testing.T) {
	now := time.Now()
	task := Task{Progress: 50, DueDate: now.Add(-time.Hour)}

	task.ApplySaveRules(now)

	if task.IsCompleted || task.IsArchived {
		t.Error("incomplete overdue task should stay active")
	}
}

func TestInPushWindow(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	task := Task{DueDate: due, NotificationTime: NotifyOneHour}

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before window", due.Add(-90 * time.Minute), false},
		{"window start", due.Add(-60 * time.Minute), true},
		{"inside window", due.Add(-10 * time.Minute), true},
		{"at due", due, true},
		{"past due", due.Add(time.Minute), false},
	}
	for _, tc := range cases {
		if got := task.InPushWindow(tc.now); got != tc.want {
			t.Errorf("%s: InPushWindow=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRecipientsDeduplicates(t *testing.T) {
	creator := User{ID: 1, Username: "alice"}
	task := Task{
		Creator: creator,
		AssignedUsers: []User{
			{ID: 2, Username: "bob"},
			{ID: 1, Username: "alice"}, // creator also assigned
			{ID: 2, Username: "bob"},   // duplicate join row
		},
	}

	got := task.Recipients()
	if len(got) != 2 {
		t.Fatalf("expected 2 distinct recipients, got %d", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("unexpected recipient order: %+v", got)
	}
}

func TestNotificationEnums(t *testing.T) {
	for _, m := range []int{NotifyTenMinutes, NotifyOneHour, NotifyOneDay} {
		if !ValidNotificationTime(m) {
			t.Errorf("%d should be a valid notification time", m)
		}
	}
	if ValidNotificationTime(30) {
		t.Error("30 is not a selectable notification time")
	}
	if !ValidNotificationType(NotificationPush) || !ValidNotificationType(NotificationEmail) {
		t.Error("push and email must be valid notification types")
	}
	if ValidNotificationType("sms") {
		t.Error("sms is not a notification type")
	}
}
