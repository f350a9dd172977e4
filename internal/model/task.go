package model

import "time"

// Notification lead times, in minutes before the due date.
const (
	NotifyTenMinutes = 10
	NotifyOneHour    = 60
	NotifyOneDay     = 1440
)

// Notification delivery channels.
const (
	NotificationPush  = "push"
	NotificationEmail = "email"
)

// ValidNotificationTime reports whether minutes is one of the selectable
// lead times.
func ValidNotificationTime(minutes int) bool {
	return minutes == NotifyTenMinutes || minutes == NotifyOneHour || minutes == NotifyOneDay
}

// ValidNotificationType reports whether t is a known delivery channel.
func ValidNotificationType(t string) bool {
	return t == NotificationPush || t == NotificationEmail
}

// Task represents a single item on a user's list, possibly shared with
// other users.
type Task struct {
	ID          uint `gorm:"primaryKey"`
	Name        string
	CreatorID   uint `gorm:"index"`
	Creator     User
	Description string
	DueDate     time.Time
	Progress    int  `gorm:"default:0"`
	IsCompleted bool `gorm:"default:false"`
	IsArchived  bool `gorm:"default:false"`

	// IgnoreArchive is set when a task is manually restored from the
	// archive so the auto-archive rule does not put it straight back.
	IgnoreArchive bool `gorm:"default:false"`

	NotificationsEnabled bool   `gorm:"default:false"`
	NotificationTime     int    `gorm:"default:60"`
	NotificationType     string `gorm:"default:push"`

	Categories    []Category `gorm:"many2many:task_categories"`
	AssignedUsers []User     `gorm:"many2many:task_assigned_users"`
	SubTasks      []SubTask

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplySaveRules enforces the completion and archival invariants. It is
// called before every persist:
//   - progress at 100 marks the task completed (never un-marks),
//   - a completed task past its due date is archived, unless a manual
//     restore asked for the archive rule to be skipped.
func (t *Task) ApplySaveRules(now time.Time) {
	if t.Progress == 100 {
		t.IsCompleted = true
	}
	if t.IsCompleted && !t.IgnoreArchive && t.DueDate.Before(now) {
		t.IsArchived = true
	}
}

// NotifyWindowStart is the earliest moment a push reminder for the task
// should fire.
func (t *Task) NotifyWindowStart() time.Time {
	return t.DueDate.Add(-time.Duration(t.NotificationTime) * time.Minute)
}

// InPushWindow reports whether now falls inside [due - lead, due].
func (t *Task) InPushWindow(now time.Time) bool {
	return !now.Before(t.NotifyWindowStart()) && !now.After(t.DueDate)
}

// Recipients returns the creator plus all assigned users, de-duplicated
// by id. The creator is always first.
func (t *Task) Recipients() []User {
	seen := map[uint]bool{t.Creator.ID: true}
	out := []User{t.Creator}
	for _, u := range t.AssignedUsers {
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		out = append(out, u)
	}
	return out
}

// SubTask is a smaller step inside a task. It lives and dies with its
// parent.
type SubTask struct {
	ID            uint `gorm:"primaryKey"`
	Name          string
	TaskID        uint   `gorm:"index"`
	IsCompleted   bool   `gorm:"default:false"`
	AssignedUsers []User `gorm:"many2many:subtask_assigned_users"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TaskProgress is one progress-update event. Rows are append-only; a
// task accumulates one row per update, not one row per user.
type TaskProgress struct {
	ID         uint `gorm:"primaryKey"`
	TaskID     uint `gorm:"index"`
	UserID     uint `gorm:"index"`
	Progress   int  `gorm:"default:0"`
	UpdateTime time.Time
}
