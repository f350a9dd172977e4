package model

import "time"

// TaskCollabRequest is a pending invitation to collaborate on a task.
// There is no resolved state: accepting or declining deletes the row,
// so an existing row always means "pending".
type TaskCollabRequest struct {
	ID         uint `gorm:"primaryKey"`
	TaskID     uint `gorm:"index"`
	Task       Task
	FromUserID uint `gorm:"index"`
	FromUser   User
	ToUserID   uint `gorm:"index"`
	ToUser     User
	CreatedAt  time.Time
}
