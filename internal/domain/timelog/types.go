// Package timelog records hours worked on tasks. Every entry belongs to the user who logged it.
package timelog

import "time"

// DateLayout is the wire and storage format of Entry.Date.
const DateLayout = "2006-01-02"

// MaxHours bounds a single entry.
const MaxHours = 24

// Entry is one logged block of work.
type Entry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	TaskID    int64     `json:"taskId"`
	Hours     float64   `json:"hours"`
	Date      string    `json:"date"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EntryInput carries the caller-editable fields for create and update.
type EntryInput struct {
	TaskID int64   `json:"taskId"`
	Hours  float64 `json:"hours"`
	Date   string  `json:"date"`
	Note   string  `json:"note"`
}
