package models

import "time"

// TimeEntry is the interval-bearing entity. The interval is half-open
// [StartTime, EndTime): the end instant itself is not included, so adjacent
// entries do not conflict. DurationMinutes is derived from the bounds and is
// never accepted as caller input.
type TimeEntry struct {
	ID              string     `json:"id" db:"id"`
	TenantID        string     `json:"tenant_id" db:"tenant_id"`
	UserID          string     `json:"user_id" db:"user_id"`
	ProjectID       string     `json:"project_id" db:"project_id"`
	TaskID          string     `json:"task_id" db:"task_id"`
	StartTime       time.Time  `json:"start_time" db:"start_time"`
	EndTime         time.Time  `json:"end_time" db:"end_time"`
	DurationMinutes int        `json:"duration_minutes" db:"duration_minutes"`
	Description     *string    `json:"description,omitempty" db:"description"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// TimeEntryDetailed is a read-only denormalized view joining display names.
// It is a listing convenience and takes no part in the write invariant.
type TimeEntryDetailed struct {
	TimeEntry
	ProjectName string `json:"project_name" db:"project_name"`
	TaskName    string `json:"task_name" db:"task_name"`
	UserName    string `json:"user_name" db:"user_name"`
}
