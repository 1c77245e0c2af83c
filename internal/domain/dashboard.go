package domain

import "time"

// ApprovalStatus is the manager decision on a cleaning record.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRework   ApprovalStatus = "Rework"
)

// Valid reports whether s may be submitted as a manager decision.
func (s ApprovalStatus) Valid() bool {
	return s == ApprovalApproved || s == ApprovalRework
}

// Task is a room cleaning assignment.
type Task struct {
	ID             int64     `json:"id"`
	RoomID         string    `json:"room_id"`
	CleanerID      string    `json:"cleaner_id"`
	AssignedByID   string    `json:"assigned_by_id,omitempty"`
	AssignmentDate string    `json:"assignment_date"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TaskAssignment is the payload an administrator submits to assign work.
type TaskAssignment struct {
	RoomID         string `json:"room_id"`
	CleanerID      string `json:"cleaner_id"`
	AssignmentDate string `json:"assignment_date"`
	Notes          string `json:"notes"`
	AssignedByID   string `json:"assigned_by_id"`
}

// CleaningRecord is a submitted cleaning awaiting or past manager review.
type CleaningRecord struct {
	ID                    int64          `json:"id"`
	RoomID                string         `json:"room_id"`
	CleanerID             string         `json:"cleaner_id"`
	AfterPhotoURL         string         `json:"after_photo_url,omitempty"`
	CleanlinessStatus     string         `json:"cleanliness_status"`
	AIRemarks             string         `json:"ai_remarks"`
	ManagerApprovalStatus ApprovalStatus `json:"manager_approval_status"`
	CreatedAt             time.Time      `json:"created_at"`
}

// Report is a downloaded report file.
type Report struct {
	Filename    string
	ContentType string
	Content     []byte
}
