package dto

import "github.com/spec-kit/smart-hospital-client/internal/domain"

// TasksResponse is the body of GET /tasks/{cleaner_id}.
type TasksResponse struct {
	Success bool          `json:"success"`
	Data    []domain.Task `json:"data"`
	Message string        `json:"message,omitempty"`
}

// DashboardResponse is the body of GET /dashboard.
type DashboardResponse struct {
	Success bool                    `json:"success"`
	Data    []domain.CleaningRecord `json:"data"`
	Message string                  `json:"message,omitempty"`
}

// ApproveRequest is the body of POST /approve.
type ApproveRequest struct {
	RecordID  int64                 `json:"record_id"`
	NewStatus domain.ApprovalStatus `json:"new_status"`
}

// ResultResponse is the generic {success, message, error} envelope used by
// the submit endpoints.
type ResultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Reason returns the most specific failure text in the envelope.
func (r ResultResponse) Reason() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Message
}
