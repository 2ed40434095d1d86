package transport

import "time"

// Application statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ApplyRequest holds the text fields of the multipart application form.
type ApplyRequest struct {
	Job       string `form:"job"`
	FirstName string `form:"first_name" validate:"required,min=2,max=100"`
	LastName  string `form:"last_name" validate:"required,min=2,max=100"`
	Email     string `form:"email" validate:"required,email"`
}

type ListRequest struct {
	Job    string `form:"job"`
	Status string `form:"status" validate:"omitempty,oneof=pending approved rejected"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

type CandidateResponse struct {
	ID            int64     `json:"id"`
	Job           int64     `json:"job"`
	JobSlug       string    `json:"job_slug"`
	JobTitle      string    `json:"job_title"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	CVURL         *string   `json:"cv_url"`
	Status        string    `json:"status"`
	StatusDisplay string    `json:"status_display"`
	CreatedAt     time.Time `json:"created_at"`
}

// StatusLabel returns the French label of an application status.
func StatusLabel(status string) string {
	switch status {
	case StatusApproved:
		return "Validée"
	case StatusRejected:
		return "Refusée"
	default:
		return "En attente"
	}
}
