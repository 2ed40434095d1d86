package transport

import "time"

// JobRequest is used for both creation and partial updates; absent fields
// are nil.
type JobRequest struct {
	Title       *string  `json:"title"`
	Location    *string  `json:"location"`
	Type        *string  `json:"type"`
	Description *string  `json:"description"`
	Missions    []string `json:"missions"`
	Profile     []string `json:"profile"`
	Diploma     *string  `json:"diploma"`
	StartDate   *string  `json:"start_date"`
	IsActive    *bool    `json:"is_active"`
}

type JobResponse struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Missions    []string  `json:"missions"`
	Profile     []string  `json:"profile"`
	Diploma     string    `json:"diploma"`
	StartDate   string    `json:"start_date"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// JobSummary is the light shape used by listings.
type JobSummary struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type ActiveJobsResponse struct {
	Count   int          `json:"count"`
	Results []JobSummary `json:"results"`
}

type AllJobsResponse struct {
	Count         int           `json:"count"`
	ActiveCount   int           `json:"active_count"`
	InactiveCount int           `json:"inactive_count"`
	Results       []JobResponse `json:"results"`
}

type ToggleResponse struct {
	Detail   string `json:"detail"`
	IsActive bool   `json:"is_active"`
}
