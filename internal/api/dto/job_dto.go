package dto

import "time"

// JobResponse is the wire shape of a job posting in listings.
type JobResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	City      string    `json:"city"`
	Specialty string    `json:"specialty"`
	CreatedAt time.Time `json:"created_at"`
}

// JobListResponse wraps a listing together with the viewer context the
// optional gate resolved, so clients can adapt the presentation.
type JobListResponse struct {
	Jobs   []JobResponse `json:"jobs"`
	Viewer *ViewerInfo   `json:"viewer,omitempty"`
}

// ViewerInfo describes the optionally-authenticated caller. Values come
// straight from token claims, not from the account store.
type ViewerInfo struct {
	ID         int64  `json:"id"`
	Role       string `json:"role"`
	IsApproved bool   `json:"is_approved"`
}
