package domain

import "time"

// JobStatus represents lifecycle states for a job posting.
type JobStatus string

const (
	JobStatusDraft     JobStatus = "DRAFT"
	JobStatusPublished JobStatus = "PUBLISHED"
	JobStatusClosed    JobStatus = "CLOSED"
)

// JobPosting is the domain model for hospital job listings. The gate does
// not interpret these fields; they exist so optionally-authenticated content
// has something real to serve.
type JobPosting struct {
	ID         int64
	HospitalID int64
	Title      string
	City       string
	Specialty  string
	Status     JobStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
