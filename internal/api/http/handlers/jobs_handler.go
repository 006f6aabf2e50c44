package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medikariyer/api/internal/api/dto"
	"github.com/medikariyer/api/internal/auth"
	"github.com/medikariyer/api/internal/repository"
)

// JobsHandler serves the public job listing. The route runs behind the
// optional gate: an anonymous request and a request with a broken token both
// land here, just without a viewer.
type JobsHandler struct {
	jobs repository.JobRepository
}

// NewJobsHandler constructs handler.
func NewJobsHandler(jobs repository.JobRepository) *JobsHandler {
	return &JobsHandler{jobs: jobs}
}

// List handles GET /jobs.
func (h *JobsHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	jobs, err := h.jobs.ListPublished(c.Context(), limit)
	if err != nil {
		return err
	}

	response := dto.JobListResponse{Jobs: make([]dto.JobResponse, 0, len(jobs))}
	for _, job := range jobs {
		response.Jobs = append(response.Jobs, dto.JobResponse{
			ID:        job.ID,
			Title:     job.Title,
			City:      job.City,
			Specialty: job.Specialty,
			CreatedAt: job.CreatedAt,
		})
	}

	if session, ok := auth.SessionFromContext(c); ok {
		response.Viewer = &dto.ViewerInfo{
			ID:         session.ID,
			Role:       string(session.Role),
			IsApproved: session.IsApproved,
		}
	}

	return c.JSON(fiber.Map{"data": response})
}
