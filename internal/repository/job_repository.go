package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medikariyer/api/internal/domain"
)

// JobRepository reads job postings. The gate protects but never interprets
// this data; only a published listing is needed here.
type JobRepository interface {
	ListPublished(ctx context.Context, limit int) ([]domain.JobPosting, error)
}

type jobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository returns a Postgres-backed implementation.
func NewJobRepository(pool *pgxpool.Pool) JobRepository {
	return &jobRepository{pool: pool}
}

func (r *jobRepository) ListPublished(ctx context.Context, limit int) ([]domain.JobPosting, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	const query = `
        SELECT id, hospital_id, title, city, specialty, status, created_at, updated_at
        FROM job_postings WHERE status=$1
        ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, domain.JobStatusPublished, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.JobPosting
	for rows.Next() {
		var job domain.JobPosting
		if err := rows.Scan(
			&job.ID,
			&job.HospitalID,
			&job.Title,
			&job.City,
			&job.Specialty,
			&job.Status,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
