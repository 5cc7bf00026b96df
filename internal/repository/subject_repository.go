package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

// SubjectRepository reads the subject directory.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindByID loads a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Subject, error) {
	if exec == nil {
		exec = r.db
	}
	const query = `SELECT id, code, name, level FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := sqlx.GetContext(ctx, exec, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}
