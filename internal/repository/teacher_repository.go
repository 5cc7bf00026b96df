package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

const teacherSelect = `
SELECT t.id, t.full_name, t.email, t.active,
       COALESCE(ARRAY_AGG(l.level ORDER BY l.level) FILTER (WHERE l.level IS NOT NULL), '{}') AS levels
FROM teachers t
LEFT JOIN teacher_levels l ON l.teacher_id = t.id`

// TeacherRepository reads the teacher directory.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns teachers matching the filter ordered by name then id.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error) {
	var conditions []string
	var having []string
	var args []interface{}

	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("t.active = $%d", len(args)))
	}
	if filter.Level != "" {
		args = append(args, models.NormalizeLevel(filter.Level))
		having = append(having, fmt.Sprintf("BOOL_OR(UPPER(l.level) = $%d)", len(args)))
	}

	query := teacherSelect
	if len(conditions) > 0 {
		query += "\nWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\nGROUP BY t.id, t.full_name, t.email, t.active"
	if len(having) > 0 {
		query += "\nHAVING " + strings.Join(having, " AND ")
	}
	query += "\nORDER BY t.full_name ASC, t.id ASC"

	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// FindByID loads a teacher with its levels.
func (r *TeacherRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Teacher, error) {
	if exec == nil {
		exec = r.db
	}
	query := teacherSelect + `
WHERE t.id = $1
GROUP BY t.id, t.full_name, t.email, t.active`
	var teacher models.Teacher
	if err := sqlx.GetContext(ctx, exec, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}
