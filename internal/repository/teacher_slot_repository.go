package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

// TeacherSlotRepository is the (teacher, day, slot) assignment index.
type TeacherSlotRepository struct {
	db *sqlx.DB
}

// NewTeacherSlotRepository constructs the repository.
func NewTeacherSlotRepository(db *sqlx.DB) *TeacherSlotRepository {
	return &TeacherSlotRepository{db: db}
}

func (r *TeacherSlotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// IsTeacherFree reports whether the teacher has no class in the cell.
func (r *TeacherSlotRepository) IsTeacherFree(ctx context.Context, exec sqlx.ExtContext, teacherID string, key models.SlotKey) (bool, error) {
	const query = `SELECT NOT EXISTS (SELECT 1 FROM teacher_slot_assignments WHERE teacher_id = $1 AND day_of_week = $2 AND time_slot = $3)`
	var free bool
	if err := sqlx.GetContext(ctx, r.exec(exec), &free, query, teacherID, key.Day, key.Slot); err != nil {
		return false, fmt.Errorf("check teacher slot: %w", err)
	}
	return free, nil
}

// Assign records the teacher in the cell; zero affected rows means the cell is taken.
func (r *TeacherSlotRepository) Assign(ctx context.Context, exec sqlx.ExtContext, teacherID string, key models.SlotKey, batchClassID string) error {
	const query = `
INSERT INTO teacher_slot_assignments (teacher_id, day_of_week, time_slot, batch_class_id)
VALUES ($1, $2, $3, $4)
ON CONFLICT (teacher_id, day_of_week, time_slot) DO NOTHING`
	result, err := r.exec(exec).ExecContext(ctx, query, teacherID, key.Day, key.Slot, batchClassID)
	if err != nil {
		return fmt.Errorf("assign teacher slot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check assigned teacher rows: %w", err)
	}
	if affected == 0 {
		return ErrTeacherSlotTaken
	}
	return nil
}

// Unassign clears the cell; clearing an empty cell is a no-op.
func (r *TeacherSlotRepository) Unassign(ctx context.Context, exec sqlx.ExtContext, teacherID string, key models.SlotKey) error {
	const query = `DELETE FROM teacher_slot_assignments WHERE teacher_id = $1 AND day_of_week = $2 AND time_slot = $3`
	if _, err := r.exec(exec).ExecContext(ctx, query, teacherID, key.Day, key.Slot); err != nil {
		return fmt.Errorf("unassign teacher slot: %w", err)
	}
	return nil
}

// BusyTeacherIDs returns teachers holding at least one of the given cells.
func (r *TeacherSlotRepository) BusyTeacherIDs(ctx context.Context, keys []models.SlotKey) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	days := make([]string, len(keys))
	slots := make([]string, len(keys))
	for i, key := range keys {
		days[i] = string(key.Day)
		slots[i] = string(key.Slot)
	}
	const query = `
SELECT DISTINCT t.teacher_id
FROM teacher_slot_assignments t
JOIN UNNEST($1::text[], $2::text[]) AS k(day_of_week, time_slot)
  ON k.day_of_week = t.day_of_week AND k.time_slot = t.time_slot`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, pq.Array(days), pq.Array(slots)); err != nil {
		return nil, fmt.Errorf("list busy teachers: %w", err)
	}
	return ids, nil
}
