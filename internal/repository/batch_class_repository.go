package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

const batchClassDetailSelect = `
SELECT bc.id, bc.batch_id, bc.room_id, bc.subject_id, bc.teacher_id, bc.day_of_week, bc.time_slot, bc.created_at,
       b.name AS batch_name, r.name AS room_name, s.name AS subject_name, t.full_name AS teacher_name
FROM batch_classes bc
JOIN batches b ON b.id = bc.batch_id
JOIN rooms r ON r.id = bc.room_id
JOIN subjects s ON s.id = bc.subject_id
JOIN teachers t ON t.id = bc.teacher_id`

// BatchClassRepository persists scheduled batch classes.
type BatchClassRepository struct {
	db *sqlx.DB
}

// NewBatchClassRepository constructs the repository.
func NewBatchClassRepository(db *sqlx.DB) *BatchClassRepository {
	return &BatchClassRepository{db: db}
}

func (r *BatchClassRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts the class. A unique violation on the room or teacher cell is
// reported as ErrRoomSlotTaken or ErrTeacherSlotTaken.
func (r *BatchClassRepository) Create(ctx context.Context, exec sqlx.ExtContext, class *models.BatchClass) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	if class.CreatedAt.IsZero() {
		class.CreatedAt = time.Now().UTC()
	}
	const query = `
INSERT INTO batch_classes (id, batch_id, room_id, subject_id, teacher_id, day_of_week, time_slot, created_at)
VALUES (:id, :batch_id, :room_id, :subject_id, :teacher_id, :day_of_week, :time_slot, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, class); err != nil {
		if taken := classifyUniqueViolation(err); taken != nil {
			return taken
		}
		return fmt.Errorf("create batch class: %w", err)
	}
	return nil
}

// LockByID loads the class row and locks it for the rest of the transaction.
func (r *BatchClassRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.BatchClass, error) {
	const query = `
SELECT id, batch_id, room_id, subject_id, teacher_id, day_of_week, time_slot, created_at
FROM batch_classes WHERE id = $1 FOR UPDATE`
	var class models.BatchClass
	if err := sqlx.GetContext(ctx, r.exec(exec), &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// FindDetail loads one class with display names.
func (r *BatchClassRepository) FindDetail(ctx context.Context, id string) (*models.BatchClassDetail, error) {
	query := batchClassDetailSelect + `
WHERE bc.id = $1`
	var detail models.BatchClassDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Delete removes the class and reports whether a row existed.
func (r *BatchClassRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error) {
	const query = `DELETE FROM batch_classes WHERE id = $1`
	result, err := r.exec(exec).ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete batch class: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check deleted batch class rows: %w", err)
	}
	return affected > 0, nil
}

// ListByBatch returns the batch's classes in insertion order.
func (r *BatchClassRepository) ListByBatch(ctx context.Context, batchID string) ([]models.BatchClassDetail, error) {
	query := batchClassDetailSelect + `
WHERE bc.batch_id = $1
ORDER BY bc.created_at ASC, bc.id ASC`
	var classes []models.BatchClassDetail
	if err := r.db.SelectContext(ctx, &classes, query, batchID); err != nil {
		return nil, fmt.Errorf("list batch classes by batch: %w", err)
	}
	return classes, nil
}

// ListByTeacher returns the teacher's classes in insertion order.
func (r *BatchClassRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.BatchClassDetail, error) {
	query := batchClassDetailSelect + `
WHERE bc.teacher_id = $1
ORDER BY bc.created_at ASC, bc.id ASC`
	var classes []models.BatchClassDetail
	if err := r.db.SelectContext(ctx, &classes, query, teacherID); err != nil {
		return nil, fmt.Errorf("list batch classes by teacher: %w", err)
	}
	return classes, nil
}

// ListPlanRows loads the flattened rows aggregated into the room plan,
// optionally restricted to one room. Rows come back in insertion order.
func (r *BatchClassRepository) ListPlanRows(ctx context.Context, roomID string) ([]models.RoomPlanRow, error) {
	query := `
SELECT bc.id AS batch_class_id, bc.room_id, r.name AS room_name, bc.batch_id, b.name AS batch_name,
       bc.day_of_week, bc.time_slot, t.full_name AS teacher_name, s.name AS subject_name
FROM batch_classes bc
JOIN rooms r ON r.id = bc.room_id
JOIN batches b ON b.id = bc.batch_id
JOIN teachers t ON t.id = bc.teacher_id
JOIN subjects s ON s.id = bc.subject_id`
	args := []interface{}{}
	if roomID != "" {
		query += `
WHERE bc.room_id = $1`
		args = append(args, roomID)
	}
	query += `
ORDER BY bc.created_at ASC, bc.id ASC`

	var rows []models.RoomPlanRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list room plan rows: %w", err)
	}
	return rows, nil
}
