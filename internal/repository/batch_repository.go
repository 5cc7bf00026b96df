package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

// BatchRepository reads batch records and their weekly grids.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository constructs the repository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByID loads the batch with its weekly grid.
func (r *BatchRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.BatchWithGrid, error) {
	target := r.exec(exec)

	const query = `SELECT id, name, level, capacity, room_id FROM batches WHERE id = $1`
	var batch models.Batch
	if err := sqlx.GetContext(ctx, target, &batch, query, id); err != nil {
		return nil, err
	}

	const slotsQuery = `SELECT day_of_week, time_slot FROM batch_weekly_slots WHERE batch_id = $1`
	var keys []models.SlotKey
	if err := sqlx.SelectContext(ctx, target, &keys, slotsQuery, id); err != nil {
		return nil, fmt.Errorf("list batch weekly slots: %w", err)
	}

	return &models.BatchWithGrid{Batch: batch, WeeklySlots: models.NewSlotSet(keys...)}, nil
}

// WeeklySlots returns grid rows for several batches at once.
func (r *BatchRepository) WeeklySlots(ctx context.Context, batchIDs []string) ([]models.BatchSlot, error) {
	if len(batchIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT batch_id, day_of_week, time_slot FROM batch_weekly_slots WHERE batch_id = ANY($1)`
	var slots []models.BatchSlot
	if err := r.db.SelectContext(ctx, &slots, query, pq.Array(batchIDs)); err != nil {
		return nil, fmt.Errorf("list weekly slots: %w", err)
	}
	return slots, nil
}
