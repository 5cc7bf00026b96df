package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
)

type batchClassLister interface {
	ListByBatch(ctx context.Context, batchID string) ([]models.BatchClassDetail, error)
}

// BatchService validates batches against room availability.
type BatchService struct {
	batches batchLoader
	rooms   roomReader
	classes batchClassLister
	catalog *models.TimeSlotCatalog
}

// NewBatchService constructs the service.
func NewBatchService(batches batchLoader, rooms roomReader, classes batchClassLister, catalog *models.TimeSlotCatalog) *BatchService {
	return &BatchService{batches: batches, rooms: rooms, classes: classes, catalog: catalog}
}

// CheckRoom reports whether the batch grid fits roomID (default: the batch's
// own room). For another room it also lists existing classes that could not
// move there because the cell is unavailable or booked by a different batch.
// Nothing is written.
func (s *BatchService) CheckRoom(ctx context.Context, batchID, roomID string) (*models.BatchRoomCheck, error) {
	batch, err := s.batches.FindByID(ctx, nil, strings.TrimSpace(batchID))
	if err != nil {
		return nil, notFoundOrStorage(err, "batch")
	}
	target := strings.TrimSpace(roomID)
	if target == "" {
		target = batch.RoomID
	}
	if _, err := s.rooms.FindByID(ctx, nil, target); err != nil {
		return nil, notFoundOrStorage(err, "room")
	}
	availableKeys, err := s.rooms.AvailableSlots(ctx, nil, target)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load room availability")
	}
	available := models.NewSlotSet(availableKeys...)

	report := &models.BatchRoomCheck{
		BatchID:            batch.ID,
		RoomID:             target,
		SlotsOutsideRoom:   batch.WeeklySlots.Difference(available).Sorted(s.catalog),
		ConflictingClasses: []models.BatchClass{},
	}

	if target != batch.RoomID {
		bookings, err := s.rooms.Bookings(ctx, nil, target)
		if err != nil {
			return nil, appErrors.Storage(err, "failed to load room bookings")
		}
		owner := make(map[models.SlotKey]string, len(bookings))
		for _, booking := range bookings {
			owner[booking.SlotKey] = booking.BatchID
		}
		classes, err := s.classes.ListByBatch(ctx, batch.ID)
		if err != nil {
			return nil, appErrors.Storage(err, "failed to list batch classes")
		}
		for _, class := range classes {
			key := class.Key()
			bookedBy, booked := owner[key]
			if !available.Contains(key) || (booked && bookedBy != batch.ID) {
				report.ConflictingClasses = append(report.ConflictingClasses, class.BatchClass)
			}
		}
	}

	report.Valid = batch.WeeklySlots.SubsetOf(available) && len(report.ConflictingClasses) == 0
	return report, nil
}

func notFoundOrStorage(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.Storage(err, "failed to load "+entity)
}
