package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/batch-scheduler-api/internal/dto"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
	"github.com/noah-isme/batch-scheduler-api/internal/repository"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type batchLoader interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.BatchWithGrid, error)
}

type subjectLoader interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Subject, error)
}

type teacherLoader interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Teacher, error)
}

type roomSlotStore interface {
	IsRoomFree(ctx context.Context, exec sqlx.ExtContext, roomID string, key models.SlotKey) (bool, error)
	Book(ctx context.Context, exec sqlx.ExtContext, roomID string, key models.SlotKey, batchClassID string) error
	Release(ctx context.Context, exec sqlx.ExtContext, roomID string, key models.SlotKey) error
}

type teacherSlotStore interface {
	IsTeacherFree(ctx context.Context, exec sqlx.ExtContext, teacherID string, key models.SlotKey) (bool, error)
	Assign(ctx context.Context, exec sqlx.ExtContext, teacherID string, key models.SlotKey, batchClassID string) error
	Unassign(ctx context.Context, exec sqlx.ExtContext, teacherID string, key models.SlotKey) error
}

type batchClassStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, class *models.BatchClass) error
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.BatchClass, error)
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error)
	FindDetail(ctx context.Context, id string) (*models.BatchClassDetail, error)
	ListByBatch(ctx context.Context, batchID string) ([]models.BatchClassDetail, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.BatchClassDetail, error)
}

const (
	opCreate     = "create"
	opBulkCreate = "bulk_create"
	opDelete     = "delete"
)

var readCommitted = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

// BatchClassServiceConfig bounds scheduling writes.
type BatchClassServiceConfig struct {
	WriteTimeout time.Duration
}

// BatchClassService schedules batch classes without double booking rooms or teachers.
//
// Every write runs in one short transaction. Free checks are read inside the
// transaction and the booking inserts re-check atomically against primary
// keys, so two requests racing for the same room or teacher cell cannot both
// commit. Unrelated rooms and teachers never wait on each other.
type BatchClassService struct {
	batches   batchLoader
	subjects  subjectLoader
	teachers  teacherLoader
	rooms     roomSlotStore
	slots     teacherSlotStore
	classes   batchClassStore
	catalog   *models.TimeSlotCatalog
	tx        txProvider
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       BatchClassServiceConfig
}

// NewBatchClassService wires scheduler dependencies.
func NewBatchClassService(
	batches batchLoader,
	subjects subjectLoader,
	teachers teacherLoader,
	rooms roomSlotStore,
	slots teacherSlotStore,
	classes batchClassStore,
	catalog *models.TimeSlotCatalog,
	tx txProvider,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg BatchClassServiceConfig,
) *BatchClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &BatchClassService{
		batches:   batches,
		subjects:  subjects,
		teachers:  teachers,
		rooms:     rooms,
		slots:     slots,
		classes:   classes,
		catalog:   catalog,
		tx:        tx,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// CreateClass schedules a single class and returns its id.
func (s *BatchClassService) CreateClass(ctx context.Context, req dto.CreateBatchClassRequest) (*dto.BatchClassResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch class payload")
	}
	key, err := s.catalog.ResolveKey(req.DayOfWeek, req.TimeSlot)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	started := time.Now()
	class, err := s.schedule(ctx, req.BatchID, req.SubjectID, req.TeacherID, key)
	s.observe(opCreate, started, err)
	if err != nil {
		return nil, err
	}
	return &dto.BatchClassResult{Success: true, Message: "batch class scheduled", ID: class.ID}, nil
}

// CreateClasses schedules several classes of one batch on one day. Each item
// commits or fails on its own; the overall result succeeds only if all do.
func (s *BatchClassService) CreateClasses(ctx context.Context, req dto.CreateBatchClassesRequest) (*dto.BulkBatchClassResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk batch class payload")
	}
	day, err := models.ParseDay(req.DayOfWeek)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if !s.catalog.IsOperatingDay(day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is not an operating day", day))
	}
	if _, err := s.batches.FindByID(ctx, nil, req.BatchID); err != nil {
		return nil, s.lookupError(ctx, err, "batch")
	}

	results := make([]dto.BulkItemResult, len(req.Items))
	scheduled := 0
	for i, item := range req.Items {
		result := dto.BulkItemResult{
			Index:     i,
			SubjectID: item.SubjectID,
			TeacherID: item.TeacherID,
			TimeSlot:  item.TimeSlot,
		}
		id, err := s.scheduleItem(ctx, req.BatchID, day, item)
		if err != nil {
			appErr := appErrors.FromError(err)
			result.Code = appErr.Code
			result.Message = appErr.Message
		} else {
			result.Success = true
			result.ID = id
			result.Message = "batch class scheduled"
			scheduled++
		}
		results[i] = result
	}

	return &dto.BulkBatchClassResult{
		Success: scheduled == len(req.Items),
		Message: fmt.Sprintf("%d of %d classes scheduled", scheduled, len(req.Items)),
		Results: results,
	}, nil
}

func (s *BatchClassService) scheduleItem(ctx context.Context, batchID string, day models.DayOfWeek, item dto.BulkBatchClassItem) (string, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", appErrors.Wrap(ctxErr, appErrors.ErrCancelled.Code, appErrors.ErrCancelled.Status, appErrors.ErrCancelled.Message)
	}
	slot, err := s.catalog.ResolveSlot(item.TimeSlot)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	started := time.Now()
	class, err := s.schedule(ctx, batchID, item.SubjectID, item.TeacherID, models.SlotKey{Day: day, Slot: slot})
	s.observe(opBulkCreate, started, err)
	if err != nil {
		return "", err
	}
	return class.ID, nil
}

func (s *BatchClassService) schedule(ctx context.Context, batchID, subjectID, teacherID string, key models.SlotKey) (class *models.BatchClass, err error) {
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	tx, err := s.tx.BeginTxx(ctx, readCommitted)
	if err != nil {
		return nil, s.translate(ctx, err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	batch, err := s.batches.FindByID(ctx, tx, batchID)
	if err != nil {
		return nil, s.lookupError(ctx, err, "batch")
	}
	if !batch.AllowsSlot(key) {
		return nil, s.conflict("grid", appErrors.ErrSlotNotInBatchGrid,
			fmt.Sprintf("%s is outside the weekly grid of batch %s", key, batch.Name))
	}
	if _, err = s.subjects.FindByID(ctx, tx, subjectID); err != nil {
		return nil, s.lookupError(ctx, err, "subject")
	}
	if _, err = s.teachers.FindByID(ctx, tx, teacherID); err != nil {
		return nil, s.lookupError(ctx, err, "teacher")
	}

	free, err := s.rooms.IsRoomFree(ctx, tx, batch.RoomID, key)
	if err != nil {
		return nil, s.translate(ctx, err, "failed to check room availability")
	}
	if !free {
		return nil, s.roomConflict(batch.RoomID, key)
	}
	free, err = s.slots.IsTeacherFree(ctx, tx, teacherID, key)
	if err != nil {
		return nil, s.translate(ctx, err, "failed to check teacher availability")
	}
	if !free {
		return nil, s.teacherConflict(teacherID, key)
	}

	class = &models.BatchClass{
		BatchID:   batch.ID,
		RoomID:    batch.RoomID,
		SubjectID: subjectID,
		TeacherID: teacherID,
		DayOfWeek: key.Day,
		TimeSlot:  key.Slot,
	}
	if err = s.classes.Create(ctx, tx, class); err != nil {
		return nil, s.writeError(ctx, err, batch.RoomID, teacherID, key, "failed to create batch class")
	}
	if err = s.rooms.Book(ctx, tx, batch.RoomID, key, class.ID); err != nil {
		return nil, s.writeError(ctx, err, batch.RoomID, teacherID, key, "failed to book room slot")
	}
	if err = s.slots.Assign(ctx, tx, teacherID, key, class.ID); err != nil {
		return nil, s.writeError(ctx, err, batch.RoomID, teacherID, key, "failed to assign teacher slot")
	}
	if err = tx.Commit(); err != nil {
		return nil, s.translate(ctx, err, "failed to commit batch class")
	}

	s.logger.Info("batch class scheduled",
		zap.String("batch_class_id", class.ID),
		zap.String("batch_id", class.BatchID),
		zap.String("room_id", class.RoomID),
		zap.String("teacher_id", class.TeacherID),
		zap.String("slot", key.String()),
	)
	return class, nil
}

// DeleteClass removes a class and frees its room and teacher cells. Deleting
// an unknown id succeeds with Deleted=false.
func (s *BatchClassService) DeleteClass(ctx context.Context, id string) (*dto.DeleteBatchClassResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "batch class id is required")
	}

	started := time.Now()
	deleted, err := s.remove(ctx, id)
	s.observe(opDelete, started, err)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return &dto.DeleteBatchClassResult{Success: true, Message: "batch class already removed"}, nil
	}
	return &dto.DeleteBatchClassResult{Success: true, Message: "batch class deleted", Deleted: true}, nil
}

func (s *BatchClassService) remove(ctx context.Context, id string) (deleted bool, err error) {
	if s.tx == nil {
		return false, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	tx, err := s.tx.BeginTxx(ctx, readCommitted)
	if err != nil {
		return false, s.translate(ctx, err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	class, err := s.classes.LockByID(ctx, tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		_ = tx.Rollback()
		return false, nil
	}
	if err != nil {
		return false, s.translate(ctx, err, "failed to load batch class")
	}

	key := class.Key()
	if err = s.rooms.Release(ctx, tx, class.RoomID, key); err != nil {
		return false, s.translate(ctx, err, "failed to release room slot")
	}
	if err = s.slots.Unassign(ctx, tx, class.TeacherID, key); err != nil {
		return false, s.translate(ctx, err, "failed to unassign teacher slot")
	}
	if deleted, err = s.classes.Delete(ctx, tx, id); err != nil {
		return false, s.translate(ctx, err, "failed to delete batch class")
	}
	if err = tx.Commit(); err != nil {
		return false, s.translate(ctx, err, "failed to commit batch class removal")
	}

	s.logger.Info("batch class deleted", zap.String("batch_class_id", id), zap.String("slot", key.String()))
	return deleted, nil
}

// Get loads one class with display names.
func (s *BatchClassService) Get(ctx context.Context, id string) (*models.BatchClassDetail, error) {
	detail, err := s.classes.FindDetail(ctx, id)
	if err != nil {
		return nil, s.lookupError(ctx, err, "batch class")
	}
	return detail, nil
}

// ListByBatch returns the batch's classes ordered by day then slot.
func (s *BatchClassService) ListByBatch(ctx context.Context, batchID string) ([]models.BatchClassDetail, error) {
	if strings.TrimSpace(batchID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "batch id is required")
	}
	classes, err := s.classes.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list batch classes")
	}
	s.sortByCell(classes)
	return classes, nil
}

// ListByTeacher returns the teacher's classes ordered by day then slot.
func (s *BatchClassService) ListByTeacher(ctx context.Context, teacherID string) ([]models.BatchClassDetail, error) {
	if strings.TrimSpace(teacherID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}
	classes, err := s.classes.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list teacher classes")
	}
	s.sortByCell(classes)
	return classes, nil
}

func (s *BatchClassService) sortByCell(classes []models.BatchClassDetail) {
	sort.SliceStable(classes, func(i, j int) bool {
		return s.catalog.Less(classes[i].Key(), classes[j].Key())
	})
}

func (s *BatchClassService) roomConflict(roomID string, key models.SlotKey) error {
	return s.conflict("room", appErrors.ErrRoomConflict, fmt.Sprintf("room %s is not free for %s", roomID, key))
}

func (s *BatchClassService) teacherConflict(teacherID string, key models.SlotKey) error {
	return s.conflict("teacher", appErrors.ErrTeacherConflict, fmt.Sprintf("teacher %s is already assigned for %s", teacherID, key))
}

func (s *BatchClassService) conflict(dimension string, base *appErrors.Error, message string) error {
	s.metrics.RecordConflict(dimension)
	s.logger.Info("scheduling conflict", zap.String("dimension", dimension), zap.String("detail", message))
	return appErrors.Clone(base, message)
}

// writeError maps a lost conditional insert back to the conflicting dimension.
func (s *BatchClassService) writeError(ctx context.Context, err error, roomID, teacherID string, key models.SlotKey, message string) error {
	switch {
	case errors.Is(err, repository.ErrRoomSlotTaken):
		return s.roomConflict(roomID, key)
	case errors.Is(err, repository.ErrTeacherSlotTaken):
		return s.teacherConflict(teacherID, key)
	}
	return s.translate(ctx, err, message)
}

func (s *BatchClassService) lookupError(ctx context.Context, err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return s.translate(ctx, err, "failed to load "+entity)
}

func (s *BatchClassService) translate(ctx context.Context, err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return appErrors.Wrap(err, appErrors.ErrCancelled.Code, appErrors.ErrCancelled.Status, appErrors.ErrCancelled.Message)
	}
	return appErrors.Storage(err, message)
}

func (s *BatchClassService) observe(operation string, started time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	s.metrics.RecordScheduling(operation, outcome, time.Since(started))
	if appErrors.HasCode(err, appErrors.ErrStorageFailure.Code) || appErrors.HasCode(err, appErrors.ErrInternal.Code) {
		s.logger.Error("scheduling write failed", zap.String("operation", operation), zap.Error(err))
	}
}
