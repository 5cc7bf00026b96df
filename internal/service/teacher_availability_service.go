package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/batch-scheduler-api/internal/dto"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
)

type teacherDirectory interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error)
}

type busyTeacherIndex interface {
	BusyTeacherIDs(ctx context.Context, keys []models.SlotKey) ([]string, error)
}

const teacherDirectoryCachePrefix = "teachers:directory:level:"

// TeacherAvailabilityService answers which qualified teachers are free for a set of cells.
// Only the per-level directory list is cached; busy state is always read live.
type TeacherAvailabilityService struct {
	directory teacherDirectory
	index     busyTeacherIndex
	batches   batchLoader
	cache     *CacheService
	catalog   *models.TimeSlotCatalog
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewTeacherAvailabilityService constructs the service; cache may be nil.
func NewTeacherAvailabilityService(
	directory teacherDirectory,
	index busyTeacherIndex,
	batches batchLoader,
	cache *CacheService,
	catalog *models.TimeSlotCatalog,
	validate *validator.Validate,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *TeacherAvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherAvailabilityService{
		directory: directory,
		index:     index,
		batches:   batches,
		cache:     cache,
		catalog:   catalog,
		validator: validate,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// AvailableTeachers returns teachers qualified for the level who are free in
// every candidate cell, optionally filtered by a name or id substring.
func (s *TeacherAvailabilityService) AvailableTeachers(ctx context.Context, query dto.AvailableTeachersQuery) ([]models.TeacherSummary, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}
	level := models.NormalizeLevel(query.Level)

	keys, err := s.candidateKeys(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one candidate day and slot is required")
	}

	teachers, err := s.qualified(ctx, level)
	if err != nil {
		return nil, err
	}

	busyIDs, err := s.index.BusyTeacherIDs(ctx, keys)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to read teacher assignments")
	}
	busy := make(map[string]struct{}, len(busyIDs))
	for _, id := range busyIDs {
		busy[id] = struct{}{}
	}

	needle := strings.ToLower(strings.TrimSpace(query.Search))
	result := make([]models.TeacherSummary, 0, len(teachers))
	for _, teacher := range teachers {
		if _, taken := busy[teacher.ID]; taken {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(teacher.FullName), needle) && !strings.Contains(strings.ToLower(teacher.ID), needle) {
			continue
		}
		result = append(result, models.TeacherSummary{ID: teacher.ID, FullName: teacher.FullName, Email: teacher.Email})
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].FullName != result[j].FullName {
			return result[i].FullName < result[j].FullName
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// InvalidateDirectory drops cached directory lists for every level and
// returns how many were removed.
func (s *TeacherAvailabilityService) InvalidateDirectory(ctx context.Context) (int, error) {
	return s.cache.Invalidate(ctx, teacherDirectoryCachePrefix+"*")
}

func (s *TeacherAvailabilityService) candidateKeys(ctx context.Context, query dto.AvailableTeachersQuery) ([]models.SlotKey, error) {
	days, err := s.parseDays(query)
	if err != nil {
		return nil, err
	}

	var slot models.TimeSlot
	if strings.TrimSpace(query.Slot) != "" {
		if slot, err = s.catalog.ResolveSlot(query.Slot); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
	}

	if batchID := strings.TrimSpace(query.BatchID); batchID != "" {
		return s.batchKeys(ctx, batchID, days, slot)
	}

	if slot == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot is required unless batchId is given")
	}
	keys := make([]models.SlotKey, 0, len(days))
	for _, day := range days {
		keys = append(keys, models.SlotKey{Day: day, Slot: slot})
	}
	return keys, nil
}

// batchKeys uses the batch grid, narrowed to the requested days or slot when given.
func (s *TeacherAvailabilityService) batchKeys(ctx context.Context, batchID string, days []models.DayOfWeek, slot models.TimeSlot) ([]models.SlotKey, error) {
	batch, err := s.batches.FindByID(ctx, nil, batchID)
	if err != nil {
		return nil, notFoundOrStorage(err, "batch")
	}
	daySet := make(map[models.DayOfWeek]struct{}, len(days))
	for _, day := range days {
		daySet[day] = struct{}{}
	}
	keys := make([]models.SlotKey, 0, len(batch.WeeklySlots))
	for _, key := range batch.WeeklySlots.Sorted(s.catalog) {
		if _, ok := daySet[key.Day]; len(daySet) > 0 && !ok {
			continue
		}
		if slot != "" && key.Slot != slot {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *TeacherAvailabilityService) parseDays(query dto.AvailableTeachersQuery) ([]models.DayOfWeek, error) {
	raw := make([]string, 0, len(query.Days)+1)
	if query.Day != "" {
		raw = append(raw, query.Day)
	}
	for _, value := range query.Days {
		raw = append(raw, strings.Split(value, ",")...)
	}

	seen := make(map[models.DayOfWeek]struct{}, len(raw))
	days := make([]models.DayOfWeek, 0, len(raw))
	for _, value := range raw {
		if strings.TrimSpace(value) == "" {
			continue
		}
		day, err := models.ParseDay(value)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		if !s.catalog.IsOperatingDay(day) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is not an operating day", day))
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	return days, nil
}

func (s *TeacherAvailabilityService) qualified(ctx context.Context, level string) ([]models.Teacher, error) {
	cacheKey := teacherDirectoryCachePrefix + level

	var cached []models.Teacher
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	active := true
	teachers, err := s.directory.List(ctx, models.TeacherFilter{Level: level, Active: &active})
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load teacher directory")
	}
	if err := s.cache.Set(ctx, cacheKey, teachers, s.cacheTTL); err != nil {
		s.logger.Debug("teacher directory not cached", zap.String("level", level), zap.Error(err))
	}
	return teachers, nil
}
