package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/batch-scheduler-api/internal/dto"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
	"github.com/noah-isme/batch-scheduler-api/pkg/export"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
)

type planRowSource interface {
	ListPlanRows(ctx context.Context, roomID string) ([]models.RoomPlanRow, error)
}

type weeklySlotSource interface {
	WeeklySlots(ctx context.Context, batchIDs []string) ([]models.BatchSlot, error)
}

type roomPlanExporter interface {
	Render(data export.Dataset, format, title, basename string) (*ExportFile, error)
}

var roomPlanHeaders = []string{"Room", "Batch", "Batch Time", "Day", "Slot", "Teachers", "Subjects"}

// RoomPlanService folds committed batch classes into the per-room weekly plan.
// It always reads the store; plans are never cached.
type RoomPlanService struct {
	rows     planRowSource
	grids    weeklySlotSource
	exporter roomPlanExporter
	catalog  *models.TimeSlotCatalog
	logger   *zap.Logger
}

// NewRoomPlanService constructs the aggregator.
func NewRoomPlanService(rows planRowSource, grids weeklySlotSource, exporter roomPlanExporter, catalog *models.TimeSlotCatalog, logger *zap.Logger) *RoomPlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exporter == nil {
		exporter = NewExportService(logger, nil, nil, nil)
	}
	return &RoomPlanService{rows: rows, grids: grids, exporter: exporter, catalog: catalog, logger: logger}
}

// BuildRoomPlan returns the plan for every room, or only roomID when set.
func (s *RoomPlanService) BuildRoomPlan(ctx context.Context, roomID string) ([]models.RoomPlanEntry, error) {
	rows, err := s.rows.ListPlanRows(ctx, strings.TrimSpace(roomID))
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load room plan")
	}
	if len(rows) == 0 {
		return []models.RoomPlanEntry{}, nil
	}

	batchIDs := make([]string, 0)
	seenBatch := make(map[string]struct{})
	for _, row := range rows {
		if _, ok := seenBatch[row.BatchID]; !ok {
			seenBatch[row.BatchID] = struct{}{}
			batchIDs = append(batchIDs, row.BatchID)
		}
	}
	gridRows, err := s.grids.WeeklySlots(ctx, batchIDs)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load batch weekly slots")
	}
	grids := make(map[string]models.SlotSet, len(batchIDs))
	for _, slot := range gridRows {
		if grids[slot.BatchID] == nil {
			grids[slot.BatchID] = models.NewSlotSet()
		}
		grids[slot.BatchID].Add(slot.SlotKey)
	}

	return s.fold(rows, grids), nil
}

type planBatchAcc struct {
	entry   models.RoomPlanBatch
	classes map[models.SlotKey]*models.RoomPlanClass
	keys    []models.SlotKey
}

type planRoomAcc struct {
	entry   models.RoomPlanEntry
	batches map[string]*planBatchAcc
	order   []string
}

// fold groups rows by room, batch and cell. Rows must arrive in insertion order;
// merged teacher and subject names keep that order and stay index-aligned.
func (s *RoomPlanService) fold(rows []models.RoomPlanRow, grids map[string]models.SlotSet) []models.RoomPlanEntry {
	rooms := make(map[string]*planRoomAcc)
	roomOrder := make([]string, 0)

	for _, row := range rows {
		room, ok := rooms[row.RoomID]
		if !ok {
			room = &planRoomAcc{
				entry:   models.RoomPlanEntry{RoomID: row.RoomID, RoomName: row.RoomName},
				batches: make(map[string]*planBatchAcc),
			}
			rooms[row.RoomID] = room
			roomOrder = append(roomOrder, row.RoomID)
		}

		batch, ok := room.batches[row.BatchID]
		if !ok {
			batch = &planBatchAcc{
				entry: models.RoomPlanBatch{
					BatchID:   row.BatchID,
					BatchName: row.BatchName,
					BatchTime: models.FormatSlotKeys(grids[row.BatchID].Sorted(s.catalog)),
				},
				classes: make(map[models.SlotKey]*models.RoomPlanClass),
			}
			room.batches[row.BatchID] = batch
			room.order = append(room.order, row.BatchID)
		}

		key := models.SlotKey{Day: row.DayOfWeek, Slot: row.TimeSlot}
		class, ok := batch.classes[key]
		if !ok {
			class = &models.RoomPlanClass{Day: key.Day, Slot: key.Slot, Time: key.String()}
			batch.classes[key] = class
			batch.keys = append(batch.keys, key)
		}
		class.TeacherNames = append(class.TeacherNames, row.TeacherName)
		class.SubjectNames = append(class.SubjectNames, row.SubjectName)
	}

	plan := make([]models.RoomPlanEntry, 0, len(roomOrder))
	for _, roomID := range roomOrder {
		room := rooms[roomID]
		batches := make([]models.RoomPlanBatch, 0, len(room.order))
		for _, batchID := range room.order {
			batch := room.batches[batchID]
			s.catalog.SortKeys(batch.keys)
			batch.entry.Classes = make([]models.RoomPlanClass, 0, len(batch.keys))
			for _, key := range batch.keys {
				batch.entry.Classes = append(batch.entry.Classes, *batch.classes[key])
			}
			batches = append(batches, batch.entry)
		}
		sort.SliceStable(batches, func(i, j int) bool {
			if batches[i].BatchName != batches[j].BatchName {
				return batches[i].BatchName < batches[j].BatchName
			}
			return batches[i].BatchID < batches[j].BatchID
		})
		room.entry.Batches = batches
		plan = append(plan, room.entry)
	}
	sort.SliceStable(plan, func(i, j int) bool {
		if plan[i].RoomName != plan[j].RoomName {
			return plan[i].RoomName < plan[j].RoomName
		}
		return plan[i].RoomID < plan[j].RoomID
	})
	return plan
}

// Export renders the flattened room plan.
func (s *RoomPlanService) Export(ctx context.Context, query dto.RoomPlanExportQuery) (*ExportFile, error) {
	plan, err := s.BuildRoomPlan(ctx, query.RoomID)
	if err != nil {
		return nil, err
	}
	return s.exporter.Render(flattenRoomPlan(plan), query.Format, "Room plan", "room_plan")
}

func flattenRoomPlan(plan []models.RoomPlanEntry) export.Dataset {
	data := export.Dataset{Headers: roomPlanHeaders}
	for _, room := range plan {
		for _, batch := range room.Batches {
			for _, class := range batch.Classes {
				data.Rows = append(data.Rows, map[string]string{
					"Room":       room.RoomName,
					"Batch":      batch.BatchName,
					"Batch Time": batch.BatchTime,
					"Day":        string(class.Day),
					"Slot":       string(class.Slot),
					"Teachers":   strings.Join(class.TeacherNames, ", "),
					"Subjects":   strings.Join(class.SubjectNames, ", "),
				})
			}
		}
	}
	return data
}
