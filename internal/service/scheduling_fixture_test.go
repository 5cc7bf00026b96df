package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
	"github.com/noah-isme/batch-scheduler-api/internal/repository"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
)

const (
	slot4pm = models.TimeSlot("04:00 PM-05:00 PM")
	slot5pm = models.TimeSlot("05:00 PM-06:00 PM")
	slot6pm = models.TimeSlot("06:00 PM-07:00 PM")
)

func cell(day models.DayOfWeek, slot models.TimeSlot) models.SlotKey {
	return models.SlotKey{Day: day, Slot: slot}
}

func testCatalog(t *testing.T) *models.TimeSlotCatalog {
	t.Helper()
	catalog, err := models.NewTimeSlotCatalog(models.CatalogOptions{})
	require.NoError(t, err)
	return catalog
}

// schedulingState is an in-memory stand-in for the scheduling tables. Writes
// are applied immediately and are not undone on rollback; transaction
// boundaries are exercised against the postgres repositories in
// batch_class_service_sql_test.go.
type schedulingState struct {
	mu sync.Mutex

	rooms       map[string]models.Room
	available   map[string]models.SlotSet
	booked      map[string]map[models.SlotKey]string
	batches     map[string]models.BatchWithGrid
	subjects    map[string]models.Subject
	teachers    map[string]models.Teacher
	assignments map[string]map[models.SlotKey]string
	classes     map[string]models.BatchClass
	order       []string
	seq         int

	failAssign error
	failList   error
	listCalls  int
}

func newSchedulingState() *schedulingState {
	return &schedulingState{
		rooms:       map[string]models.Room{},
		available:   map[string]models.SlotSet{},
		booked:      map[string]map[models.SlotKey]string{},
		batches:     map[string]models.BatchWithGrid{},
		subjects:    map[string]models.Subject{},
		teachers:    map[string]models.Teacher{},
		assignments: map[string]map[models.SlotKey]string{},
		classes:     map[string]models.BatchClass{},
	}
}

func (s *schedulingState) addRoom(id, name string, keys ...models.SlotKey) {
	s.rooms[id] = models.Room{ID: id, Name: name, Capacity: 30}
	s.available[id] = models.NewSlotSet(keys...)
}

func (s *schedulingState) addBatch(id, name, level, roomID string, keys ...models.SlotKey) {
	s.batches[id] = models.BatchWithGrid{
		Batch:       models.Batch{ID: id, Name: name, Level: level, Capacity: 20, RoomID: roomID},
		WeeklySlots: models.NewSlotSet(keys...),
	}
}

func (s *schedulingState) addTeacher(id, name string, levels ...string) {
	s.teachers[id] = models.Teacher{ID: id, FullName: name, Email: id + "@school.test", Levels: levels, Active: true}
}

func (s *schedulingState) addSubject(id, name, level string) {
	s.subjects[id] = models.Subject{ID: id, Code: strings.ToUpper(id), Name: name, Level: level}
}

func (s *schedulingState) classCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.classes)
}

func (s *schedulingState) roomBookedBy(roomID string, key models.SlotKey) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.booked[roomID][key]
	return id, ok
}

func (s *schedulingState) teacherAssignedTo(teacherID string, key models.SlotKey) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.assignments[teacherID][key]
	return id, ok
}

func (s *schedulingState) detail(class models.BatchClass) models.BatchClassDetail {
	return models.BatchClassDetail{
		BatchClass:  class,
		BatchName:   s.batches[class.BatchID].Name,
		RoomName:    s.rooms[class.RoomID].Name,
		SubjectName: s.subjects[class.SubjectID].Name,
		TeacherName: s.teachers[class.TeacherID].FullName,
	}
}

type memBatches struct{ *schedulingState }

func (m memBatches) FindByID(_ context.Context, _ sqlx.ExtContext, id string) (*models.BatchWithGrid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch, ok := m.batches[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	grid := models.NewSlotSet()
	for key := range batch.WeeklySlots {
		grid.Add(key)
	}
	batch.WeeklySlots = grid
	return &batch, nil
}

func (m memBatches) WeeklySlots(_ context.Context, batchIDs []string) ([]models.BatchSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BatchSlot
	for _, id := range batchIDs {
		for key := range m.batches[id].WeeklySlots {
			out = append(out, models.BatchSlot{BatchID: id, SlotKey: key})
		}
	}
	return out, nil
}

type memSubjects struct{ *schedulingState }

func (m memSubjects) FindByID(_ context.Context, _ sqlx.ExtContext, id string) (*models.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subject, ok := m.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &subject, nil
}

type memTeachers struct{ *schedulingState }

func (m memTeachers) FindByID(_ context.Context, _ sqlx.ExtContext, id string) (*models.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	teacher, ok := m.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &teacher, nil
}

func (m memTeachers) List(_ context.Context, filter models.TeacherFilter) ([]models.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.failList != nil {
		return nil, m.failList
	}
	var out []models.Teacher
	for _, teacher := range m.teachers {
		if filter.Level != "" && !teacher.TeachesLevel(filter.Level) {
			continue
		}
		if filter.Active != nil && teacher.Active != *filter.Active {
			continue
		}
		out = append(out, teacher)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memRooms struct{ *schedulingState }

func (m memRooms) List(_ context.Context) ([]models.RoomSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.RoomSummary, 0, len(m.rooms))
	for id, room := range m.rooms {
		out = append(out, models.RoomSummary{Room: room, AvailableCount: len(m.available[id]), BookedCount: len(m.booked[id])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m memRooms) FindByID(_ context.Context, _ sqlx.ExtContext, id string) (*models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &room, nil
}

func (m memRooms) AvailableSlots(_ context.Context, _ sqlx.ExtContext, roomID string) ([]models.SlotKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SlotKey
	for key := range m.available[roomID] {
		out = append(out, key)
	}
	return out, nil
}

func (m memRooms) Bookings(_ context.Context, _ sqlx.ExtContext, roomID string) ([]models.RoomBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RoomBooking
	for key, classID := range m.booked[roomID] {
		out = append(out, models.RoomBooking{BatchClassID: classID, BatchID: m.classes[classID].BatchID, SlotKey: key})
	}
	return out, nil
}

func (m memRooms) IsRoomFree(_ context.Context, _ sqlx.ExtContext, roomID string, key models.SlotKey) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, taken := m.booked[roomID][key]
	return m.available[roomID].Contains(key) && !taken, nil
}

func (m memRooms) Book(_ context.Context, _ sqlx.ExtContext, roomID string, key models.SlotKey, classID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.booked[roomID][key]; taken || !m.available[roomID].Contains(key) {
		return repository.ErrRoomSlotTaken
	}
	if m.booked[roomID] == nil {
		m.booked[roomID] = map[models.SlotKey]string{}
	}
	m.booked[roomID][key] = classID
	return nil
}

func (m memRooms) Release(_ context.Context, _ sqlx.ExtContext, roomID string, key models.SlotKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.booked[roomID], key)
	return nil
}

type memTeacherSlots struct{ *schedulingState }

func (m memTeacherSlots) IsTeacherFree(_ context.Context, _ sqlx.ExtContext, teacherID string, key models.SlotKey) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, taken := m.assignments[teacherID][key]
	return !taken, nil
}

func (m memTeacherSlots) Assign(_ context.Context, _ sqlx.ExtContext, teacherID string, key models.SlotKey, classID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAssign != nil {
		return m.failAssign
	}
	if _, taken := m.assignments[teacherID][key]; taken {
		return repository.ErrTeacherSlotTaken
	}
	if m.assignments[teacherID] == nil {
		m.assignments[teacherID] = map[models.SlotKey]string{}
	}
	m.assignments[teacherID][key] = classID
	return nil
}

func (m memTeacherSlots) Unassign(_ context.Context, _ sqlx.ExtContext, teacherID string, key models.SlotKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.assignments[teacherID], key)
	return nil
}

func (m memTeacherSlots) BusyTeacherIDs(_ context.Context, keys []models.SlotKey) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for teacherID, cells := range m.assignments {
		for _, key := range keys {
			if _, ok := cells[key]; ok {
				out = append(out, teacherID)
				break
			}
		}
	}
	return out, nil
}

type memClasses struct{ *schedulingState }

// Create enforces the room and teacher cell uniqueness of batch_classes.
func (m memClasses) Create(_ context.Context, _ sqlx.ExtContext, class *models.BatchClass) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.classes {
		if existing.Key() != class.Key() {
			continue
		}
		if existing.RoomID == class.RoomID {
			return repository.ErrRoomSlotTaken
		}
		if existing.TeacherID == class.TeacherID {
			return repository.ErrTeacherSlotTaken
		}
	}
	m.seq++
	class.ID = fmt.Sprintf("class-%d", m.seq)
	class.CreatedAt = time.Date(2024, 7, 1, 0, 0, m.seq, 0, time.UTC)
	m.classes[class.ID] = *class
	m.order = append(m.order, class.ID)
	return nil
}

func (m memClasses) LockByID(_ context.Context, _ sqlx.ExtContext, id string) (*models.BatchClass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	class, ok := m.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &class, nil
}

func (m memClasses) Delete(_ context.Context, _ sqlx.ExtContext, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classes[id]; !ok {
		return false, nil
	}
	delete(m.classes, id)
	return true, nil
}

func (m memClasses) FindDetail(_ context.Context, id string) (*models.BatchClassDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	class, ok := m.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	detail := m.detail(class)
	return &detail, nil
}

func (m memClasses) list(match func(models.BatchClass) bool) []models.BatchClassDetail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BatchClassDetail
	for _, id := range m.order {
		class, ok := m.classes[id]
		if ok && match(class) {
			out = append(out, m.detail(class))
		}
	}
	return out
}

func (m memClasses) ListByBatch(_ context.Context, batchID string) ([]models.BatchClassDetail, error) {
	return m.list(func(c models.BatchClass) bool { return c.BatchID == batchID }), nil
}

func (m memClasses) ListByTeacher(_ context.Context, teacherID string) ([]models.BatchClassDetail, error) {
	return m.list(func(c models.BatchClass) bool { return c.TeacherID == teacherID }), nil
}

func (m memClasses) ListPlanRows(_ context.Context, roomID string) ([]models.RoomPlanRow, error) {
	details := m.list(func(c models.BatchClass) bool { return roomID == "" || c.RoomID == roomID })
	rows := make([]models.RoomPlanRow, 0, len(details))
	for _, d := range details {
		rows = append(rows, models.RoomPlanRow{
			BatchClassID: d.ID,
			RoomID:       d.RoomID,
			RoomName:     d.RoomName,
			BatchID:      d.BatchID,
			BatchName:    d.BatchName,
			DayOfWeek:    d.DayOfWeek,
			TimeSlot:     d.TimeSlot,
			TeacherName:  d.TeacherName,
			SubjectName:  d.SubjectName,
		})
	}
	return rows, nil
}

type txProviderMock struct {
	db *sqlx.DB
}

func (p txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return p.db.BeginTxx(ctx, opts)
}

func newTxMock(t *testing.T) (txProviderMock, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return txProviderMock{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func newBatchClassServiceForTest(t *testing.T, state *schedulingState, tx txProvider) *BatchClassService {
	t.Helper()
	return NewBatchClassService(
		memBatches{state},
		memSubjects{state},
		memTeachers{state},
		memRooms{state},
		memTeacherSlots{state},
		memClasses{state},
		testCatalog(t),
		tx,
		NewMetricsService(),
		nil,
		nil,
		BatchClassServiceConfig{},
	)
}

// seedSchoolState builds two batches sharing room-a and a third in room-b.
func seedSchoolState() *schedulingState {
	state := newSchedulingState()
	state.addRoom("room-a", "Room A",
		cell(models.Monday, slot4pm), cell(models.Monday, slot5pm), cell(models.Monday, slot6pm),
		cell(models.Wednesday, slot4pm), cell(models.Wednesday, slot5pm))
	state.addRoom("room-b", "Room B", cell(models.Monday, slot4pm), cell(models.Monday, slot5pm))
	state.addBatch("batch-a", "Batch A", "PRIMARY", "room-a",
		cell(models.Monday, slot4pm), cell(models.Monday, slot5pm), cell(models.Wednesday, slot4pm))
	state.addBatch("batch-b", "Batch B", "PRIMARY", "room-a",
		cell(models.Monday, slot4pm), cell(models.Monday, slot6pm))
	state.addBatch("batch-c", "Batch C", "SECONDARY", "room-b",
		cell(models.Monday, slot4pm), cell(models.Monday, slot5pm))
	state.addTeacher("teacher-t", "Tia Tan", "PRIMARY")
	state.addTeacher("teacher-u", "Uma Udo", "PRIMARY", "SECONDARY")
	state.addTeacher("teacher-v", "Vic Vale", "SECONDARY")
	state.addSubject("math", "Mathematics", "PRIMARY")
	state.addSubject("science", "Science", "PRIMARY")
	return state
}

// memCacheRepository stores JSON payloads in memory.
type memCacheRepository struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemCacheRepository() *memCacheRepository {
	return &memCacheRepository{items: map[string][]byte{}}
}

func (r *memCacheRepository) Get(_ context.Context, key string, dest interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, ok := r.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *memCacheRepository) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[key] = raw
	return nil
}

func (r *memCacheRepository) DeleteByPattern(_ context.Context, pattern string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	removed := 0
	for key := range r.items {
		if strings.HasPrefix(key, prefix) {
			delete(r.items, key)
			removed++
		}
	}
	return removed, nil
}
