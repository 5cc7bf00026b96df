package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/batch-scheduler-api/internal/dto"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
)

func newTeacherAvailabilityForTest(t *testing.T, state *schedulingState, cache *CacheService) *TeacherAvailabilityService {
	t.Helper()
	return NewTeacherAvailabilityService(memTeachers{state}, memTeacherSlots{state}, memBatches{state}, cache, testCatalog(t), nil, nil, time.Minute)
}

func assign(state *schedulingState, teacherID string, key models.SlotKey) {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.assignments[teacherID] == nil {
		state.assignments[teacherID] = map[models.SlotKey]string{}
	}
	state.assignments[teacherID][key] = "class-" + teacherID
}

func teacherIDs(teachers []models.TeacherSummary) []string {
	ids := make([]string, len(teachers))
	for i, teacher := range teachers {
		ids[i] = teacher.ID
	}
	return ids
}

func TestTeacherAvailabilityExcludesAssignedTeacher(t *testing.T) {
	state := seedSchoolState()
	tx, mock := newTxMock(t)
	scheduler := newBatchClassServiceForTest(t, state, tx)
	expectCommitted(mock)
	_, err := scheduler.CreateClass(context.Background(), createReq("batch-a", "math", "teacher-t", "MONDAY", slot4pm))
	require.NoError(t, err)

	svc := newTeacherAvailabilityForTest(t, state, nil)
	teachers, err := svc.AvailableTeachers(context.Background(), dto.AvailableTeachersQuery{Level: "PRIMARY", Day: "MON", Slot: string(slot4pm)})
	require.NoError(t, err)
	assert.Equal(t, []string{"teacher-u"}, teacherIDs(teachers))

	teachers, err = svc.AvailableTeachers(context.Background(), dto.AvailableTeachersQuery{Level: "PRIMARY", Day: "MON", Slot: string(slot5pm)})
	require.NoError(t, err)
	assert.Equal(t, []string{"teacher-t", "teacher-u"}, teacherIDs(teachers))
}

func TestTeacherAvailabilityMultipleDays(t *testing.T) {
	state := seedSchoolState()
	assign(state, "teacher-u", cell(models.Wednesday, slot4pm))
	svc := newTeacherAvailabilityForTest(t, state, nil)

	teachers, err := svc.AvailableTeachers(context.Background(), dto.AvailableTeachersQuery{
		Level: "PRIMARY",
		Day:   "monday",
		Days:  []string{"MON,WED", "wednesday"},
		Slot:  string(slot4pm),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"teacher-t"}, teacherIDs(teachers))
}

func TestTeacherAvailabilityFromBatchGrid(t *testing.T) {
	state := seedSchoolState()
	assign(state, "teacher-t", cell(models.Wednesday, slot4pm))
	svc := newTeacherAvailabilityForTest(t, state, nil)

	teachers, err := svc.AvailableTeachers(context.Background(), dto.AvailableTeachersQuery{Level: "PRIMARY", BatchID: "batch-a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"teacher-u"}, teacherIDs(teachers))

	teachers, err = svc.AvailableTeachers(context.Background(), dto.AvailableTeachersQuery{Level: "PRIMARY", BatchID: "batch-a", Day: "MONDAY"})
	require.NoError(t, err)
	assert.Equal(t, []string{"teacher-t", "teacher-u"}, teacherIDs(teachers))

	_, err = svc.AvailableTeachers(context.Background(), dto.AvailableTeachersQuery{Level: "PRIMARY", BatchID: "missing"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.AvailableTeachers(context.Background(), dto.AvailableTeachersQuery{Level: "PRIMARY", BatchID: "batch-a", Slot: string(slot6pm)})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestTeacherAvailabilitySearchFilter(t *testing.T) {
	state := seedSchoolState()
	svc := newTeacherAvailabilityForTest(t, state, nil)

	teachers, err := svc.AvailableTeachers(context.Background(), dto.AvailableTeachersQuery{Level: "PRIMARY", Day: "MON", Slot: string(slot4pm), Search: "UMA"})
	require.NoError(t, err)
	assert.Equal(t, []string{"teacher-u"}, teacherIDs(teachers))

	teachers, err = svc.AvailableTeachers(context.Background(), dto.AvailableTeachersQuery{Level: "SECONDARY", Day: "MON", Slot: string(slot4pm), Search: "teacher-v"})
	require.NoError(t, err)
	assert.Equal(t, []string{"teacher-v"}, teacherIDs(teachers))
}

func TestTeacherAvailabilityValidation(t *testing.T) {
	svc := newTeacherAvailabilityForTest(t, seedSchoolState(), nil)

	cases := map[string]dto.AvailableTeachersQuery{
		"missing level":     {Day: "MON", Slot: string(slot4pm)},
		"missing slot":      {Level: "PRIMARY", Day: "MON"},
		"missing day":       {Level: "PRIMARY", Slot: string(slot4pm)},
		"non operating day": {Level: "PRIMARY", Day: "SUNDAY", Slot: string(slot4pm)},
		"unknown slot":      {Level: "PRIMARY", Day: "MON", Slot: "noon"},
	}
	for name, query := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.AvailableTeachers(context.Background(), query)
			require.Error(t, err)
			assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
		})
	}
}

func TestTeacherAvailabilityCachesDirectoryNotBusyState(t *testing.T) {
	state := seedSchoolState()
	cache := NewCacheService(newMemCacheRepository(), NewMetricsService(), time.Minute, nil, true)
	svc := newTeacherAvailabilityForTest(t, state, cache)
	query := dto.AvailableTeachersQuery{Level: "PRIMARY", Day: "MON", Slot: string(slot4pm)}

	teachers, err := svc.AvailableTeachers(context.Background(), query)
	require.NoError(t, err)
	assert.Len(t, teachers, 2)

	assign(state, "teacher-t", cell(models.Monday, slot4pm))
	teachers, err = svc.AvailableTeachers(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, []string{"teacher-u"}, teacherIDs(teachers))
	assert.Equal(t, 1, state.listCalls)

	removed, err := svc.InvalidateDirectory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	_, err = svc.AvailableTeachers(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, 2, state.listCalls)
}

func TestTeacherAvailabilityDirectoryFailure(t *testing.T) {
	state := seedSchoolState()
	state.failList = errors.New("timeout")
	svc := newTeacherAvailabilityForTest(t, state, nil)

	_, err := svc.AvailableTeachers(context.Background(), dto.AvailableTeachersQuery{Level: "PRIMARY", Day: "MON", Slot: string(slot4pm)})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStorageFailure.Code))
}

func TestTeacherAvailabilityLevelCaseSharesCachedDirectory(t *testing.T) {
	state := seedSchoolState()
	cache := NewCacheService(newMemCacheRepository(), NewMetricsService(), time.Minute, nil, true)
	svc := newTeacherAvailabilityForTest(t, state, cache)

	lower, err := svc.AvailableTeachers(context.Background(), dto.AvailableTeachersQuery{Level: "primary", Day: "MON", Slot: string(slot4pm)})
	require.NoError(t, err)
	assert.Equal(t, []string{"teacher-t", "teacher-u"}, teacherIDs(lower))

	upper, err := svc.AvailableTeachers(context.Background(), dto.AvailableTeachersQuery{Level: "PRIMARY", Day: "MON", Slot: string(slot4pm)})
	require.NoError(t, err)
	assert.Equal(t, []string{"teacher-t", "teacher-u"}, teacherIDs(upper))
	assert.Equal(t, 1, state.listCalls)
}
