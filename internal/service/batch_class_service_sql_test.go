package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/batch-scheduler-api/internal/repository"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
)

// newSQLBatchClassService runs the scheduler over the postgres repositories
// backed by sqlmock, so the statements issued inside one transaction are visible.
func newSQLBatchClassService(t *testing.T) (*BatchClassService, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	db := sqlx.NewDb(raw, "sqlmock")

	svc := NewBatchClassService(
		repository.NewBatchRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewTeacherRepository(db),
		repository.NewRoomRepository(db),
		repository.NewTeacherSlotRepository(db),
		repository.NewBatchClassRepository(db),
		testCatalog(t),
		db,
		NewMetricsService(),
		nil,
		nil,
		BatchClassServiceConfig{},
	)
	return svc, mock
}

func expectScheduleLookups(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, level, capacity, room_id FROM batches WHERE id = $1")).
		WithArgs("batch-a").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "level", "capacity", "room_id"}).
			AddRow("batch-a", "Batch A", "PRIMARY", 20, "room-a"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT day_of_week, time_slot FROM batch_weekly_slots WHERE batch_id = $1")).
		WithArgs("batch-a").
		WillReturnRows(sqlmock.NewRows([]string{"day_of_week", "time_slot"}).
			AddRow("MONDAY", string(slot4pm)).
			AddRow("WEDNESDAY", string(slot4pm)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, name, level FROM subjects WHERE id = $1")).
		WithArgs("math").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "level"}).
			AddRow("math", "MATH", "Mathematics", "PRIMARY"))
	mock.ExpectQuery("FROM teachers t").
		WithArgs("teacher-t").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "active", "levels"}).
			AddRow("teacher-t", "Tia Tan", "tia@school.test", true, "{PRIMARY}"))
	mock.ExpectQuery("FROM room_available_slots").
		WithArgs("room-a", "MONDAY", string(slot4pm)).
		WillReturnRows(sqlmock.NewRows([]string{"free"}).AddRow(true))
	mock.ExpectQuery("FROM teacher_slot_assignments").
		WithArgs("teacher-t", "MONDAY", string(slot4pm)).
		WillReturnRows(sqlmock.NewRows([]string{"free"}).AddRow(true))
}

func TestBatchClassServiceSQLCommitsAllThreeWrites(t *testing.T) {
	svc, mock := newSQLBatchClassService(t)
	expectScheduleLookups(mock)
	mock.ExpectExec("INSERT INTO batch_classes").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO room_booked_slots").
		WithArgs("room-a", "MONDAY", string(slot4pm), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO teacher_slot_assignments").
		WithArgs("teacher-t", "MONDAY", string(slot4pm), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.CreateClass(context.Background(), createReq("batch-a", "math", "teacher-t", "MONDAY", slot4pm))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchClassServiceSQLRollsBackWhenAssignFails(t *testing.T) {
	svc, mock := newSQLBatchClassService(t)
	expectScheduleLookups(mock)
	mock.ExpectExec("INSERT INTO batch_classes").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO room_booked_slots").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO teacher_slot_assignments").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := svc.CreateClass(context.Background(), createReq("batch-a", "math", "teacher-t", "MONDAY", slot4pm))
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStorageFailure.Code))
	// No commit was expected, so the class row and room booking never become durable.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchClassServiceSQLRollsBackWhenRoomTaken(t *testing.T) {
	svc, mock := newSQLBatchClassService(t)
	expectScheduleLookups(mock)
	mock.ExpectExec("INSERT INTO batch_classes").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO room_booked_slots").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.CreateClass(context.Background(), createReq("batch-a", "math", "teacher-t", "MONDAY", slot4pm))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrRoomConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchClassServiceSQLOutsideGridTouchesNoSlots(t *testing.T) {
	svc, mock := newSQLBatchClassService(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM batches").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "level", "capacity", "room_id"}).
			AddRow("batch-a", "Batch A", "PRIMARY", 20, "room-a"))
	mock.ExpectQuery("FROM batch_weekly_slots").
		WillReturnRows(sqlmock.NewRows([]string{"day_of_week", "time_slot"}).AddRow("MONDAY", string(slot4pm)))
	mock.ExpectRollback()

	_, err := svc.CreateClass(context.Background(), createReq("batch-a", "math", "teacher-t", "MONDAY", slot5pm))
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrSlotNotInBatchGrid.Code))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchClassServiceSQLBookedRoomReadsAsConflict(t *testing.T) {
	svc, mock := newSQLBatchClassService(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM batches").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "level", "capacity", "room_id"}).
			AddRow("batch-a", "Batch A", "PRIMARY", 20, "room-a"))
	mock.ExpectQuery("FROM batch_weekly_slots").
		WillReturnRows(sqlmock.NewRows([]string{"day_of_week", "time_slot"}).AddRow("MONDAY", string(slot4pm)))
	mock.ExpectQuery("FROM subjects").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "level"}).AddRow("math", "MATH", "Mathematics", "PRIMARY"))
	mock.ExpectQuery("FROM teachers t").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "active", "levels"}).
			AddRow("teacher-t", "Tia Tan", "tia@school.test", true, "{PRIMARY}"))
	mock.ExpectQuery("FROM room_available_slots").
		WillReturnRows(sqlmock.NewRows([]string{"free"}).AddRow(false))
	mock.ExpectRollback()

	_, err := svc.CreateClass(context.Background(), createReq("batch-a", "math", "teacher-t", "MONDAY", slot4pm))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrRoomConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}
