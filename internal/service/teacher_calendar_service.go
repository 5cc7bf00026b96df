package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
)

type teacherClassSource interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.BatchClassDetail, error)
}

type teacherDirectoryEntry interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Teacher, error)
}

const calendarProductID = "-//batch-scheduler-api//teacher timetable//EN"

// TeacherCalendarConfig anchors recurring events in local time.
type TeacherCalendarConfig struct {
	Timezone string
	// Anchor is any date (YYYY-MM-DD) inside the first week of the series.
	Anchor string
}

// TeacherCalendarService renders a teacher's weekly classes as an iCalendar feed.
type TeacherCalendarService struct {
	classes  teacherClassSource
	teachers teacherDirectoryEntry
	catalog  *models.TimeSlotCatalog
	location *time.Location
	monday   time.Time
	now      func() time.Time
}

// NewTeacherCalendarService validates the timezone and anchor date.
func NewTeacherCalendarService(classes teacherClassSource, teachers teacherDirectoryEntry, catalog *models.TimeSlotCatalog, cfg TeacherCalendarConfig) (*TeacherCalendarService, error) {
	tz := strings.TrimSpace(cfg.Timezone)
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load calendar timezone %q: %w", tz, err)
	}

	anchor := time.Now().In(loc)
	if raw := strings.TrimSpace(cfg.Anchor); raw != "" {
		if anchor, err = time.ParseInLocation("2006-01-02", raw, loc); err != nil {
			return nil, fmt.Errorf("parse calendar anchor %q: %w", raw, err)
		}
	}

	return &TeacherCalendarService{
		classes:  classes,
		teachers: teachers,
		catalog:  catalog,
		location: loc,
		monday:   weekStart(anchor, loc),
		now:      time.Now,
	}, nil
}

// Calendar returns the serialized VCALENDAR for teacherID with one weekly
// recurring event per class.
func (s *TeacherCalendarService) Calendar(ctx context.Context, teacherID string) (string, error) {
	teacherID = strings.TrimSpace(teacherID)
	if teacherID == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}
	teacher, err := s.teachers.FindByID(ctx, nil, teacherID)
	if err != nil {
		return "", notFoundOrStorage(err, "teacher")
	}
	classes, err := s.classes.ListByTeacher(ctx, teacherID)
	if err != nil {
		return "", appErrors.Storage(err, "failed to list teacher classes")
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetName(teacher.FullName + " timetable")
	cal.SetTimezoneId(s.location.String())

	stamp := s.now().UTC()
	for _, class := range classes {
		start, end, ok := s.occurrence(class.Key())
		if !ok {
			continue
		}
		event := cal.AddEvent(class.ID + "@batch-scheduler-api")
		event.SetDtStampTime(stamp)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(fmt.Sprintf("%s (%s)", class.SubjectName, class.BatchName))
		event.SetLocation(class.RoomName)
		event.SetDescription(fmt.Sprintf("%s with %s", class.Key(), class.TeacherName))
		event.AddRrule("FREQ=WEEKLY")
	}
	return cal.Serialize(), nil
}

// occurrence places key in the anchor week. Slots ending at midnight roll
// over to the next day.
func (s *TeacherCalendarService) occurrence(key models.SlotKey) (time.Time, time.Time, bool) {
	def, ok := s.catalog.Definition(key.Slot)
	if !ok || key.Day.Index() < 0 {
		return time.Time{}, time.Time{}, false
	}
	day := s.monday.AddDate(0, 0, key.Day.Index())
	start, err := clockOn(day, def.Start, s.location)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := clockOn(day, def.End, s.location)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, true
}

func clockOn(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

func weekStart(t time.Time, loc *time.Location) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
}
