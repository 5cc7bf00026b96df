package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
	"github.com/noah-isme/batch-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
	"github.com/noah-isme/batch-scheduler-api/pkg/response"
)

type teacherCalendar interface {
	Calendar(ctx context.Context, teacherID string) (string, error)
}

// TeacherHandler serves teacher timetable feeds.
type TeacherHandler struct {
	calendar teacherCalendar
}

// NewTeacherHandler constructs the handler.
func NewTeacherHandler(calendar *service.TeacherCalendarService) *TeacherHandler {
	return &TeacherHandler{calendar: calendar}
}

// Calendar godoc
// @Summary Weekly timetable of a teacher as iCalendar
// @Description Callers with the TEACHER role may only read their own calendar.
// @Tags Teachers
// @Produce text/calendar
// @Param id path string true "Teacher ID"
// @Success 200 {string} string "VCALENDAR body"
// @Router /teachers/{id}/calendar [get]
func (h *TeacherHandler) Calendar(c *gin.Context) {
	teacherID := c.Param("id")
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleTeacher && claims.UserID != teacherID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "teachers may only read their own calendar"))
		return
	}
	body, err := h.calendar.Calendar(c.Request.Context(), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+teacherID+`.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
