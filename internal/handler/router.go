package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/batch-scheduler-api/internal/middleware"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

// Handlers groups every API handler mounted under the API prefix.
type Handlers struct {
	BatchClasses *BatchClassHandler
	Availability *AvailabilityHandler
	RoomPlan     *RoomPlanHandler
	Rooms        *RoomHandler
	Teachers     *TeacherHandler
	TimeSlots    *TimeSlotHandler
}

// RegisterRoutes mounts the scheduling API. auth must attach JWT claims;
// writes additionally require an admin role.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, auth gin.HandlerFunc) {
	admin := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)

	secured := api.Group("")
	secured.Use(auth)

	secured.GET("/time-slots", h.TimeSlots.List)

	classes := secured.Group("/batch-classes")
	classes.POST("", admin, h.BatchClasses.Create)
	classes.POST("/bulk", admin, h.BatchClasses.CreateBulk)
	classes.GET("/:id", h.BatchClasses.Get)
	classes.DELETE("/:id", admin, h.BatchClasses.Delete)

	batches := secured.Group("/batches")
	batches.GET("/:id/batch-classes", h.BatchClasses.ByBatch)
	batches.GET("/:id/room-check", h.Rooms.RoomCheck)

	teachers := secured.Group("/teachers")
	teachers.GET("/:id/batch-classes", h.BatchClasses.ByTeacher)
	teachers.GET("/:id/calendar", h.Teachers.Calendar)

	availability := secured.Group("/availability")
	availability.GET("/teachers", h.Availability.Teachers)
	availability.DELETE("/teachers/cache", admin, h.Availability.InvalidateCache)

	rooms := secured.Group("/rooms")
	rooms.GET("", h.Rooms.List)
	rooms.GET("/:id/availability", h.Rooms.Availability)

	plan := secured.Group("/room-plan")
	plan.GET("", h.RoomPlan.Plan)
	plan.GET("/export", h.RoomPlan.Export)
}
