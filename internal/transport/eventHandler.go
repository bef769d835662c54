package transport

import (
	"net/http"
	"time"

	"github.com/ds124wfegd/eventsphere/internal/entity"
	"github.com/ds124wfegd/eventsphere/internal/service"
	"github.com/ds124wfegd/eventsphere/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	eventService service.EventService
}

func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

type listEventsQuery struct {
	Category string     `form:"category" binding:"omitempty,category"`
	Keyword  string     `form:"q" binding:"max=255"`
	Location string     `form:"location" binding:"max=255"`
	From     *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To       *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit    int        `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset   int        `form:"offset" binding:"omitempty,min=0"`
}

func currentActor(c *gin.Context) entity.Actor {
	actor, _ := middleware.ActorFrom(c)
	return actor
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), currentActor(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	var req service.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), currentActor(c), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	if err := h.eventService.DeleteEvent(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	event, err := h.eventService.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	var q listEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		writeError(c, entity.Validationf("date range end is before its start"))
		return
	}

	category, _ := entity.ParseCategory(q.Category)
	events, err := h.eventService.Filter(c.Request.Context(), entity.EventFilter{
		Category: category,
		Keyword:  q.Keyword,
		Location: q.Location,
		From:     q.From,
		To:       q.To,
		Active:   entity.BoolPtr(true),
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) ListUpcoming(c *gin.Context) {
	events, err := h.eventService.ListUpcoming(c.Request.Context(), time.Now())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) ListPendingApproval(c *gin.Context) {
	events, err := h.eventService.ListPendingApproval(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) ListByOrganizer(c *gin.Context) {
	events, err := h.eventService.ListByOrganizer(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}
