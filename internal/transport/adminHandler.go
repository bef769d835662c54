package transport

import (
	"net/http"
	"time"

	"github.com/ds124wfegd/eventsphere/internal/entity"
	"github.com/ds124wfegd/eventsphere/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	moderationService service.ModerationService
}

func NewAdminHandler(moderationService service.ModerationService) *AdminHandler {
	return &AdminHandler{moderationService: moderationService}
}

type changeRoleRequest struct {
	Role string `json:"role" binding:"required,role"`
}

type purgeQuery struct {
	Cutoff *time.Time `form:"cutoff" time_format:"2006-01-02T15:04:05Z07:00"`
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.moderationService.Stats(c.Request.Context(), currentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var role *entity.Role
	if raw := c.Query("role"); raw != "" {
		parsed, ok := entity.ParseRole(raw)
		if !ok {
			writeError(c, entity.Validationf("unknown role %q", raw))
			return
		}
		role = &parsed
	}

	users, err := h.moderationService.ListUsers(c.Request.Context(), currentActor(c), role)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) EnableUser(c *gin.Context) {
	if err := h.moderationService.EnableUser(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) DisableUser(c *gin.Context) {
	if err := h.moderationService.DisableUser(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ChangeUserRole(c *gin.Context) {
	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	role, _ := entity.ParseRole(req.Role)
	if err := h.moderationService.ChangeUserRole(c.Request.Context(), currentActor(c), c.Param("id"), role); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.moderationService.DeleteUser(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListEvents(c *gin.Context) {
	filter := service.AdminEventFilter(c.Query("filter"))
	switch filter {
	case service.AdminEventsAll, service.AdminEventsActive, service.AdminEventsPending,
		service.AdminEventsInactive, service.AdminEventsUpcoming:
	default:
		writeError(c, entity.Validationf("unknown event filter %q", filter))
		return
	}

	events, err := h.moderationService.ListEvents(c.Request.Context(), currentActor(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *AdminHandler) ActivateEvent(c *gin.Context) {
	if err := h.moderationService.ActivateEvent(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) DeactivateEvent(c *gin.Context) {
	if err := h.moderationService.DeactivateEvent(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) DeleteEvent(c *gin.Context) {
	if err := h.moderationService.DeleteEvent(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Purge runs the cleanup immediately. The cutoff defaults to now.
func (h *AdminHandler) Purge(c *gin.Context) {
	var q purgeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	cutoff := time.Now()
	if q.Cutoff != nil {
		cutoff = *q.Cutoff
	}

	deleted, err := h.moderationService.PurgeCompleted(c.Request.Context(), currentActor(c), cutoff)
	if err != nil {
		writeError(c, err)
		return
	}
	if deleted == nil {
		deleted = []*entity.Event{}
	}

	c.JSON(http.StatusOK, entity.PurgeResult{
		Cutoff:  cutoff.UTC().Format(time.RFC3339),
		Deleted: deleted,
	})
}
