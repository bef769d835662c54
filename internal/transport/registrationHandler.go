package transport

import (
	"net/http"

	"github.com/ds124wfegd/eventsphere/internal/entity"
	"github.com/ds124wfegd/eventsphere/internal/service"

	"github.com/gin-gonic/gin"
)

type RegistrationHandler struct {
	registrationService service.RegistrationService
	eventService        service.EventService
}

func NewRegistrationHandler(registrationService service.RegistrationService, eventService service.EventService) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registrationService,
		eventService:        eventService,
	}
}

type decisionRequest struct {
	Status string `json:"status" binding:"required,volunteer_status"`
}

type roleRequest struct {
	RoleDescription string `json:"role_description" binding:"max=1000"`
}

func (h *RegistrationHandler) SubmitRSVP(c *gin.Context) {
	var req service.RSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	rsvp, err := h.registrationService.SubmitRSVP(c.Request.Context(), currentActor(c), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rsvp)
}

func (h *RegistrationHandler) WithdrawRSVP(c *gin.Context) {
	if err := h.registrationService.WithdrawRSVP(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListRSVPs is limited to whoever can manage the event.
func (h *RegistrationHandler) ListRSVPs(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.eventService.GetEventForManagement(ctx, currentActor(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	var status *entity.RSVPStatus
	if raw := c.Query("status"); raw != "" {
		parsed, ok := entity.ParseRSVPStatus(raw)
		if !ok {
			writeError(c, entity.Validationf("unknown rsvp status %q", raw))
			return
		}
		status = &parsed
	}

	rsvps, err := h.registrationService.EventRSVPs(ctx, c.Param("id"), status)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rsvps)
}

func (h *RegistrationHandler) RegisterVolunteer(c *gin.Context) {
	var req service.VolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	volunteer, err := h.registrationService.RegisterVolunteer(c.Request.Context(), currentActor(c), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, volunteer)
}

func (h *RegistrationHandler) UpdateVolunteerRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	volunteer, err := h.registrationService.UpdateVolunteerRole(c.Request.Context(), currentActor(c), c.Param("id"), req.RoleDescription)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, volunteer)
}

func (h *RegistrationHandler) WithdrawVolunteer(c *gin.Context) {
	if err := h.registrationService.WithdrawVolunteer(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RegistrationHandler) ListVolunteers(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.eventService.GetEventForManagement(ctx, currentActor(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	var status *entity.VolunteerStatus
	if raw := c.Query("status"); raw != "" {
		parsed, ok := entity.ParseVolunteerStatus(raw)
		if !ok {
			writeError(c, entity.Validationf("unknown volunteer status %q", raw))
			return
		}
		status = &parsed
	}

	volunteers, err := h.registrationService.EventVolunteers(ctx, c.Param("id"), status)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, volunteers)
}

func (h *RegistrationHandler) DecideVolunteer(c *gin.Context) {
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	status, _ := entity.ParseVolunteerStatus(req.Status)
	volunteer, err := h.registrationService.DecideVolunteer(
		c.Request.Context(), currentActor(c), c.Param("id"), c.Param("actor_id"), status,
	)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, volunteer)
}

func (h *RegistrationHandler) MyRSVPs(c *gin.Context) {
	rsvps, err := h.registrationService.ActorRSVPs(c.Request.Context(), currentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rsvps)
}

func (h *RegistrationHandler) MyVolunteering(c *gin.Context) {
	volunteering, err := h.registrationService.ActorVolunteering(c.Request.Context(), currentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, volunteering)
}
