package transport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ds124wfegd/eventsphere/internal/entity"
	"github.com/ds124wfegd/eventsphere/internal/service"

	"github.com/gin-gonic/gin"
)

var (
	participantsHeader = []string{"Participant Name", "Email", "Status", "RSVP Date", "Team Name", "Team Size"}
	volunteersHeader   = []string{"Volunteer Name", "Email", "Status", "Role Description", "Registration Date"}

	nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

type ExportHandler struct {
	eventService        service.EventService
	registrationService service.RegistrationService
}

func NewExportHandler(eventService service.EventService, registrationService service.RegistrationService) *ExportHandler {
	return &ExportHandler{
		eventService:        eventService,
		registrationService: registrationService,
	}
}

func (h *ExportHandler) ExportParticipants(c *gin.Context) {
	ctx := c.Request.Context()
	event, err := h.eventService.GetEventForManagement(ctx, currentActor(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	rsvps, err := h.registrationService.EventRSVPs(ctx, event.ID, nil)
	if err != nil {
		writeError(c, err)
		return
	}

	data, err := participantsCSV(rsvps)
	if err != nil {
		writeError(c, err)
		return
	}
	writeCSV(c, event.Title, "participants", data)
}

func (h *ExportHandler) ExportVolunteers(c *gin.Context) {
	ctx := c.Request.Context()
	event, err := h.eventService.GetEventForManagement(ctx, currentActor(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	volunteers, err := h.registrationService.EventVolunteers(ctx, event.ID, nil)
	if err != nil {
		writeError(c, err)
		return
	}

	data, err := volunteersCSV(volunteers)
	if err != nil {
		writeError(c, err)
		return
	}
	writeCSV(c, event.Title, "volunteers", data)
}

func participantsCSV(rsvps []*entity.RSVPWithUser) ([]byte, error) {
	rows := make([][]string, 0, len(rsvps))
	for _, r := range rsvps {
		teamName, teamSize := "", ""
		if r.TeamName != nil {
			teamName = *r.TeamName
		}
		if r.TeamSize != nil {
			teamSize = strconv.Itoa(*r.TeamSize)
		}
		rows = append(rows, []string{
			r.UserName,
			r.UserEmail,
			string(r.Status),
			formatTime(r.RespondedAt),
			teamName,
			teamSize,
		})
	}
	return encodeCSV(participantsHeader, rows)
}

func volunteersCSV(volunteers []*entity.VolunteerWithUser) ([]byte, error) {
	rows := make([][]string, 0, len(volunteers))
	for _, v := range volunteers {
		rows = append(rows, []string{
			v.UserName,
			v.UserEmail,
			string(v.Status),
			v.RoleDescription,
			formatTime(v.RegisteredAt),
		})
	}
	return encodeCSV(volunteersHeader, rows)
}

func encodeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// exportFilename turns "Go Meetup #3" into "go-meetup-3-participants.csv".
func exportFilename(title, kind string) string {
	slug := strings.Trim(strings.ToLower(nonAlnum.ReplaceAllString(title, "-")), "-")
	if slug == "" {
		slug = "event"
	}
	return fmt.Sprintf("%s-%s.csv", slug, kind)
}

func writeCSV(c *gin.Context, title, kind string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(title, kind)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
