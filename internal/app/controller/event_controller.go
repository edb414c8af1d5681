package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/service"
	apperrors "github.com/spf-popaccueil/popaccueil-backend/internal/errors"
	"github.com/spf-popaccueil/popaccueil-backend/internal/middleware"
)

type EventController struct {
	eventService service.EventService
}

func NewEventController(eventService service.EventService) *EventController {
	return &EventController{
		eventService: eventService,
	}
}

type EventRequest struct {
	Event *EventPayload `json:"event" binding:"required"`
}

// EventPayload leaves maxPeople optional; null means no capacity limit.
type EventPayload struct {
	StartAt   *time.Time `json:"startAt" binding:"required"`
	EndAt     *time.Time `json:"endAt" binding:"required"`
	MaxPeople *int       `json:"maxPeople" binding:"omitempty,gte=0"`
	Title     string     `json:"title" binding:"required,max=255"`
	Comment   string     `json:"comment" binding:"required"`
	IsFree    *bool      `json:"isFree" binding:"required"`
	IsClosed  *bool      `json:"isClosed" binding:"required"`
}

func (p *EventPayload) input() service.EventInput {
	return service.EventInput{
		StartAt:   *p.StartAt,
		EndAt:     *p.EndAt,
		MaxPeople: p.MaxPeople,
		Title:     p.Title,
		Comment:   p.Comment,
		IsFree:    *p.IsFree,
		IsClosed:  *p.IsClosed,
	}
}

// ListEvents returns all events
// GET /events
func (ctrl *EventController) ListEvents(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	events, err := ctrl.eventService.List()
	if err != nil {
		log.Error("Failed to fetch events", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, events)
}

// GetEvent returns one event
// GET /events/:id
func (ctrl *EventController) GetEvent(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	event, err := ctrl.eventService.Get(id)
	if err != nil {
		ctrl.respondError(c, err, id)
		return
	}

	c.JSON(http.StatusOK, event)
}

// CreateEvent creates an event (volunteers only)
// POST /events
func (ctrl *EventController) CreateEvent(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid event request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithBindError(c, err)
		return
	}

	event, err := ctrl.eventService.Create(req.Event.input())
	if err != nil {
		ctrl.respondError(c, err, 0)
		return
	}

	log.Info("Event created", map[string]interface{}{
		"event_id": event.ID,
	})
	c.JSON(http.StatusCreated, event)
}

// UpdateEvent replaces an event (volunteers only)
// PUT /events/:id
func (ctrl *EventController) UpdateEvent(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid event request", map[string]interface{}{
			"event_id": id,
			"error":    err.Error(),
		})
		apperrors.RespondWithBindError(c, err)
		return
	}

	event, err := ctrl.eventService.Update(id, req.Event.input())
	if err != nil {
		ctrl.respondError(c, err, id)
		return
	}

	log.Info("Event updated", map[string]interface{}{
		"event_id": id,
	})
	c.JSON(http.StatusOK, event)
}

// DeleteEvent removes an event and returns it (volunteers only)
// DELETE /events/:id
func (ctrl *EventController) DeleteEvent(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	event, err := ctrl.eventService.Delete(id)
	if err != nil {
		ctrl.respondError(c, err, id)
		return
	}

	middleware.GetLoggerFromContext(c).Info("Event deleted", map[string]interface{}{
		"event_id": id,
	})
	c.JSON(http.StatusOK, event)
}

func (ctrl *EventController) respondError(c *gin.Context, err error, id uint) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Event not found")
	case errors.Is(err, service.ErrInvalidSchedule):
		apperrors.RespondWithValidationError(c, map[string]string{"event.endAt": "gtefield"})
	default:
		middleware.GetLoggerFromContext(c).Error("Event operation failed", err, map[string]interface{}{
			"event_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "event")
	}
}
