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

type BasicServiceController struct {
	basicServiceService service.BasicServiceService
}

func NewBasicServiceController(basicServiceService service.BasicServiceService) *BasicServiceController {
	return &BasicServiceController{
		basicServiceService: basicServiceService,
	}
}

type BasicServiceRequest struct {
	BasicService *struct {
		StartAt   *time.Time `json:"startAt" binding:"required"`
		EndAt     *time.Time `json:"endAt" binding:"required"`
		MaxPeople *int       `json:"maxPeople" binding:"omitempty,gte=0"`
		IsClosed  *bool      `json:"isClosed" binding:"required"`
	} `json:"basicService" binding:"required"`
}

func (r *BasicServiceRequest) input() service.BasicServiceInput {
	return service.BasicServiceInput{
		StartAt:   *r.BasicService.StartAt,
		EndAt:     *r.BasicService.EndAt,
		MaxPeople: r.BasicService.MaxPeople,
		IsClosed:  *r.BasicService.IsClosed,
	}
}

// ListBasicServices returns all basic services
// GET /basic-services
func (ctrl *BasicServiceController) ListBasicServices(c *gin.Context) {
	services, err := ctrl.basicServiceService.List()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to fetch basic services", err, nil)
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, services)
}

// GetBasicService returns one basic service
// GET /basic-services/:id
func (ctrl *BasicServiceController) GetBasicService(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	bs, err := ctrl.basicServiceService.Get(id)
	if err != nil {
		ctrl.respondError(c, err, id)
		return
	}
	c.JSON(http.StatusOK, bs)
}

// CreateBasicService opens a new slot (volunteers only)
// POST /basic-services
func (ctrl *BasicServiceController) CreateBasicService(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req BasicServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid basic service request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithBindError(c, err)
		return
	}

	bs, err := ctrl.basicServiceService.Create(req.input())
	if err != nil {
		ctrl.respondError(c, err, 0)
		return
	}

	log.Info("Basic service created", map[string]interface{}{
		"basic_service_id": bs.ID,
	})
	c.JSON(http.StatusCreated, bs)
}

// UpdateBasicService edits a slot (volunteers only)
// PUT /basic-services/:id
func (ctrl *BasicServiceController) UpdateBasicService(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req BasicServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid basic service request", map[string]interface{}{
			"basic_service_id": id,
			"error":            err.Error(),
		})
		apperrors.RespondWithBindError(c, err)
		return
	}

	bs, err := ctrl.basicServiceService.Update(id, req.input())
	if err != nil {
		ctrl.respondError(c, err, id)
		return
	}
	c.JSON(http.StatusOK, bs)
}

// DeleteBasicService removes a slot with its subscriptions (volunteers only)
// DELETE /basic-services/:id
func (ctrl *BasicServiceController) DeleteBasicService(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	bs, err := ctrl.basicServiceService.Delete(id)
	if err != nil {
		ctrl.respondError(c, err, id)
		return
	}

	middleware.GetLoggerFromContext(c).Info("Basic service deleted", map[string]interface{}{
		"basic_service_id": id,
	})
	c.JSON(http.StatusOK, bs)
}

// Subscribe registers the current user on a slot
// POST /basic-services/:id/subscribe
func (ctrl *BasicServiceController) Subscribe(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthenticated(c)
		return
	}

	sub, err := ctrl.basicServiceService.Subscribe(id, userID)
	if err != nil {
		ctrl.respondError(c, err, id)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// Unsubscribe removes the current user from a slot and returns the slot
// POST /basic-services/:id/unsubscribe
func (ctrl *BasicServiceController) Unsubscribe(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthenticated(c)
		return
	}

	bs, err := ctrl.basicServiceService.Unsubscribe(id, userID)
	if err != nil {
		ctrl.respondError(c, err, id)
		return
	}
	c.JSON(http.StatusCreated, bs)
}

func (ctrl *BasicServiceController) respondError(c *gin.Context, err error, id uint) {
	switch {
	case errors.Is(err, service.ErrBasicServiceNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Basic service not found")
	case errors.Is(err, service.ErrInvalidSchedule):
		apperrors.RespondWithValidationError(c, map[string]string{"basicService.endAt": "gtefield"})
	case errors.Is(err, service.ErrBasicServiceClosed):
		apperrors.BadRequest(c, apperrors.BasicServiceClosed, "Basic service is closed")
	case errors.Is(err, service.ErrBasicServiceFull):
		apperrors.BadRequest(c, apperrors.BasicServiceFull, "Basic service is full")
	case errors.Is(err, service.ErrAlreadySubscribed):
		apperrors.Conflict(c, apperrors.BasicServiceAlreadyJoined, "Already subscribed to this basic service")
	default:
		middleware.GetLoggerFromContext(c).Error("Basic service operation failed", err, map[string]interface{}{
			"basic_service_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "basic service")
	}
}
