package queue

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mdhub/internal/constants"
	"mdhub/internal/logger"
	"mdhub/pkg/errors"
)

type Handler struct {
	service Service
	logger  logger.Logger
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		queue := v1.Group("/queue")
		{
			queue.GET("/status", h.GetStatus)
			queue.POST("/status", h.SetStatus)
			queue.GET("/status/history", h.GetStatusHistory)
			queue.GET("/depth", h.GetDepth)
			queue.POST("/dead-letter/retry", h.RetryDeadLetter)
		}
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}

// GetStatus godoc
// @Summary      Get current queue status
// @Description  Get the authoritative pause flags for event and masterdata processing
// @Tags         queue
// @Produce      json
// @Success      200  {object}  Status
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /queue/status [get]
func (h *Handler) GetStatus(c *gin.Context) {
	status, err := h.service.Current(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// SetStatus godoc
// @Summary      Set queue status
// @Description  Append a new pause/resume state; resuming masterdata drains the holding queue
// @Tags         queue
// @Accept       json
// @Produce      json
// @Param        status  body      SetStatusRequest  true  "Pause flags"
// @Success      201     {object}  Status
// @Failure      400     {object}  errors.ErrorResponse
// @Failure      500     {object}  errors.ErrorResponse
// @Router       /queue/status [post]
func (h *Handler) SetStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	status, err := h.service.Set(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, status)
}

// GetStatusHistory godoc
// @Summary      Get queue status history
// @Description  List past pause/resume transitions, newest first
// @Tags         queue
// @Produce      json
// @Param        limit  query     int  false  "Maximum rows to return"
// @Success      200    {array}   Status
// @Failure      500    {object}  errors.ErrorResponse
// @Router       /queue/status/history [get]
func (h *Handler) GetStatusHistory(c *gin.Context) {
	limit := constants.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithDetail("message", "limit must be a positive integer")))
			return
		}
		if parsed > constants.MaxLimit {
			parsed = constants.MaxLimit
		}
		limit = parsed
	}

	history, err := h.service.History(c.Request.Context(), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// GetDepth godoc
// @Summary      Get queue depths
// @Description  Report the current message counts of the primary, holding and dead-letter queues, or one of them via the queue parameter
// @Tags         queue
// @Produce      json
// @Param        queue  query     string  false  "Queue kind"  Enums(primary, holding, dead-letter)
// @Success      200    {object}  DepthReport
// @Failure      400    {object}  errors.ErrorResponse
// @Failure      503    {object}  errors.ErrorResponse
// @Router       /queue/depth [get]
func (h *Handler) GetDepth(c *gin.Context) {
	if kind := c.Query("queue"); kind != "" {
		depth, err := h.service.Depth(c.Request.Context(), kind)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"queue": kind, "depth": depth})
		return
	}

	report, err := h.service.Depths(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// RetryDeadLetter godoc
// @Summary      Retry dead-lettered messages
// @Description  Move every dead-lettered message back to the primary queue, or to the holding queue while masterdata processing is paused
// @Tags         queue
// @Produce      json
// @Success      200  {object}  broker.RetryResult
// @Failure      500  {object}  errors.ErrorResponse
// @Failure      503  {object}  errors.ErrorResponse
// @Router       /queue/dead-letter/retry [post]
func (h *Handler) RetryDeadLetter(c *gin.Context) {
	result, err := h.service.RetryDeadLetter(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
