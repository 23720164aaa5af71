package ingestion

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mdhub/internal/logger"
	"mdhub/pkg/errors"
)

const (
	headerClientID = "X-Client-ID"
	headerSource   = "X-Source"
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
		masterdata := v1.Group("/masterdata")
		{
			masterdata.POST("", h.Ingest)
			masterdata.GET("/:id", h.GetRecord)
			masterdata.GET("/:id/destinations", h.GetDestinations)
			masterdata.PATCH("/:id/status", h.UpdateStatus)
		}
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}

// Ingest godoc
// @Summary      Ingest a masterdata document
// @Description  Accept an XML masterdata document, redact it per the owning organization's privacy rules, persist it and dispatch it to the broker
// @Tags         masterdata
// @Accept       xml
// @Produce      json
// @Param        X-Client-ID  header    string  true   "Submitting client identifier"
// @Param        X-Source     header    string  false  "Originating system"
// @Param        document     body      string  true   "XML document"
// @Success      201  {object}  IngestResult
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Failure      503  {object}  errors.ErrorResponse
// @Router       /masterdata [post]
func (h *Handler) Ingest(c *gin.Context) {
	clientID := c.GetHeader(headerClientID)
	if clientID == "" {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
			errors.ErrValidation.WithDetail("message", "X-Client-ID header is required")))
		return
	}

	raw, err := c.GetRawData()
	if err != nil || len(raw) == 0 {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
			errors.ErrValidation.WithDetail("message", "request body must be a non-empty XML document")))
		return
	}

	result, err := h.service.Ingest(c.Request.Context(), raw, clientID, c.GetHeader(headerSource))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetRecord godoc
// @Summary      Get a masterdata record
// @Description  Get a stored (redacted) masterdata record with its delivery attempts
// @Tags         masterdata
// @Produce      json
// @Param        id   path      string  true  "Record ID"
// @Success      200  {object}  RecordDetail
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /masterdata/{id} [get]
func (h *Handler) GetRecord(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetDestinations godoc
// @Summary      Get delivery attempts for a record
// @Tags         masterdata
// @Produce      json
// @Param        id   path      string  true  "Record ID"
// @Success      200  {array}   Destination
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /masterdata/{id}/destinations [get]
func (h *Handler) GetDestinations(c *gin.Context) {
	destinations, err := h.service.Destinations(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, destinations)
}

// UpdateStatus godoc
// @Summary      Update a record's delivery status
// @Description  Record a downstream delivery confirmation or failure for a masterdata record
// @Tags         masterdata
// @Accept       json
// @Produce      json
// @Param        id      path      string               true  "Record ID"
// @Param        status  body      UpdateStatusRequest  true  "New status"
// @Success      200     {object}  MasterdataRecord
// @Failure      400     {object}  errors.ErrorResponse
// @Failure      404     {object}  errors.ErrorResponse
// @Failure      500     {object}  errors.ErrorResponse
// @Router       /masterdata/{id}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	record, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}
