package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
	"pitaka/internal/services"
	"pitaka/internal/uuid"
)

// InsightHandler handles the insight cache and its regeneration.
type InsightHandler struct {
	insightService services.InsightServicer
	auditService   services.AuditServicer
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(insightService services.InsightServicer, auditService services.AuditServicer) *InsightHandler {
	return &InsightHandler{insightService: insightService, auditService: auditService}
}

// InsightItem is one generated insight in an ingestion batch.
type InsightItem struct {
	Type    string          `json:"type" binding:"required,insight_type" example:"spending_pattern"`
	Title   string          `json:"title" binding:"required,max=200"`
	Content string          `json:"content" binding:"required"`
	Data    json.RawMessage `json:"data" swaggertype:"object"`
}

// IngestInsightsRequest is the generator's batch for one user.
type IngestInsightsRequest struct {
	Insights []InsightItem `json:"insights" binding:"required,dive"`
}

// RegenerateResponse acknowledges a queued regeneration.
type RegenerateResponse struct {
	RequestID string `json:"request_id"`
}

// ClearExpiredResponse reports how many insights were removed.
type ClearExpiredResponse struct {
	Cleared int64 `json:"cleared"`
}

// GetInsights handles listing the user's unexpired insights.
// @Summary     Get insights
// @Tags        insights
// @Produce     json
// @Security    BearerAuth
// @Param       type query string false "Filter by type"
// @Success     200 {array}  models.Insight "Active insights"
// @Failure     400 {object} ErrorResponse "Invalid insight type"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /insights [get]
func (h *InsightHandler) GetInsights(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var insightType *models.InsightType
	if v := c.Query("type"); v != "" {
		t := models.InsightType(v)
		if !t.Valid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid insight type"))
			return
		}
		insightType = &t
	}

	insights, err := h.insightService.GetActiveInsights(userID, insightType, timeNow())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

// DeleteInsight handles dismissing one insight.
// @Summary     Delete insight
// @Tags        insights
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Insight ID"
// @Success     200 {object} MessageResponse "Insight deleted"
// @Failure     400 {object} ErrorResponse "Invalid insight ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Insight not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /insights/{id} [delete]
func (h *InsightHandler) DeleteInsight(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	insightID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.insightService.DeleteInsight(userID, insightID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Insight deleted successfully"})
}

// ClearExpired handles purging the user's expired insights.
// @Summary     Clear expired insights
// @Tags        insights
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ClearExpiredResponse "Number of insights removed"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /insights/clear-expired [post]
func (h *InsightHandler) ClearExpired(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cleared, err := h.insightService.ClearExpired(userID, timeNow())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ClearExpiredResponse{Cleared: cleared})
}

// RegenerateInsights handles queuing a fresh insight batch.
// @Summary     Regenerate insights
// @Description Publish the user's spending summary to the insight generator
// @Tags        insights
// @Produce     json
// @Security    BearerAuth
// @Success     202 {object} RegenerateResponse "Regeneration queued"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Generator unavailable"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /insights/regenerate [post]
func (h *InsightHandler) RegenerateInsights(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	requestID, err := h.insightService.RequestRegeneration(c.Request.Context(), userID, timeNow())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REGENERATE_INSIGHTS", "insight", requestID, c.ClientIP(), nil)

	c.JSON(http.StatusAccepted, RegenerateResponse{RequestID: requestID})
}

// IngestInsights handles a generated batch delivered by the pipeline.
// @Summary     Ingest insights
// @Description Replace a user's active insights with a generated batch
// @Tags        internal
// @Accept      json
// @Produce     json
// @Security    PipelineAPIKey
// @Param       user_id path string                true "User ID"
// @Param       request body IngestInsightsRequest true "Insight batch"
// @Success     200 {array}  models.Insight "Stored insights"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /internal/users/{user_id}/insights [put]
func (h *InsightHandler) IngestInsights(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid user_id"))
		return
	}

	var req IngestInsightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	batch := make([]services.InsightInput, 0, len(req.Insights))
	for _, item := range req.Insights {
		batch = append(batch, services.InsightInput{
			Type:    models.InsightType(item.Type),
			Title:   item.Title,
			Content: item.Content,
			Data:    item.Data,
		})
	}

	insights, err := h.insightService.ReplaceInsights(userID, batch, timeNow())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "INGEST_INSIGHTS", "insight", userID, c.ClientIP(),
		map[string]interface{}{"count": len(insights)})

	c.JSON(http.StatusOK, gin.H{"insights": insights})
}
