package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"jobtrail-backend/internal/tracker/usecase"
	"jobtrail-backend/pkg/ai"

	"github.com/gin-gonic/gin"
)

// TrackerHandler handles inbox and application HTTP requests
type TrackerHandler struct {
	tracker    *usecase.TrackerUsecase
	triage     *usecase.TriageUsecase
	classifier *ai.EmailClassifier
}

// NewTrackerHandler creates a new TrackerHandler
func NewTrackerHandler(tracker *usecase.TrackerUsecase, triage *usecase.TriageUsecase, classifier *ai.EmailClassifier) *TrackerHandler {
	return &TrackerHandler{
		tracker:    tracker,
		triage:     triage,
		classifier: classifier,
	}
}

// GetMessages returns classified messages for the authenticated user
// GET /api/messages?classification=interview_invite&limit=50&offset=0
func (h *TrackerHandler) GetMessages(c *gin.Context) {
	userID := c.GetString("userID")

	classification := c.Query("classification")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	messages, err := h.tracker.ListMessages(userID, classification, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"count":    len(messages),
	})
}

// SearchMessages fuzzy-searches the user's recent messages
// GET /api/messages/search?q=acme&limit=20
func (h *TrackerHandler) SearchMessages(c *gin.Context) {
	userID := c.GetString("userID")

	query := c.Query("q")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	messages, err := h.tracker.SearchMessages(userID, query, limit)
	if err != nil {
		if errors.Is(err, usecase.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"count":    len(messages),
	})
}

// FinalizeMessage records a reviewer's verdict on one message
// PATCH /api/messages/:id
func (h *TrackerHandler) FinalizeMessage(c *gin.Context) {
	userID := c.GetString("userID")
	messageID := c.Param("id")

	var input usecase.FinalizeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.tracker.FinalizeClassification(userID, messageID, input)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		case errors.Is(err, usecase.ErrValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, message)
}

// ClaimRequest names the reviewer asking for the triage claim.
type ClaimRequest struct {
	Requester string `json:"requester"`
}

// ClaimMessage takes (or renews) the triage claim on one message
// POST /api/messages/:id/claim
func (h *TrackerHandler) ClaimMessage(c *gin.Context) {
	userID := c.GetString("userID")
	messageID := c.Param("id")

	// Body is optional; an absent requester means the caller claims for
	// themselves.
	var req ClaimRequest
	_ = c.ShouldBindJSON(&req)
	requester := req.Requester
	if requester == "" {
		requester = userID
	}

	claim, err := h.triage.Claim(userID, messageID, requester)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		case errors.Is(err, usecase.ErrClaimConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Message is being triaged by someone else"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"triage_in_progress": claim.InProgress,
		"claimed_by":         claim.ClaimedBy,
		"claimed_at":         claim.ClaimedAt,
	})
}

// GetApplications returns the authenticated user's applications
// GET /api/applications?status=interview_scheduled&limit=50&offset=0
func (h *TrackerHandler) GetApplications(c *gin.Context) {
	userID := c.GetString("userID")

	status := c.Query("status")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	applications, err := h.tracker.ListApplications(userID, status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": applications,
		"count":        len(applications),
	})
}

// GetApplicationByID returns one application with its messages and event log
// GET /api/applications/:id
func (h *TrackerHandler) GetApplicationByID(c *gin.Context) {
	userID := c.GetString("userID")
	applicationID := c.Param("id")

	detail, err := h.tracker.GetApplication(userID, applicationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if detail == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// ClassifyRequest carries raw email text for ad-hoc classification.
type ClassifyRequest struct {
	Text    string `json:"text"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Classify runs the classifier on caller-supplied text without persisting
// POST /api/classifications
func (h *TrackerHandler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text := req.Text
	if text == "" {
		text = req.Subject + "\n" + req.Body
	}

	result := h.classifier.Classify(c.Request.Context(), text)
	c.JSON(http.StatusOK, gin.H{
		"label":      result.Label,
		"confidence": result.Confidence,
		"source":     result.Source,
	})
}

// GetInsightsSummary returns pipeline counts and the response rate
// GET /api/insights/summary
func (h *TrackerHandler) GetInsightsSummary(c *gin.Context) {
	userID := c.GetString("userID")

	summary, err := h.tracker.InsightsSummary(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetCompanyLeaderboard ranks companies by reply rate
// GET /api/insights/company_leaderboard
func (h *TrackerHandler) GetCompanyLeaderboard(c *gin.Context) {
	userID := c.GetString("userID")

	leaderboard, err := h.tracker.CompanyLeaderboard(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"companies": leaderboard})
}
