package submissionsapi

import (
	"errors"
	"net/http"

	"github.com/elmrakby/ai-resume-agent/internal/domain/orders"
	"github.com/elmrakby/ai-resume-agent/internal/domain/submissions"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type createRequest struct {
	OrderID            *string `json:"orderId"`
	RoleTarget         string  `json:"roleTarget"`
	Industry           string  `json:"industry"`
	Language           string  `json:"language"`
	JobAdURL           string  `json:"jobAdUrl"`
	JobAdText          string  `json:"jobAdText"`
	Notes              string  `json:"notes"`
	CVFileURL          string  `json:"cvFileUrl"`
	CoverLetterFileURL string  `json:"coverLetterFileUrl"`
}

func (r *createRequest) validate() string {
	if r.RoleTarget == "" {
		return "roleTarget is required"
	}
	if r.JobAdURL == "" && r.JobAdText == "" {
		return "Either job URL or job description text must be provided"
	}
	if r.Language == "" {
		r.Language = submissions.LanguageEN
	}
	if !submissions.ValidLanguage(r.Language) {
		return "language must be EN, AR or BOTH"
	}
	return ""
}

// POST /submissions
func (h *Handler) CreateSubmission(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	// A linked order must exist and belong to the caller. PAID status is
	// deliberately not required: payment confirmation may still be in
	// flight when the submission is filed.
	if req.OrderID != nil && *req.OrderID != "" {
		var order orders.Order
		err := h.db.WithContext(c.Request.Context()).
			Where("id = ?", *req.OrderID).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && order.UserID != userID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify order"})
			return
		}
	} else {
		req.OrderID = nil
	}

	submission := submissions.Submission{
		ID:                 uuid.NewString(),
		UserID:             userID,
		OrderID:            req.OrderID,
		RoleTarget:         req.RoleTarget,
		Industry:           req.Industry,
		Language:           req.Language,
		JobAdURL:           req.JobAdURL,
		JobAdText:          req.JobAdText,
		Notes:              req.Notes,
		CVFileURL:          req.CVFileURL,
		CoverLetterFileURL: req.CoverLetterFileURL,
		Status:             submissions.StatusNew,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create submission"})
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// GET /submissions
func (h *Handler) ListSubmissions(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var list []submissions.Submission
	err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load submissions"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /submissions/:id
//
// Non-owners get 404, never 403: the response must not reveal that the id
// exists at all.
func (h *Handler) GetSubmission(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var submission submissions.Submission
	err := h.db.WithContext(c.Request.Context()).
		Where("id = ?", c.Param("id")).First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && submission.UserID != userID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load submission"})
		return
	}
	c.JSON(http.StatusOK, submission)
}
