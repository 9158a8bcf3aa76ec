package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/criteria"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/retrieval"
)

type handler struct {
	engine *matching.Engine
	logger *zap.Logger
}

// registerMatchingRoutes registers the shortlist, evaluate and criteria endpoints.
func registerMatchingRoutes(r *gin.Engine, h *handler) {
	g := r.Group("/api/v1")
	g.POST("/shortlist", h.shortlist)
	g.POST("/evaluate", h.evaluate)
	g.POST("/criteria", h.criteria)
}

// ShortlistRequest is the body of POST /api/v1/shortlist. A max experience
// of zero means no upper bound.
type ShortlistRequest struct {
	JobRequirements string `json:"job_requirements" binding:"required"`
	MinExperience   int    `json:"min_experience" binding:"gte=0"`
	MaxExperience   int    `json:"max_experience" binding:"gte=0"`
	TopN            int    `json:"top_n" binding:"required,min=1,max=100"`
}

// EvaluateRequest is the body of POST /api/v1/evaluate. Candidates use the
// same document shape as the retrieval service.
type EvaluateRequest struct {
	JobDescription string               `json:"job_description" binding:"required"`
	Candidates     []candidate.Document `json:"candidates"`
}

type CriteriaRequest struct {
	JobDescription string `json:"job_description" binding:"required"`
}

func (h *handler) shortlist(c *gin.Context) {
	var req ShortlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !criteria.IsOpenEnded(req.MaxExperience) && req.MaxExperience < req.MinExperience {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_experience is below min_experience"})
		return
	}

	res, err := h.engine.Shortlist(c.Request.Context(), matching.ShortlistRequest{
		JobRequirements: req.JobRequirements,
		MinExperience:   req.MinExperience,
		MaxExperience:   req.MaxExperience,
		TopN:            req.TopN,
	})
	if err != nil {
		h.fail(c, "shortlist failed", err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *handler) evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pool, err := candidate.FromDocuments(req.Candidates)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.engine.Evaluate(c.Request.Context(), pool.Items, req.JobDescription)
	if err != nil {
		h.fail(c, "evaluation failed", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *handler) criteria(c *gin.Context) {
	var req CriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, criteria.Extract(req.JobDescription))
}

func (h *handler) fail(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))

	status := http.StatusInternalServerError
	if errors.Is(err, retrieval.ErrUnavailable) {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": msg + ": " + err.Error()})
}
