package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/resumatch-api/internal/apperror"
	"github.com/yourusername/resumatch-api/internal/model"
	"github.com/yourusername/resumatch-api/internal/service"
)

type AnalysisHandler struct {
	analyzer *service.Analyzer
}

func NewAnalysisHandler(analyzer *service.Analyzer) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer}
}

// Create handles POST /analyses
// Runs the quota-gated match of the caller's resume against a job description
func (h *AnalysisHandler) Create(c *gin.Context) {
	sess, ok := session(c, "analyze")
	if !ok {
		return
	}

	var req service.AnalyzeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "analyze", apperror.NewInvalidInput("jobTitle and jobDescription are required"))
		return
	}

	analysis, err := h.analyzer.Analyze(c.Request.Context(), sess, req)
	if err != nil {
		respondError(c, "analyze", err)
		return
	}

	c.JSON(http.StatusCreated, analysis)
}

// List handles GET /analyses
// Query params: search (job title), limit, offset
func (h *AnalysisHandler) List(c *gin.Context) {
	sess, ok := session(c, "list_analyses")
	if !ok {
		return
	}

	filter := model.AnalysisFilter{Search: c.Query("search")}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		filter.Offset = v
	}

	list, err := h.analyzer.History(c.Request.Context(), sess, filter)
	if err != nil {
		respondError(c, "list_analyses", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analyses": list, "count": len(list)})
}

// Get handles GET /analyses/:id
func (h *AnalysisHandler) Get(c *gin.Context) {
	sess, ok := session(c, "get_analysis")
	if !ok {
		return
	}
	id, ok := analysisID(c, "get_analysis")
	if !ok {
		return
	}

	analysis, err := h.analyzer.Analysis(c.Request.Context(), sess, id)
	if err != nil {
		respondError(c, "get_analysis", err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// Quota handles GET /quota
func (h *AnalysisHandler) Quota(c *gin.Context) {
	sess, ok := session(c, "quota")
	if !ok {
		return
	}

	status, err := h.analyzer.Quota(c.Request.Context(), sess)
	if err != nil {
		respondError(c, "quota", err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// LearningPath handles POST /analyses/:id/learning-path
// Returns the stored path or generates it once
func (h *AnalysisHandler) LearningPath(c *gin.Context) {
	sess, ok := session(c, "learning_path")
	if !ok {
		return
	}
	id, ok := analysisID(c, "learning_path")
	if !ok {
		return
	}

	path, err := h.analyzer.LearningPath(c.Request.Context(), sess, id)
	if err != nil {
		respondError(c, "learning_path", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"learningPath": path})
}

// TailoredResume handles POST /analyses/:id/tailored-resume
// Returns the stored tailored resume or generates it once
func (h *AnalysisHandler) TailoredResume(c *gin.Context) {
	sess, ok := session(c, "tailored_resume")
	if !ok {
		return
	}
	id, ok := analysisID(c, "tailored_resume")
	if !ok {
		return
	}

	result, err := h.analyzer.TailoredResume(c.Request.Context(), sess, id)
	if err != nil {
		respondError(c, "tailored_resume", err)
		return
	}

	c.JSON(http.StatusOK, result)
}
