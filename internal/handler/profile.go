package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/resumatch-api/internal/apperror"
	"github.com/yourusername/resumatch-api/internal/service"
)

type ProfileHandler struct {
	analyzer *service.Analyzer
}

func NewProfileHandler(analyzer *service.Analyzer) *ProfileHandler {
	return &ProfileHandler{analyzer: analyzer}
}

// GetProfile handles GET /profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	sess, ok := session(c, "get_profile")
	if !ok {
		return
	}

	profile, err := h.analyzer.Profile(c.Request.Context(), sess)
	if err != nil {
		respondError(c, "get_profile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SaveResume handles PUT /profile/resume
// Parses the pasted or extracted resume text and overwrites the profile
func (h *ProfileHandler) SaveResume(c *gin.Context) {
	sess, ok := session(c, "save_resume")
	if !ok {
		return
	}

	var req struct {
		ResumeText string `json:"resumeText" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "save_resume", apperror.NewInvalidInput("resumeText is required"))
		return
	}

	profile, err := h.analyzer.SaveResume(c.Request.Context(), sess, req.ResumeText)
	if err != nil {
		respondError(c, "save_resume", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
