package handler

import "github.com/gin-gonic/gin"

// Register mounts the authenticated routes on api
func Register(api gin.IRoutes, profile *ProfileHandler, resume *ResumeHandler, analysis *AnalysisHandler) {
	// Profile
	api.GET("/profile", profile.GetProfile)
	api.PUT("/profile/resume", profile.SaveResume)

	// Resume upload
	api.POST("/resume/extract", resume.Extract)

	// Quota
	api.GET("/quota", analysis.Quota)

	// Analyses
	api.POST("/analyses", analysis.Create)
	api.GET("/analyses", analysis.List)
	api.GET("/analyses/:id", analysis.Get)
	api.POST("/analyses/:id/learning-path", analysis.LearningPath)
	api.POST("/analyses/:id/tailored-resume", analysis.TailoredResume)
}
