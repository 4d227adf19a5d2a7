package routes

import (
	"improve-my-city-be/controllers"
	"improve-my-city-be/middlewares"
	"improve-my-city-be/repository"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue routes. createLimiter is optional; it is
// only wired when Redis is configured.
func IssueRoutes(r *gin.Engine, ic *controllers.IssueController, users repository.UserRepository, createLimiter gin.HandlerFunc) {
	issue := r.Group("/api/issue", middlewares.AuthMiddleware())
	{
		createHandlers := []gin.HandlerFunc{}
		if createLimiter != nil {
			createHandlers = append(createHandlers, createLimiter)
		}
		createHandlers = append(createHandlers, ic.CreateIssue)
		issue.POST("/create", createHandlers...)

		issue.GET("", ic.GetAllIssues)
		issue.GET("/map", ic.MapPins)
		issue.GET("/stats", ic.GetStats)
		issue.GET("/feed", ic.StreamIssues)
		issue.GET("/:id", ic.GetIssue)

		admin := middlewares.AdminOnly(users)
		issue.PATCH("/:id/status", admin, ic.UpdateStatus)
		issue.PATCH("/:id/priority", admin, ic.UpdatePriority)
		issue.POST("/:id/action-plan", admin, ic.SuggestActionPlan)
	}
}
