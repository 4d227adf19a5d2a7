package routes

import (
	"improve-my-city-be/controllers"

	"github.com/gin-gonic/gin"
)

// ChatbotRoutes sets up the conversational lookup route
func ChatbotRoutes(r *gin.Engine, cc *controllers.ChatbotController) {
	r.POST("/api/chatbot", cc.HandleMessage)
}
