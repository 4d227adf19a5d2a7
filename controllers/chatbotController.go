package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"improve-my-city-be/repository"

	"github.com/gin-gonic/gin"
)

var reportIDPattern = regexp.MustCompile(`(?i)IMC-\w+`)

type ChatbotController struct {
	Issues repository.IssueRepository
}

func NewChatbotController(issues repository.IssueRepository) *ChatbotController {
	return &ChatbotController{Issues: issues}
}

// HandleMessage extracts a report ID from free text and answers with a
// canned status sentence. Stateless request/response.
func (cc *ChatbotController) HandleMessage(c *gin.Context) {
	var input struct {
		Message string `json:"message" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := reportIDPattern.FindString(input.Message)
	if id == "" {
		c.JSON(http.StatusOK, gin.H{
			"reply": "Please provide a report ID (e.g., 'What is the status of IMC-12345?').",
		})
		return
	}
	id = strings.ToUpper(strings.TrimSpace(id))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issue, err := cc.Issues.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{
				"reply": fmt.Sprintf("Sorry, I could not find any report with the ID \"%s\". Please check the ID and try again.", id),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reply": fmt.Sprintf("Report %s ( \"%s\" ) is currently marked as: %s. It was reported on %s.",
			issue.ID, issue.Title, issue.Status, issue.CreatedAt.Format("1/2/2006")),
	})
}
