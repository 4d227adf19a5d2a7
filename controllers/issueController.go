package controllers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"path"
	"strconv"
	"time"

	"improve-my-city-be/models"
	"improve-my-city-be/repository"
	"improve-my-city-be/services"

	"github.com/gin-gonic/gin"
)

type IssueController struct {
	Issues repository.IssueRepository
	AI     services.IssueAnalyzer
	Photos services.PhotoStore
}

func NewIssueController(issues repository.IssueRepository, ai services.IssueAnalyzer, photos services.PhotoStore) *IssueController {
	return &IssueController{Issues: issues, AI: ai, Photos: photos}
}

// CreateIssue handles the intake flow: validate the submission, run AI
// analysis (falling back on failure), upload the photo, store the record.
// Single attempt, no retry.
func (ic *IssueController) CreateIssue(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	title := c.PostForm("title")
	description := c.PostForm("description")
	latStr := c.PostForm("lat")
	lonStr := c.PostForm("lon")
	header, fileErr := c.FormFile("photo")

	if title == "" || description == "" || latStr == "" || lonStr == "" || fileErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in all fields, upload a photo, and provide your location."})
		return
	}
	if len(title) > 200 || len(description) > 1000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title or description too long"})
		return
	}

	lat, latErr := strconv.ParseFloat(latStr, 64)
	lon, lonErr := strconv.ParseFloat(lonStr, 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid location coordinates"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read photo"})
		return
	}
	defer file.Close()

	photo, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read photo"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	// Analysis never blocks the submission; failures substitute a fixed
	// fallback inside the collaborator.
	analysis := ic.AI.Analyze(c.Request.Context(), description, photo, contentType)

	issueID := models.NewIssueID()

	uploadCtx, cancel := context.WithTimeout(context.Background(), services.UploadTimeout*time.Second)
	defer cancel()

	photoKey := issueID + path.Ext(header.Filename)
	photoURL, err := ic.Photos.Save(uploadCtx, photoKey, photo, contentType, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusRequestTimeout, gin.H{"error": "Photo upload timed out. Please try again."})
			return
		}
		log.Println("Error uploading photo:", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload photo. Please try again."})
		return
	}

	now := time.Now()
	issue := models.Issue{
		ID:          issueID,
		Title:       title,
		Description: description,
		Summary:     analysis.Summary,
		Tags:        analysis.Tags,
		Priority:    analysis.Priority,
		PhotoURL:    photoURL,
		Location:    &models.Location{Lat: lat, Lon: lon},
		Status:      models.Pending,
		CreatedBy:   userID.(string),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := ic.Issues.Create(ctx, issue)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetAllIssues returns the full collection newest-first, optionally filtered
// by a single status.
func (ic *IssueController) GetAllIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status := c.Query("status")

	issues, err := ic.Issues.ListAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	if status != "" && status != "all" {
		filtered := make([]models.Issue, 0, len(issues))
		for _, issue := range issues {
			if issue.Status == models.IssueStatus(status) {
				filtered = append(filtered, issue)
			}
		}
		issues = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"issues":      issues,
		"totalIssues": len(issues),
	})
}

// GetIssue retrieves an issue by its report ID
func (ic *IssueController) GetIssue(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issue, err := ic.Issues.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	c.JSON(http.StatusOK, issue)
}

// UpdateStatus sets a new status. Any member of the enum may follow any
// other; no transition ordering is enforced.
func (ic *IssueController) UpdateStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ic.Issues.UpdateStatus(ctx, c.Param("id"), models.IssueStatus(input.Status)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue updated successfully"})
}

// UpdatePriority sets a new priority
func (ic *IssueController) UpdatePriority(c *gin.Context) {
	var input struct {
		Priority string `json:"priority" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidPriority(input.Priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ic.Issues.UpdatePriority(ctx, c.Param("id"), models.Priority(input.Priority)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue updated successfully"})
}

// SuggestActionPlan asks the AI collaborator for a remediation plan and
// persists it. Failure here is surfaced and blocks only this action.
// Repeated triggers overwrite; last write wins.
func (ic *IssueController) SuggestActionPlan(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issue, err := ic.Issues.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	plan, err := ic.AI.SuggestPlan(c.Request.Context(), issue)
	if err != nil {
		log.Println("Error generating action plan:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate action plan"})
		return
	}

	if err := ic.Issues.AttachActionPlan(ctx, issue.ID, plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save action plan"})
		return
	}

	c.JSON(http.StatusOK, plan)
}

// MapPins returns every issue that carries coordinates, newest first, with
// the marker color for its status. Issues without a location are excluded
// here but remain on the board.
func (ic *IssueController) MapPins(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issues, err := ic.Issues.ListAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	type Pin struct {
		ID          string             `json:"id"`
		Title       string             `json:"title"`
		Lat         float64            `json:"lat"`
		Lon         float64            `json:"lon"`
		Status      models.IssueStatus `json:"status"`
		MarkerColor string             `json:"markerColor"`
		CreatedAt   time.Time          `json:"createdAt"`
	}

	pins := make([]Pin, 0, len(issues))
	for _, issue := range issues {
		if issue.Location == nil {
			continue
		}
		pins = append(pins, Pin{
			ID:          issue.ID,
			Title:       issue.Title,
			Lat:         issue.Location.Lat,
			Lon:         issue.Location.Lon,
			Status:      issue.Status,
			MarkerColor: models.StatusMarkerColors[issue.Status],
			CreatedAt:   issue.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, pins)
}

// GetStats returns board analytics: totals, counts by status and priority,
// and the last-7-days creation series.
func (ic *IssueController) GetStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issues, err := ic.Issues.ListAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	byStatus := make(map[models.IssueStatus]int)
	byPriority := make(map[models.Priority]int)
	for _, issue := range issues {
		byStatus[issue.Status]++
		byPriority[issue.Priority]++
	}

	var last7Days []gin.H
	for i := 6; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		nextDate := date.AddDate(0, 0, 1)

		count := 0
		for _, issue := range issues {
			if !issue.CreatedAt.Before(date) && issue.CreatedAt.Before(nextDate) {
				count++
			}
		}

		last7Days = append(last7Days, gin.H{
			"date":  date.Format("2006-01-02"),
			"count": count,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"totalIssues":      len(issues),
		"openIssues":       byStatus[models.Pending] + byStatus[models.InProgress],
		"issuesByStatus":   byStatus,
		"issuesByPriority": byPriority,
		"last7Days":        last7Days,
	})
}

// StreamIssues pushes issue snapshots to the board as server-sent events so
// open clients observe every creation and mutation without re-fetching.
func (ic *IssueController) StreamIssues(c *gin.Context) {
	ch, err := ic.Issues.Watch(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open issue feed"})
		return
	}

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case issue, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("issue", issue)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
