package controllers_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"
	"time"

	"improve-my-city-be/controllers"
	"improve-my-city-be/models"
	"improve-my-city-be/repository"
	"improve-my-city-be/routes"
	"improve-my-city-be/services"
	authUtils "improve-my-city-be/utils"

	"github.com/gin-gonic/gin"
)

// stubAnalyzer implements services.IssueAnalyzer with function fields.
type stubAnalyzer struct {
	analyze func(description string) services.Analysis
	plan    func(issue models.Issue) (models.ActionPlan, error)
}

func (s stubAnalyzer) Analyze(ctx context.Context, description string, photo []byte, mimeType string) services.Analysis {
	if s.analyze != nil {
		return s.analyze(description)
	}
	return services.FallbackAnalysis(description)
}

func (s stubAnalyzer) SuggestPlan(ctx context.Context, issue models.Issue) (models.ActionPlan, error) {
	if s.plan != nil {
		return s.plan(issue)
	}
	return models.ActionPlan{Steps: []string{"inspect"}, Crew: "General Crew", EstimatedHours: 2}, nil
}

// failingPhotoStore implements services.PhotoStore and rejects every upload.
type failingPhotoStore struct {
	err error
}

func (s failingPhotoStore) Save(ctx context.Context, key string, data []byte, contentType string, progress services.UploadProgress) (string, error) {
	return "", s.err
}

func newTestServer(t *testing.T, ai services.IssueAnalyzer) (*gin.Engine, *repository.MemoryIssueRepository, *repository.MemoryUserRepository) {
	return newTestServerWithPhotos(t, ai, services.InlinePhotoStore{})
}

func newTestServerWithPhotos(t *testing.T, ai services.IssueAnalyzer, photos services.PhotoStore) (*gin.Engine, *repository.MemoryIssueRepository, *repository.MemoryUserRepository) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	r := gin.New()
	issues := repository.NewMemoryIssueRepository()
	users := repository.NewMemoryUserRepository()

	routes.AuthRoutes(r, controllers.NewAuthController(users))
	routes.IssueRoutes(r, controllers.NewIssueController(issues, ai, photos), users, nil)
	routes.ChatbotRoutes(r, controllers.NewChatbotController(issues))

	return r, issues, users
}

// createUser seeds a user and returns it with a valid bearer token.
func createUser(t *testing.T, users *repository.MemoryUserRepository, email string, role models.Role) (models.User, string) {
	t.Helper()

	user := models.User{
		Name:      "Test User",
		Email:     email,
		Password:  "password123",
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := user.HashPassword(); err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	created, err := users.Create(context.Background(), user)
	if err != nil {
		t.Fatalf("seeding user %s: %v", email, err)
	}

	token, err := authUtils.GenerateAndSetToken(created.ID)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return created, token
}

func seedIssue(t *testing.T, issues *repository.MemoryIssueRepository, id, title string, createdAt time.Time) models.Issue {
	t.Helper()

	issue := models.Issue{
		ID:          id,
		Title:       title,
		Description: "seeded issue",
		Summary:     "seeded issue",
		Tags:        []string{"issue"},
		Priority:    models.Medium,
		Status:      models.Pending,
		Location:    &models.Location{Lat: 1, Lon: 2},
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	created, err := issues.Create(context.Background(), issue)
	if err != nil {
		t.Fatalf("seeding issue %s: %v", id, err)
	}
	return created
}

// multipartIssueBody builds an intake submission body.
func multipartIssueBody(t *testing.T, fields map[string]string, withPhoto bool) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			t.Fatalf("writing field %s: %v", key, err)
		}
	}
	if withPhoto {
		fw, err := w.CreateFormFile("photo", "photo.jpg")
		if err != nil {
			t.Fatalf("creating photo part: %v", err)
		}
		if _, err := fw.Write([]byte("fake-jpeg-bytes")); err != nil {
			t.Fatalf("writing photo part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}
