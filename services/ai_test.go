package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"improve-my-city-be/models"
)

// completionServer returns a test server that answers every chat-completions
// request with the given message content.
func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"choices": []map[string]any{
				{
					"index": 0,
					"message": map[string]any{
						"role":    "assistant",
						"content": content,
					},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]any{
				"prompt_tokens":     10,
				"completion_tokens": 20,
				"total_tokens":      30,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}))
}

func failingServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
}

func TestFallbackAnalysis(t *testing.T) {
	long := strings.Repeat("a", 150)
	cyrillic := strings.Repeat("яма", 50) // 150 characters, 300 bytes

	testCases := []struct {
		name        string
		description string
		wantSummary string
	}{
		{"short description kept whole", "Broken street light", "Broken street light"},
		{"exactly 100 chars kept whole", strings.Repeat("b", 100), strings.Repeat("b", 100)},
		{"long description truncated with ellipsis", long, long[:100] + "..."},
		{"multi-byte text truncated on character boundaries", cyrillic, string([]rune(cyrillic)[:100]) + "..."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FallbackAnalysis(tc.description)
			if got.Summary != tc.wantSummary {
				t.Errorf("Summary = %q, want %q", got.Summary, tc.wantSummary)
			}
			if len(got.Tags) != 1 || got.Tags[0] != "issue" {
				t.Errorf("Tags = %v, want [issue]", got.Tags)
			}
			if got.Priority != models.Medium {
				t.Errorf("Priority = %q, want Medium", got.Priority)
			}
		})
	}
}

func TestAnalyzeSuccess(t *testing.T) {
	content, _ := json.Marshal(Analysis{
		Summary:  "A deep pothole on the main road.",
		Tags:     []string{"pothole", "road_damage", "asphalt"},
		Priority: models.High,
	})
	srv := completionServer(t, string(content))
	defer srv.Close()

	client := NewAIClient("test-key", srv.URL, "gpt-4o")
	got := client.Analyze(context.Background(), "There is a pothole", []byte("fake-jpeg"), "image/jpeg")

	if got.Summary != "A deep pothole on the main road." {
		t.Errorf("Summary = %q", got.Summary)
	}
	if len(got.Tags) != 3 || got.Tags[0] != "pothole" {
		t.Errorf("Tags = %v", got.Tags)
	}
	if got.Priority != models.High {
		t.Errorf("Priority = %q, want High", got.Priority)
	}
}

func TestAnalyzeFailureUsesFallback(t *testing.T) {
	srv := failingServer(t)
	defer srv.Close()

	client := NewAIClient("test-key", srv.URL, "gpt-4o")
	got := client.Analyze(context.Background(), "There is a pothole", []byte("fake-jpeg"), "image/jpeg")

	want := FallbackAnalysis("There is a pothole")
	if got.Summary != want.Summary || got.Priority != want.Priority {
		t.Errorf("Analyze on failing endpoint = %+v, want fallback %+v", got, want)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "issue" {
		t.Errorf("Tags = %v, want [issue]", got.Tags)
	}
}

func TestAnalyzeMalformedJSONUsesFallback(t *testing.T) {
	srv := completionServer(t, "this is not json")
	defer srv.Close()

	client := NewAIClient("test-key", srv.URL, "gpt-4o")
	got := client.Analyze(context.Background(), "Leaking hydrant", []byte("fake-jpeg"), "image/jpeg")

	if got.Summary != "Leaking hydrant" || got.Priority != models.Medium {
		t.Errorf("Analyze on malformed content = %+v, want fallback", got)
	}
}

func TestAnalyzeInvalidPriorityCoercedToMedium(t *testing.T) {
	srv := completionServer(t, `{"summary":"ok","tags":["a","b","c"],"priority":"Urgent"}`)
	defer srv.Close()

	client := NewAIClient("test-key", srv.URL, "gpt-4o")
	got := client.Analyze(context.Background(), "desc", []byte("x"), "image/png")

	if got.Priority != models.Medium {
		t.Errorf("Priority = %q, want Medium for unknown value", got.Priority)
	}
}

func TestSuggestPlanSuccess(t *testing.T) {
	content, _ := json.Marshal(models.ActionPlan{
		Steps:          []string{"Close lane", "Fill pothole", "Reopen lane"},
		Crew:           "Road Maintenance Crew",
		EstimatedHours: 6,
	})
	srv := completionServer(t, "```json\n"+string(content)+"\n```")
	defer srv.Close()

	client := NewAIClient("test-key", srv.URL, "gpt-4o")
	plan, err := client.SuggestPlan(context.Background(), models.Issue{
		ID:       "IMC-TEST",
		Title:    "Pothole on Main St",
		Priority: models.High,
		Status:   models.Pending,
		Tags:     []string{"pothole"},
	})
	if err != nil {
		t.Fatalf("SuggestPlan: %v", err)
	}
	if len(plan.Steps) != 3 || plan.Crew != "Road Maintenance Crew" || plan.EstimatedHours != 6 {
		t.Errorf("plan = %+v", plan)
	}
}

func TestSuggestPlanFailureSurfaced(t *testing.T) {
	srv := failingServer(t)
	defer srv.Close()

	client := NewAIClient("test-key", srv.URL, "gpt-4o")
	if _, err := client.SuggestPlan(context.Background(), models.Issue{ID: "IMC-TEST"}); err == nil {
		t.Fatal("SuggestPlan on failing endpoint returned nil error, want error")
	}
}
