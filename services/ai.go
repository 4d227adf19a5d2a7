package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"improve-my-city-be/models"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// Analysis is the AI-derived triage of a new submission.
type Analysis struct {
	Summary  string          `json:"summary"`
	Tags     []string        `json:"tags"`
	Priority models.Priority `json:"priority"`
}

// IssueAnalyzer is the generative-AI collaborator. Analyze never fails the
// submission: any collaborator error is replaced by a fixed fallback.
// SuggestPlan, by contrast, surfaces its errors to the caller.
type IssueAnalyzer interface {
	Analyze(ctx context.Context, description string, photo []byte, mimeType string) Analysis
	SuggestPlan(ctx context.Context, issue models.Issue) (models.ActionPlan, error)
}

// AIClient calls a chat-completions endpoint with fixed JSON-shaped prompts.
// Single shot, no streaming, no retry.
type AIClient struct {
	client openai.Client
	model  string
}

func NewAIClient(apiKey, baseURL, model string) *AIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// Single shot everywhere; the SDK's default retries are disabled
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = "gpt-4o"
	}

	return &AIClient{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

const analyzePrompt = `Analyze the attached image and the user's description of a civic issue. Based on both, provide the following in JSON format:
1. "summary": a short, one-sentence summary of the issue.
2. "tags": an array of 3 to 5 relevant string tags for categorization (e.g., 'pothole', 'street_light', 'sanitation', 'road_damage').
3. "priority": one of "Low", "Medium", "High", "Critical".

User's Description: %q`

// Analyze derives summary, tags and priority from the description and photo.
func (c *AIClient) Analyze(ctx context.Context, description string, photo []byte, mimeType string) Analysis {
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(photo)

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
		openai.TextContentPart(fmt.Sprintf(analyzePrompt, description)),
	}

	content, err := c.complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(parts),
	})
	if err != nil {
		slog.Warn("issue analysis failed, using fallback", "error", err)
		return FallbackAnalysis(description)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(stripFences(content)), &analysis); err != nil {
		slog.Warn("issue analysis returned malformed JSON, using fallback", "error", err)
		return FallbackAnalysis(description)
	}

	if analysis.Summary == "" || len(analysis.Tags) == 0 {
		return FallbackAnalysis(description)
	}
	if !models.ValidPriority(string(analysis.Priority)) {
		analysis.Priority = models.Medium
	}
	return analysis
}

const planPrompt = `You are a municipal operations planner. Given the civic issue below, respond in JSON with:
1. "steps": an array of 3 to 6 concrete remediation steps.
2. "crew": the crew type required (e.g., "Road Maintenance Crew").
3. "estimatedHours": estimated hours to resolution, as a number.

Issue title: %q
Description: %q
Summary: %q
Tags: %s
Priority: %s
Status: %s`

// SuggestPlan asks for a remediation plan from the full issue context.
func (c *AIClient) SuggestPlan(ctx context.Context, issue models.Issue) (models.ActionPlan, error) {
	prompt := fmt.Sprintf(planPrompt,
		issue.Title, issue.Description, issue.Summary,
		strings.Join(issue.Tags, ", "), issue.Priority, issue.Status)

	content, err := c.complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	})
	if err != nil {
		return models.ActionPlan{}, fmt.Errorf("generate action plan: %w", err)
	}

	var plan models.ActionPlan
	if err := json.Unmarshal([]byte(stripFences(content)), &plan); err != nil {
		return models.ActionPlan{}, fmt.Errorf("decode action plan: %w", err)
	}
	if len(plan.Steps) == 0 {
		return models.ActionPlan{}, fmt.Errorf("action plan response had no steps")
	}
	return plan, nil
}

func (c *AIClient) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:               c.model,
		Messages:            messages,
		MaxCompletionTokens: openai.Int(1024),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	slog.Debug("ai completion finished",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return resp.Choices[0].Message.Content, nil
}

// FallbackAnalysis is the fixed substitute used whenever the collaborator
// fails: a truncated summary, a single generic tag, medium priority.
func FallbackAnalysis(description string) Analysis {
	summary := description
	// Truncate on runes so multi-byte text keeps 100 characters intact.
	if runes := []rune(summary); len(runes) > 100 {
		summary = string(runes[:100]) + "..."
	}
	return Analysis{
		Summary:  summary,
		Tags:     []string{"issue"},
		Priority: models.Medium,
	}
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
