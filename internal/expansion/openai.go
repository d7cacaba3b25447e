package expansion

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/haasonsaas/recall/internal/observability"
	"github.com/haasonsaas/recall/pkg/models"
)

const expansionSystemPrompt = `You are a query analyzer for a personal memory system. Analyze the user's query and extract structured retrieval hints.

Given a query and the current date, extract:
1. date_range: If the query mentions a time period (e.g., "last week", "yesterday", "in January"), compute the actual date range. Use null if no temporal reference.
2. entities: Extract any named entities (people, places, organizations, specific things like "my car", "the gym").
3. relationship_threads: Identify topic threads that might help find related memories (e.g., "fitness_journey", "work_projects", "family_events").
4. semantic_query: Clean the query for vector search - remove temporal qualifiers, keep semantic meaning.

Current date: %s
User timezone: %s

Return JSON:
{
  "date_range": {"start": "YYYY-MM-DD", "end": "YYYY-MM-DD"} or null,
  "entities": ["entity1", "entity2"],
  "relationship_threads": ["thread1", "thread2"],
  "semantic_query": "cleaned query for vector search"
}`

// OpenAIClient implements Client using an OpenAI-compatible chat model.
// Analysis failures degrade to the rule-based Fallback rather than
// surfacing an error to retrieval.
type OpenAIClient struct {
	client   *openai.Client
	model    string
	logger   *observability.Logger
	fallback *Fallback

	// now supplies the current date for the prompt; overridable in tests.
	now func() time.Time
}

var _ Client = (*OpenAIClient)(nil)

// OpenAIConfig contains configuration for the OpenAI expansion client.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // Optional custom base URL
	Model   string // Defaults to gpt-4o-mini
	Logger  *observability.Logger
}

// NewOpenAIClient creates an LLM-backed expansion client.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.NewLogger(observability.LogConfig{Level: "info"})
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		client:   openai.NewClientWithConfig(config),
		model:    cfg.Model,
		logger:   cfg.Logger,
		fallback: &Fallback{},
		now:      time.Now,
	}, nil
}

type expansionPayload struct {
	DateRange *struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"date_range"`
	Entities            []string `json:"entities"`
	RelationshipThreads []string `json:"relationship_threads"`
	SemanticQuery       string   `json:"semantic_query"`
}

// Expand analyzes the query with the chat model, falling back to the
// rule-based heuristics on any failure.
func (c *OpenAIClient) Expand(ctx context.Context, query, timezone string) (*models.QueryExpansion, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	currentDate := c.now().UTC().Format("2006-01-02")

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(expansionSystemPrompt, currentDate, timezone)},
			{Role: openai.ChatMessageRoleUser, Content: "Query: " + query},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		c.logger.Warn(ctx, "Query expansion failed, using fallback", "error", err)
		return c.fallback.Expand(ctx, query, timezone)
	}
	if len(resp.Choices) == 0 {
		c.logger.Warn(ctx, "Query expansion returned no choices, using fallback")
		return c.fallback.Expand(ctx, query, timezone)
	}

	var payload expansionPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		c.logger.Warn(ctx, "Query expansion returned malformed JSON, using fallback", "error", err)
		return c.fallback.Expand(ctx, query, timezone)
	}

	exp := &models.QueryExpansion{
		OriginalQuery:       query,
		Entities:            payload.Entities,
		RelationshipThreads: payload.RelationshipThreads,
		SemanticQuery:       payload.SemanticQuery,
	}
	if exp.SemanticQuery == "" {
		exp.SemanticQuery = query
	}
	if payload.DateRange != nil {
		start, serr := time.Parse("2006-01-02", payload.DateRange.Start)
		end, eerr := time.Parse("2006-01-02", payload.DateRange.End)
		if serr == nil && eerr == nil && !start.After(end) {
			exp.DateRange = &models.DateRange{Start: start, End: end}
		}
	}
	return exp, nil
}
