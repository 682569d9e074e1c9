// Package textgen produces short sports copy through the Gemini API. Generation
// never fails from the caller's point of view: every error path yields fixed
// fallback text.
package textgen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/Showrav193/Sportsworld/pkg/logger"
	"github.com/Showrav193/Sportsworld/pkg/metrics"
)

const (
	DefaultModel   = "gemini-3-flash-preview"
	defaultTimeout = 15 * time.Second
)

// Fallback copy.
var (
	UnavailableArticle = Article{
		Title:   "Latest Updates",
		Content: "Fresh tactical insights are being prepared. Stay tuned for more sports updates coming soon.",
	}
	MalformedArticle = Article{
		Title:   "Breaking News Update",
		Content: "The situation on the field is developing rapidly. Stay tuned for more details.",
	}
	FallbackSummary = "The match continues with intense action from both sides!"
)

var errEmptyResponse = errors.New("empty response")

// Article is a generated headline and body.
type Article struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Client calls the text generation API.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	logger  logger.Logger

	once   sync.Once
	sdk    *genai.Client
	sdkErr error
}

// New creates a Client. It is usable without an API key.
func New(opts ...Option) *Client {
	c := &Client{
		model:  DefaultModel,
		http:   &http.Client{Timeout: defaultTimeout},
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether remote generation is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

// GenerateArticle writes a short news piece about topic.
func (c *Client) GenerateArticle(ctx context.Context, topic string) Article {
	if !c.Enabled() {
		metrics.RecordTextgen("article", "fallback")
		return UnavailableArticle
	}

	prompt := "Generate a short, exciting sports news article title and content for " + topic + "."
	text, err := c.generate(ctx, prompt, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   articleSchema,
	})
	if err != nil {
		c.logger.Warn(ctx, "article generation failed", logger.String("topic", topic), logger.Error(err))
		metrics.RecordTextgen("article", "fallback")
		return UnavailableArticle
	}

	var a Article
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &a); err != nil || a.Title == "" || a.Content == "" {
		c.logger.Warn(ctx, "article response was not usable", logger.String("text", text))
		metrics.RecordTextgen("article", "malformed")
		return MalformedArticle
	}
	metrics.RecordTextgen("article", "ok")
	return a
}

// MatchSummary writes a two-sentence commentary for a described match.
func (c *Client) MatchSummary(ctx context.Context, description string) string {
	if !c.Enabled() {
		metrics.RecordTextgen("summary", "fallback")
		return FallbackSummary
	}

	prompt := "Write a 2-sentence thrilling commentary for a match described as: " + description
	text, err := c.generate(ctx, prompt, nil)
	if err != nil {
		c.logger.Warn(ctx, "summary generation failed", logger.Error(err))
		metrics.RecordTextgen("summary", "fallback")
		return FallbackSummary
	}
	metrics.RecordTextgen("summary", "ok")
	return strings.TrimSpace(text)
}

var articleSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":   {Type: genai.TypeString, Description: "The catchy title of the news article."},
		"content": {Type: genai.TypeString, Description: "The body content of the article."},
	},
	Required: []string{"title", "content"},
}

// client builds the SDK client on first use.
func (c *Client) client(ctx context.Context) (*genai.Client, error) {
	c.once.Do(func() {
		c.sdk, c.sdkErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      c.apiKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPClient:  c.http,
			HTTPOptions: genai.HTTPOptions{BaseURL: c.baseURL},
		})
	})
	return c.sdk, c.sdkErr
}

// generate returns the text of the first candidate. Blank text is an error.
func (c *Client) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	gc, err := c.client(ctx)
	if err != nil {
		return "", err
	}
	resp, err := gc.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errEmptyResponse
	}
	return text, nil
}
