// Package enrich validates raw listings against the Gemini API and
// extracts structured metadata. Results are cached per content hash and a
// per-run budget caps spend; every failure mode degrades to a default
// rather than failing the pipeline.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/cache"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/telemetry"
)

var tracer = telemetry.GetTracer("internboard/enrich")

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client enriches a raw listing with AI-extracted metadata.
type Client interface {
	Enrich(ctx context.Context, raw models.RawListing) (Result, error)
	Budget() *Budget
}

type geminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	prompt     string
	httpClient *http.Client
	cache      cache.Cache
	cacheTTL   time.Duration
	budget     *Budget
	logger     *zap.Logger
}

// NewGeminiClient builds the production client. An empty API key is
// allowed; every call then returns the default result.
func NewGeminiClient(cfg *config.Config, c cache.Cache, logger *zap.Logger) Client {
	return &geminiClient{
		apiKey:     cfg.Infra.GeminiAPIKey,
		baseURL:    geminiBaseURL,
		model:      cfg.AI.Model,
		maxTokens:  cfg.AI.MaxTokens,
		prompt:     cfg.AI.EnrichmentPrompt,
		httpClient: &http.Client{Timeout: cfg.Infra.HTTPTimeout},
		cache:      c,
		cacheTTL:   cfg.Infra.CacheTTL,
		budget:     NewBudget(cfg.AI.MaxCallsPerRun),
		logger:     logger,
	}
}

func (g *geminiClient) Budget() *Budget {
	return g.budget
}

func (g *geminiClient) Enrich(ctx context.Context, raw models.RawListing) (Result, error) {
	ctx, span := tracer.Start(ctx, "Enrich")
	defer span.End()

	contentHash := raw.ContentHash()
	cacheKey := "enrich:" + contentHash

	if g.cache != nil {
		var cached Metadata
		err := g.cache.Get(ctx, cacheKey, &cached)
		if err == nil {
			span.SetAttributes(telemetry.String("cache.result", "hit"))
			return Result{Kind: KindEnriched, Metadata: cached}, nil
		}
		if err != cache.ErrNotFound {
			g.logger.Warn("enrichment cache error", zap.Error(err))
		}
	}

	if g.apiKey == "" {
		g.logger.Debug("no Gemini API key configured, returning default metadata",
			zap.String("company", raw.Company),
			zap.String("title", raw.Title))
		return Result{Kind: KindDefault, Metadata: DefaultMetadata()}, nil
	}

	if !g.budget.TryConsume() {
		g.logger.Warn("AI budget exhausted, returning default metadata",
			zap.Int("consumed", g.budget.Consumed()),
			zap.String("title", raw.Title))
		return Result{Kind: KindDefault, Metadata: DefaultMetadata()}, nil
	}

	text, err := g.generateContent(ctx, listingPrompt(raw))
	if err != nil {
		span.RecordError(err)
		g.logger.Error("Gemini API call failed, returning default metadata",
			zap.String("company", raw.Company),
			zap.String("title", raw.Title),
			zap.Error(err))
		return Result{Kind: KindDefault, Metadata: DefaultMetadata()}, nil
	}

	g.logger.Info("Gemini API call",
		zap.Int("consumed", g.budget.Consumed()),
		zap.Int("remaining", g.budget.Remaining()),
		zap.String("company", raw.Company),
		zap.String("title", raw.Title))

	result := ParseResponse(text)

	if g.cache != nil && result.Kind == KindEnriched {
		if err := g.cache.Set(ctx, cacheKey, result.Metadata, g.cacheTTL); err != nil {
			g.logger.Warn("failed to cache enrichment result", zap.Error(err))
		}
	}

	return result, nil
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (g *geminiClient) generateContent(ctx context.Context, userMessage string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: userMessage}}},
		},
		GenerationConfig: geminiGenConfig{MaxOutputTokens: g.maxTokens},
	}
	if g.prompt != "" {
		reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: g.prompt}}}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding gemini response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("gemini API error: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response contained no candidates")
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func listingPrompt(raw models.RawListing) string {
	return fmt.Sprintf("Company: %s\nTitle: %s\nLocation: %s\nURL: %s",
		raw.Company, raw.Title, raw.Location, raw.URL)
}

var codeFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?\\s*```")

// ParseResponse turns model output into a Result, stripping markdown code
// fences first. Unparseable output is rejected rather than defaulted so a
// confused model never adds garbage listings.
func ParseResponse(text string) Result {
	cleaned := strings.TrimSpace(text)

	if m := codeFencePattern.FindStringSubmatch(cleaned); m != nil {
		cleaned = strings.TrimSpace(m[1])
	}

	meta := DefaultMetadata()
	if err := json.Unmarshal([]byte(cleaned), &meta); err != nil {
		rejected := DefaultMetadata()
		rejected.IsInternship = false
		return Result{Kind: KindRejected, Metadata: rejected}
	}
	return Result{Kind: KindEnriched, Metadata: meta}
}
