package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/models"
)

func TestBudgetTryConsume(t *testing.T) {
	b := NewBudget(2)

	assert.True(t, b.TryConsume())
	assert.True(t, b.TryConsume())
	assert.False(t, b.TryConsume(), "third call must be refused")
	assert.Equal(t, 2, b.Consumed())
	assert.Equal(t, 0, b.Remaining())

	b.Reset()
	assert.Equal(t, 0, b.Consumed())
	assert.True(t, b.TryConsume())
}

func TestBudgetZeroAllowsNothing(t *testing.T) {
	b := NewBudget(0)
	assert.False(t, b.TryConsume())
	assert.Equal(t, 0, b.Remaining())
}

func TestParseResponsePlainJSON(t *testing.T) {
	res := ParseResponse(`{"is_internship": true, "is_summer_2026": true, "category": "swe", "confidence": 0.93}`)

	assert.Equal(t, KindEnriched, res.Kind)
	assert.True(t, res.Metadata.IsInternship)
	assert.True(t, res.Metadata.IsTargetSeason)
	assert.Equal(t, "swe", res.Metadata.Category)
	assert.InDelta(t, 0.93, res.Metadata.Confidence, 1e-9)
}

func TestParseResponseStripsCodeFences(t *testing.T) {
	for name, text := range map[string]string{
		"json fence":  "```json\n{\"is_internship\": true, \"confidence\": 0.8}\n```",
		"plain fence": "```\n{\"is_internship\": true, \"confidence\": 0.8}\n```",
		"surrounding": "Sure, here is the result:\n```json\n{\"is_internship\": true, \"confidence\": 0.8}\n```",
	} {
		t.Run(name, func(t *testing.T) {
			res := ParseResponse(text)
			assert.Equal(t, KindEnriched, res.Kind)
			assert.True(t, res.Metadata.IsInternship)
		})
	}
}

func TestParseResponseGarbageIsRejected(t *testing.T) {
	res := ParseResponse("I could not determine whether this is an internship.")

	assert.Equal(t, KindRejected, res.Kind)
	assert.False(t, res.Metadata.IsInternship, "rejected listings must not pass validation")
}

func TestParseResponsePartialJSONKeepsDefaults(t *testing.T) {
	res := ParseResponse(`{"category": "ml_ai"}`)

	require.Equal(t, KindEnriched, res.Kind)
	assert.Equal(t, "ml_ai", res.Metadata.Category)
	// Fields the model omitted keep the default values.
	assert.True(t, res.Metadata.IsInternship)
	assert.Equal(t, "unknown", res.Metadata.Sponsorship)
}

func geminiReply(t *testing.T, text string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	})
	require.NoError(t, err)
	return body
}

func testClient(server *httptest.Server, maxCalls int) *geminiClient {
	return &geminiClient{
		apiKey:     "test-key",
		baseURL:    server.URL,
		model:      "gemini-2.0-flash",
		maxTokens:  256,
		httpClient: server.Client(),
		cacheTTL:   time.Minute,
		budget:     NewBudget(maxCalls),
		logger:     zap.NewNop(),
	}
}

func TestEnrichParsesModelAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write(geminiReply(t, `{"is_internship": true, "is_summer_2026": true, "category": "quant", "confidence": 0.88}`))
	}))
	defer server.Close()

	client := testClient(server, 10)
	res, err := client.Enrich(context.Background(), models.RawListing{Company: "Citadel", Title: "Quant Intern"})

	require.NoError(t, err)
	assert.Equal(t, KindEnriched, res.Kind)
	assert.Equal(t, "quant", res.Metadata.Category)
	assert.Equal(t, 1, client.budget.Consumed())
}

func TestEnrichWithoutKeyReturnsDefault(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := testClient(server, 10)
	client.apiKey = ""

	res, err := client.Enrich(context.Background(), models.RawListing{Company: "NCR", Title: "SWE Intern"})
	require.NoError(t, err)
	assert.Equal(t, KindDefault, res.Kind)
	assert.True(t, res.Metadata.IsInternship)
	assert.Zero(t, calls.Load(), "no HTTP call without an API key")
}

func TestEnrichBudgetExhaustedReturnsDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(geminiReply(t, `{"is_internship": true}`))
	}))
	defer server.Close()

	client := testClient(server, 1)
	raw := models.RawListing{Company: "Delta", Title: "Data Intern"}

	first, err := client.Enrich(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, KindEnriched, first.Kind)

	second, err := client.Enrich(context.Background(), models.RawListing{Company: "Home Depot", Title: "PM Intern"})
	require.NoError(t, err)
	assert.Equal(t, KindDefault, second.Kind)
}

func TestEnrichAPIErrorDegradesToDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := testClient(server, 10)
	res, err := client.Enrich(context.Background(), models.RawListing{Company: "UPS", Title: "SWE Intern"})

	require.NoError(t, err, "API failures must not abort the pipeline")
	assert.Equal(t, KindDefault, res.Kind)
}

func TestEnrichUnparseableAnswerIsRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(geminiReply(t, "not json at all"))
	}))
	defer server.Close()

	client := testClient(server, 10)
	res, err := client.Enrich(context.Background(), models.RawListing{Company: "Equifax", Title: "Intern"})

	require.NoError(t, err)
	assert.Equal(t, KindRejected, res.Kind)
	assert.False(t, res.Metadata.IsInternship)
}
