package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockadvisor/internal/agent"
	"stockadvisor/internal/session"
	"stockadvisor/internal/store"
	"stockadvisor/internal/types"
)

type stubGenerator struct {
	replies []string
	healthy bool
}

func (g *stubGenerator) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	if len(g.replies) == 0 {
		return "", nil
	}
	r := g.replies[0]
	g.replies = g.replies[1:]
	return r, nil
}

func (g *stubGenerator) GenerateStream(ctx context.Context, req types.GenerateRequest) (<-chan string, <-chan error) {
	chunks := make(chan string)
	errc := make(chan error)
	close(chunks)
	close(errc)
	return chunks, errc
}

func (g *stubGenerator) HealthCheck(ctx context.Context) bool { return g.healthy }

type stubRunner struct{}

func (stubRunner) AnalyzeStock(ctx context.Context, symbol string) types.AnalysisResult {
	if symbol == "BAD" {
		return types.AnalysisResult{Symbol: symbol, Error: "symbol not found"}
	}
	return types.AnalysisResult{
		Success: true,
		Symbol:  strings.ToUpper(symbol),
		Report:  &types.AnalysisReport{Symbol: strings.ToUpper(symbol), Recommendation: "HOLD"},
	}
}

func (stubRunner) CompareStocks(ctx context.Context, symbols []string) types.ComparisonResult {
	return types.ComparisonResult{Success: true, Comparison: &types.ComparisonReport{Symbols: symbols}}
}

func (stubRunner) MarketNews(ctx context.Context, limit int) types.MarketNewsResult {
	return types.MarketNewsResult{
		Success:  true,
		Articles: []types.NewsArticle{{Title: "Markets rally"}},
	}
}

func (stubRunner) Catalog() []types.ToolSpec {
	return []types.ToolSpec{
		{Name: "analyze_stock"}, {Name: "compare_stocks"}, {Name: "get_market_news"},
	}
}

func newTestServer(gen *stubGenerator) *Server {
	cfg := store.DefaultConfig()
	sessions := session.NewStore(cfg.Session.MaxHistory)
	orch := agent.NewOrchestrator(gen, stubRunner{}, sessions, cfg)
	return New(orch, sessions, cfg)
}

func doJSON(t *testing.T, s *Server, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echoHeaderContentType, "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

const echoHeaderContentType = "Content-Type"

func TestChat(t *testing.T) {
	gen := &stubGenerator{replies: []string{
		`{"tools": [], "reasoning": "greeting"}`,
		"Hello, trader!",
	}}
	s := newTestServer(gen)

	rec, payload := doJSON(t, s, http.MethodPost, "/api/chat", `{"user_id":"u1","message":"hi"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "Hello, trader!", payload["response"])
}

func TestChatValidation(t *testing.T) {
	s := newTestServer(&stubGenerator{})

	rec, _ := doJSON(t, s, http.MethodPost, "/api/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, s, http.MethodPost, "/api/chat", `{"user_id":"u1","message":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze(t *testing.T) {
	s := newTestServer(&stubGenerator{})

	rec, payload := doJSON(t, s, http.MethodPost, "/api/analyze", `{"symbol":"AAPL"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "AAPL", payload["symbol"])

	rec, payload = doJSON(t, s, http.MethodPost, "/api/analyze", `{"symbol":"BAD"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, payload["success"])

	rec, _ = doJSON(t, s, http.MethodPost, "/api/analyze", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompare(t *testing.T) {
	s := newTestServer(&stubGenerator{})

	rec, payload := doJSON(t, s, http.MethodPost, "/api/compare", `{"symbols":["AAPL","MSFT"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["success"])

	rec, payload = doJSON(t, s, http.MethodPost, "/api/compare", `{"symbols":["AAPL"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, payload["error"], "at least 2")
}

func TestNews(t *testing.T) {
	s := newTestServer(&stubGenerator{})

	rec, payload := doJSON(t, s, http.MethodGet, "/api/news?limit=5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["success"])

	rec, _ = doJSON(t, s, http.MethodGet, "/api/news?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTools(t *testing.T) {
	s := newTestServer(&stubGenerator{})

	rec, payload := doJSON(t, s, http.MethodGet, "/api/tools", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, payload["count"])
}

func TestHealth(t *testing.T) {
	s := newTestServer(&stubGenerator{healthy: true})
	rec, payload := doJSON(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", payload["status"])
	assert.Equal(t, true, payload["ollama_available"])

	s = newTestServer(&stubGenerator{healthy: false})
	_, payload = doJSON(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, "degraded", payload["status"])
}

func TestClearContext(t *testing.T) {
	gen := &stubGenerator{replies: []string{
		`{"tools": [], "reasoning": "greeting"}`, "hi",
	}}
	s := newTestServer(gen)

	_, _ = doJSON(t, s, http.MethodPost, "/api/chat", `{"user_id":"u1","message":"hi"}`)
	rec, payload := doJSON(t, s, http.MethodDelete, "/api/context/u1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["success"])
}

func TestWatchlistEndpoints(t *testing.T) {
	s := newTestServer(&stubGenerator{})

	rec, payload := doJSON(t, s, http.MethodPost, "/api/watchlist/u1/aapl", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"AAPL"}, payload["watched"])

	// Duplicate add is a no-op.
	_, payload = doJSON(t, s, http.MethodPost, "/api/watchlist/u1/AAPL", "")
	assert.Equal(t, []any{"AAPL"}, payload["watched"])

	_, payload = doJSON(t, s, http.MethodPost, "/api/watchlist/u1/msft", "")
	assert.Equal(t, []any{"AAPL", "MSFT"}, payload["watched"])

	rec, payload = doJSON(t, s, http.MethodGet, "/api/watchlist/u1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"AAPL", "MSFT"}, payload["watched"])

	rec, payload = doJSON(t, s, http.MethodDelete, "/api/watchlist/u1/aapl", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"MSFT"}, payload["watched"])
}
