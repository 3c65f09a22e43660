package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"stockadvisor/internal/session"
	"stockadvisor/internal/store"
	"stockadvisor/internal/types"
)

// scriptedGenerator returns canned responses in order.
type scriptedGenerator struct {
	responses []string
	err       error
	prompts   []string
	healthy   bool
}

func (g *scriptedGenerator) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.prompts = append(g.prompts, req.Prompt)
	if len(g.responses) == 0 {
		return "", errors.New("script exhausted")
	}
	resp := g.responses[0]
	g.responses = g.responses[1:]
	return resp, nil
}

func (g *scriptedGenerator) GenerateStream(ctx context.Context, req types.GenerateRequest) (<-chan string, <-chan error) {
	chunks := make(chan string)
	errc := make(chan error)
	close(chunks)
	close(errc)
	return chunks, errc
}

func (g *scriptedGenerator) HealthCheck(ctx context.Context) bool { return g.healthy }

// recordingRunner records which tools ran.
type recordingRunner struct {
	analyzed []string
	compared [][]string
	newsHits int
}

func (r *recordingRunner) AnalyzeStock(ctx context.Context, symbol string) types.AnalysisResult {
	r.analyzed = append(r.analyzed, symbol)
	return types.AnalysisResult{Success: true, Symbol: strings.ToUpper(symbol)}
}

func (r *recordingRunner) CompareStocks(ctx context.Context, symbols []string) types.ComparisonResult {
	r.compared = append(r.compared, symbols)
	return types.ComparisonResult{Success: true}
}

func (r *recordingRunner) MarketNews(ctx context.Context, limit int) types.MarketNewsResult {
	r.newsHits++
	return types.MarketNewsResult{Success: true}
}

func (r *recordingRunner) Catalog() []types.ToolSpec {
	return []types.ToolSpec{{Name: "analyze_stock"}, {Name: "compare_stocks"}, {Name: "get_market_news"}}
}

func newTestOrchestrator(g *scriptedGenerator, r *recordingRunner) (*Orchestrator, *session.Store) {
	cfg := store.DefaultConfig()
	sessions := session.NewStore(cfg.Session.MaxHistory)
	return NewOrchestrator(g, r, sessions, cfg), sessions
}

func TestProcessMessageWithTool(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`{"tools": ["analyze_stock(AAPL)"], "reasoning": "stock question"}`,
		"AAPL looks bullish right now.",
	}}
	runner := &recordingRunner{}
	orch, sessions := newTestOrchestrator(gen, runner)

	result, err := orch.ProcessMessage(context.Background(), "u1", "How is AAPL doing?")
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if !result.Success || result.Response != "AAPL looks bullish right now." {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(runner.analyzed) != 1 || runner.analyzed[0] != "AAPL" {
		t.Errorf("analyzed = %v", runner.analyzed)
	}
	if len(result.ToolsUsed) != 1 {
		t.Errorf("tools_used = %v", result.ToolsUsed)
	}
	if _, ok := result.Analysis["analyze_stock_AAPL"]; !ok {
		t.Errorf("analysis keys = %v", result.Analysis)
	}

	// Both turns recorded, assistant metadata set.
	var turns []types.Turn
	sessions.With("u1", func(s *session.Session) { turns = s.History(0) })
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != "user" || turns[1].Role != "assistant" {
		t.Errorf("roles = %q, %q", turns[0].Role, turns[1].Role)
	}
	if turns[1].Metadata["tool_count"] != 1 || turns[1].Metadata["has_analysis"] != true {
		t.Errorf("assistant metadata = %v", turns[1].Metadata)
	}
}

func TestProcessMessageNoTools(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`{"tools": [], "reasoning": "greeting"}`,
		"Hello! How can I help you with the markets today?",
	}}
	runner := &recordingRunner{}
	orch, _ := newTestOrchestrator(gen, runner)

	result, err := orch.ProcessMessage(context.Background(), "u1", "hi")
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if len(result.ToolsUsed) != 0 || len(result.Analysis) != 0 {
		t.Errorf("expected toolless turn, got %+v", result)
	}
	if len(runner.analyzed) != 0 || runner.newsHits != 0 {
		t.Error("no tools should have run")
	}

	// The final prompt must not carry an analysis block.
	final := gen.prompts[len(gen.prompts)-1]
	if strings.Contains(final, "Analysis Results:") {
		t.Error("final prompt should omit empty analysis results")
	}
}

func TestProcessMessageUnparseableDecision(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		"I would suggest having a look at AAPL.",
		"Happy to chat about stocks!",
	}}
	runner := &recordingRunner{}
	orch, _ := newTestOrchestrator(gen, runner)

	result, err := orch.ProcessMessage(context.Background(), "u1", "thoughts?")
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if !result.Success || len(result.ToolsUsed) != 0 {
		t.Errorf("unparseable decision should degrade to no tools: %+v", result)
	}
}

func TestProcessMessageGatewayDown(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("connection refused")}
	runner := &recordingRunner{}
	orch, sessions := newTestOrchestrator(gen, runner)

	_, err := orch.ProcessMessage(context.Background(), "u1", "How is AAPL?")
	if err == nil {
		t.Fatal("expected error when gateway is down")
	}

	// The user turn must survive the failed turn.
	var turns []types.Turn
	sessions.With("u1", func(s *session.Session) { turns = s.History(0) })
	if len(turns) != 1 || turns[0].Role != "user" {
		t.Errorf("expected only the user turn recorded, got %v", turns)
	}
}

func TestProcessMessagePromptContents(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`{"tools": [], "reasoning": "none"}`,
		"ok",
	}}
	runner := &recordingRunner{}
	orch, _ := newTestOrchestrator(gen, runner)

	if _, err := orch.ProcessMessage(context.Background(), "trader-1", "what about NVDA?"); err != nil {
		t.Fatal(err)
	}

	decision := gen.prompts[0]
	for _, want := range []string{"StockAdvisor+", "trader-1", "User: what about NVDA?", `{"tools":`} {
		if !strings.Contains(decision, want) {
			t.Errorf("decision prompt missing %q", want)
		}
	}
}

func TestExecuteToolsMalformedCall(t *testing.T) {
	runner := &recordingRunner{}
	orch, _ := newTestOrchestrator(&scriptedGenerator{}, runner)

	results := orch.executeTools(context.Background(), []string{
		"analyze_stock",
		"compare_stocks(AAPL)",
		"frobnicate(1)",
	})
	for call, v := range results {
		entry, ok := v.(map[string]any)
		if !ok || entry["error"] == "" {
			t.Errorf("call %q should yield an error entry, got %v", call, v)
		}
	}
	if len(runner.analyzed)+len(runner.compared) != 0 {
		t.Error("malformed calls must not dispatch")
	}
}

func TestExecuteToolsNewsLimit(t *testing.T) {
	runner := &recordingRunner{}
	orch, _ := newTestOrchestrator(&scriptedGenerator{}, runner)

	results := orch.executeTools(context.Background(), []string{"get_market_news(5)"})
	if runner.newsHits != 1 {
		t.Fatal("news tool did not run")
	}
	if _, ok := results["market_news"]; !ok {
		t.Errorf("results = %v", results)
	}
}

func TestCompareSymbolsValidation(t *testing.T) {
	runner := &recordingRunner{}
	orch, _ := newTestOrchestrator(&scriptedGenerator{}, runner)

	if _, err := orch.CompareSymbols(context.Background(), []string{"AAPL"}); !errors.Is(err, ErrTooFewSymbols) {
		t.Errorf("expected ErrTooFewSymbols, got %v", err)
	}
	if _, err := orch.CompareSymbols(context.Background(), []string{"AAPL", "MSFT"}); err != nil {
		t.Errorf("two symbols should pass: %v", err)
	}
}

func TestClearSession(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`{"tools": [], "reasoning": "none"}`, "ok",
	}}
	orch, sessions := newTestOrchestrator(gen, &recordingRunner{})

	if _, err := orch.ProcessMessage(context.Background(), "u1", "hello"); err != nil {
		t.Fatal(err)
	}
	orch.ClearSession("u1")

	var turns int
	sessions.With("u1", func(s *session.Session) { turns = len(s.History(0)) })
	if turns != 0 {
		t.Errorf("expected empty history after clear, got %d turns", turns)
	}
}
