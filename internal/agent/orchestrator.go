package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"stockadvisor/internal/interfaces"
	"stockadvisor/internal/logger"
	"stockadvisor/internal/session"
	"stockadvisor/internal/store"
	"stockadvisor/internal/trace"
	"stockadvisor/internal/types"
)

// ErrTooFewSymbols is returned when a comparison is requested with fewer than
// two symbols.
var ErrTooFewSymbols = errors.New("comparison needs at least 2 symbols")

// Orchestrator drives one conversational turn: it records the user message,
// asks the model which tools to run, runs them, and asks the model for the
// final answer grounded in the tool results. Turns for the same user are
// serialized by the session store.
type Orchestrator struct {
	generator interfaces.Generator
	runner    interfaces.ToolRunner
	sessions  *session.Store

	decisionTemp float64
	answerTemp   float64
	topP         float64
	maxTokens    int
	contextTurns int
}

func NewOrchestrator(generator interfaces.Generator, runner interfaces.ToolRunner, sessions *session.Store, cfg *store.Config) *Orchestrator {
	return &Orchestrator{
		generator:    generator,
		runner:       runner,
		sessions:     sessions,
		decisionTemp: cfg.Ollama.DecisionTemperature,
		answerTemp:   cfg.Ollama.AnswerTemperature,
		topP:         cfg.Ollama.TopP,
		maxTokens:    cfg.Ollama.MaxTokens,
		contextTurns: cfg.Session.ContextTurns,
	}
}

// ProcessMessage runs a full turn for one user message. The user turn is
// recorded before any model call, so a gateway failure still leaves the
// message in history.
func (o *Orchestrator) ProcessMessage(ctx context.Context, userID, message string) (types.TurnResult, error) {
	ctx, span := trace.StartSpan(ctx, "process-message")
	defer span.End()

	logger.Info(ctx, "Processing message", "user_id", userID, "preview", preview(message))

	var result types.TurnResult
	var turnErr error
	o.sessions.With(userID, func(s *session.Session) {
		s.AddTurn("user", message, nil)

		systemPrompt := s.SystemPrompt()
		history := formatTurns(s.History(o.contextTurns))

		response, toolsUsed, analysis, err := o.respond(ctx, systemPrompt, history, message)
		if err != nil {
			turnErr = err
			return
		}

		s.AddTurn("assistant", response, map[string]any{
			"tool_count":   len(toolsUsed),
			"has_analysis": len(analysis) > 0,
		})

		result = types.TurnResult{
			Success:   true,
			UserID:    userID,
			Response:  response,
			Analysis:  analysis,
			ToolsUsed: toolsUsed,
		}
	})
	if turnErr != nil {
		logger.ErrorWithErr(ctx, "Turn failed", turnErr, "user_id", userID)
		return types.TurnResult{UserID: userID}, turnErr
	}
	return result, nil
}

// respond is the tool-decision / execution / final-generation core of a turn.
func (o *Orchestrator) respond(ctx context.Context, systemPrompt, history, message string) (string, []string, map[string]any, error) {
	decisionPrompt := fmt.Sprintf(`%s

Conversation History:
%s

User: %s

Based on the user's message, decide which tools to use (if any):
1. analyze_stock(symbol) - for analyzing a specific stock
2. compare_stocks(symbols) - for comparing multiple stocks
3. get_market_news(limit) - for getting market news

Respond with a JSON object containing:
{"tools": ["tool_name(param)"], "reasoning": "why you chose these tools"}

If no tools are needed, respond with: {"tools": [], "reasoning": "reason"}
`, systemPrompt, history, message)

	decisionText, err := o.generator.Generate(ctx, types.GenerateRequest{
		Prompt:      decisionPrompt,
		Temperature: o.decisionTemp,
		TopP:        o.topP,
		MaxTokens:   o.maxTokens,
	})
	if err != nil {
		return "", nil, nil, fmt.Errorf("tool decision: %w", err)
	}

	toolsUsed := ParseToolDecision(decisionText)
	logger.Debug(ctx, "Tool decision parsed", "tools", toolsUsed)

	analysis := map[string]any{}
	if len(toolsUsed) > 0 {
		analysis = o.executeTools(ctx, toolsUsed)
	}

	finalPrompt := fmt.Sprintf(`%s

Conversation History:
%s

User: %s

%sGenerate a helpful response to the user based on the above information. Be conversational and provide actionable insights.
`, systemPrompt, history, message, formatResults(analysis))

	response, err := o.generator.Generate(ctx, types.GenerateRequest{
		Prompt:      finalPrompt,
		Temperature: o.answerTemp,
		TopP:        o.topP,
		MaxTokens:   o.maxTokens,
	})
	if err != nil {
		return "", nil, nil, fmt.Errorf("final generation: %w", err)
	}

	return response, toolsUsed, analysis, nil
}

// executeTools dispatches each requested call. A malformed call turns into an
// error entry under the raw call string; valid calls run in order.
func (o *Orchestrator) executeTools(ctx context.Context, calls []string) map[string]any {
	ctx, span := trace.StartSpan(ctx, "execute-tools")
	defer span.End()

	results := map[string]any{}
	for _, call := range calls {
		switch {
		case strings.Contains(call, "analyze_stock"):
			symbol := parseSymbolArg(call)
			if symbol == "" {
				results[call] = map[string]any{"error": "malformed analyze_stock call"}
				continue
			}
			results["analyze_stock_"+strings.ToUpper(symbol)] = o.runner.AnalyzeStock(ctx, symbol)

		case strings.Contains(call, "compare_stocks"):
			symbols := parseSymbolsArg(call)
			if symbols == nil {
				results[call] = map[string]any{"error": "malformed compare_stocks call"}
				continue
			}
			results["compare_stocks"] = o.runner.CompareStocks(ctx, symbols)

		case strings.Contains(call, "get_market_news"):
			limit := 0
			if m := newsCallRe.FindStringSubmatch(call); m != nil {
				if n, err := strconv.Atoi(cleanArg(m[1])); err == nil {
					limit = n
				}
			}
			results["market_news"] = o.runner.MarketNews(ctx, limit)

		default:
			logger.Warn(ctx, "Unknown tool requested", "call", call)
			results[call] = map[string]any{"error": "unknown tool"}
		}
	}
	return results
}

// AnalyzeSymbol runs a direct analysis outside any conversation.
func (o *Orchestrator) AnalyzeSymbol(ctx context.Context, symbol string) types.AnalysisResult {
	return o.runner.AnalyzeStock(ctx, symbol)
}

// CompareSymbols runs a direct comparison outside any conversation.
func (o *Orchestrator) CompareSymbols(ctx context.Context, symbols []string) (types.ComparisonResult, error) {
	if len(symbols) < 2 {
		return types.ComparisonResult{}, ErrTooFewSymbols
	}
	return o.runner.CompareStocks(ctx, symbols), nil
}

// MarketNews runs the news tool directly.
func (o *Orchestrator) MarketNews(ctx context.Context, limit int) types.MarketNewsResult {
	return o.runner.MarketNews(ctx, limit)
}

// Tools exposes the catalog.
func (o *Orchestrator) Tools() []types.ToolSpec {
	return o.runner.Catalog()
}

// ClearSession drops a user's conversation history.
func (o *Orchestrator) ClearSession(userID string) {
	o.sessions.Clear(userID)
	logger.Info(context.Background(), "Session cleared", "user_id", userID)
}

// Healthy reports whether the language-model backend answers.
func (o *Orchestrator) Healthy(ctx context.Context) bool {
	return o.generator.HealthCheck(ctx)
}

func formatTurns(turns []types.Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		role := t.Role
		if role != "" {
			role = strings.ToUpper(role[:1]) + role[1:]
		}
		lines = append(lines, role+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

func formatResults(results map[string]any) string {
	if len(results) == 0 {
		return ""
	}
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return ""
	}
	return "Analysis Results: " + string(b) + "\n\n"
}

func preview(s string) string {
	runes := []rune(s)
	if len(runes) > 50 {
		return string(runes[:50]) + "..."
	}
	return s
}
