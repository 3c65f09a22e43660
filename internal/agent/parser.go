package agent

import (
	"encoding/json"
	"regexp"
	"strings"
)

// toolDecision is the JSON shape the model is asked to produce in the
// decision phase.
type toolDecision struct {
	Tools     []string `json:"tools"`
	Reasoning string   `json:"reasoning"`
}

var (
	analyzeCallRe = regexp.MustCompile(`analyze_stock\((.*?)\)`)
	compareCallRe = regexp.MustCompile(`compare_stocks\(\[(.*?)\]\)`)
	newsCallRe    = regexp.MustCompile(`get_market_news\((.*?)\)`)
)

// ParseToolDecision extracts the requested tool calls from raw model output.
// The model rarely answers with clean JSON, so this takes the span from the
// first '{' to the last '}' and tries that. Anything unparseable means no
// tools, never an error: the turn degrades to a plain conversational answer.
func ParseToolDecision(text string) []string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return []string{}
	}

	var decision toolDecision
	if err := json.Unmarshal([]byte(text[start:end+1]), &decision); err != nil {
		return []string{}
	}
	if decision.Tools == nil {
		return []string{}
	}
	return decision.Tools
}

// parseSymbolArg pulls the single symbol out of an analyze_stock(…) call.
// Returns "" when the call does not match.
func parseSymbolArg(call string) string {
	m := analyzeCallRe.FindStringSubmatch(call)
	if m == nil {
		return ""
	}
	return cleanArg(m[1])
}

// parseSymbolsArg pulls the symbol list out of a compare_stocks([…]) call.
// Returns nil when the call does not match.
func parseSymbolsArg(call string) []string {
	m := compareCallRe.FindStringSubmatch(call)
	if m == nil {
		return nil
	}
	parts := strings.Split(m[1], ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := cleanArg(p); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

func cleanArg(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'\`)
}
