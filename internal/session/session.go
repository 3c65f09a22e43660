package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stockadvisor/internal/types"
)

// Session holds one user's conversation state: turn history, watch list and
// preferences. It is not safe for concurrent use on its own; the Store
// serializes access per user.
type Session struct {
	UserID       string
	MaxHistory   int
	Turns        []types.Turn
	Preferences  map[string]any
	Watchlist    []string
	CreatedAt    time.Time
	LastActivity time.Time
}

func New(userID string, maxHistory int) *Session {
	now := time.Now()
	return &Session{
		UserID:       userID,
		MaxHistory:   maxHistory,
		Turns:        []types.Turn{},
		Preferences:  map[string]any{},
		Watchlist:    []string{},
		CreatedAt:    now,
		LastActivity: now,
	}
}

// AddTurn appends a turn and drops the oldest entries once the history
// exceeds MaxHistory.
func (s *Session) AddTurn(role, content string, metadata map[string]any) types.Turn {
	turn := types.Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
	s.Turns = append(s.Turns, turn)
	if len(s.Turns) > s.MaxHistory {
		s.Turns = s.Turns[len(s.Turns)-s.MaxHistory:]
	}
	s.LastActivity = time.Now()
	return turn
}

// History returns the most recent turns, all of them when limit <= 0.
func (s *Session) History(limit int) []types.Turn {
	if limit > 0 && len(s.Turns) > limit {
		return s.Turns[len(s.Turns)-limit:]
	}
	return s.Turns
}

// WatchStock adds a symbol to the watch list, uppercased, ignoring
// duplicates.
func (s *Session) WatchStock(symbol string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return
	}
	for _, w := range s.Watchlist {
		if w == symbol {
			return
		}
	}
	s.Watchlist = append(s.Watchlist, symbol)
}

// UnwatchStock removes a symbol from the watch list if present.
func (s *Session) UnwatchStock(symbol string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for i, w := range s.Watchlist {
		if w == symbol {
			s.Watchlist = append(s.Watchlist[:i], s.Watchlist[i+1:]...)
			return
		}
	}
}

func (s *Session) SetPreference(key string, value any) {
	s.Preferences[key] = value
}

func (s *Session) Preference(key string, def any) any {
	if v, ok := s.Preferences[key]; ok {
		return v
	}
	return def
}

// ClearHistory drops the turns but keeps watch list and preferences.
func (s *Session) ClearHistory() {
	s.Turns = []types.Turn{}
	s.LastActivity = time.Now()
}

// SystemPrompt renders the advisor persona with this user's context
// interpolated.
func (s *Session) SystemPrompt() string {
	watched := "None"
	if len(s.Watchlist) > 0 {
		watched = strings.Join(s.Watchlist, ", ")
	}

	return fmt.Sprintf(`You are StockAdvisor+, an intelligent financial advisor chatbot.

Your role is to:
1. Analyze stock market data and provide investment insights
2. Retrieve and analyze financial news
3. Generate recommendations based on technical and sentiment analysis
4. Maintain a conversational and helpful tone

User Profile:
- User ID: %s
- Watched Stocks: %s
- Preferences: %v

Available Tools:
- analyze_stock(symbol): Get complete analysis of a stock
- compare_stocks(symbols): Compare multiple stocks
- get_market_news(limit): Get market news and sentiment

Guidelines:
- Always provide data-driven recommendations
- Explain your analysis in simple terms
- Ask clarifying questions if needed
- Remind users that this is not financial advice
- Be honest about limitations and uncertainties

Current Date/Time: %s
`, s.UserID, watched, s.Preferences, time.Now().Format(time.RFC3339))
}

// Snapshot exports the session for API responses.
func (s *Session) Snapshot() map[string]any {
	return map[string]any{
		"user_id":       s.UserID,
		"messages":      s.Turns,
		"preferences":   s.Preferences,
		"watched":       s.Watchlist,
		"created_at":    s.CreatedAt.Format(time.RFC3339),
		"last_activity": s.LastActivity.Format(time.RFC3339),
	}
}
