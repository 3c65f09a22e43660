package interfaces

import (
	"context"

	"stockadvisor/internal/types"
)

// ToolRunner executes catalog tools on behalf of the orchestrator.
type ToolRunner interface {
	AnalyzeStock(ctx context.Context, symbol string) types.AnalysisResult
	CompareStocks(ctx context.Context, symbols []string) types.ComparisonResult
	MarketNews(ctx context.Context, limit int) types.MarketNewsResult
	Catalog() []types.ToolSpec
}
