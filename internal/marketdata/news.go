package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/mmcdole/gofeed"

	"stockadvisor/internal/logger"
	"stockadvisor/internal/trace"
	"stockadvisor/internal/types"
)

const maxSummaryLen = 500

// FetchNews pulls articles from the configured RSS feeds. With a symbol
// filter, only articles mentioning the symbol in title or summary are kept;
// when that yields nothing, an optional Google News scrape fills in.
// Individual feed failures are logged and skipped, never fatal.
func (g *Gateway) FetchNews(ctx context.Context, symbolFilter string, limit int) ([]types.NewsArticle, error) {
	ctx, span := trace.StartSpan(ctx, "fetch-news")
	defer span.End()

	if limit <= 0 {
		limit = 20
	}
	symbolFilter = NormalizeSymbol(symbolFilter)

	articles := []types.NewsArticle{}
	for _, feed := range g.feeds {
		parsed, err := g.parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			logger.Warn(ctx, "Feed fetch failed", "feed", feed.Name, "error", err)
			continue
		}

		for i, item := range parsed.Items {
			if i >= limit {
				break
			}
			article := feedArticle(feed.Name, item)
			if symbolFilter != "" && !mentionsSymbol(article, symbolFilter) {
				continue
			}
			articles = append(articles, article)
		}
	}

	if symbolFilter != "" && len(articles) == 0 && g.googleFallback {
		logger.Info(ctx, "No RSS articles for symbol, trying Google News", "symbol", symbolFilter)
		fallback, err := g.scrapeGoogleNews(ctx, symbolFilter, limit)
		if err != nil {
			logger.Warn(ctx, "Google News fallback failed", "symbol", symbolFilter, "error", err)
		} else {
			articles = append(articles, fallback...)
		}
	}

	if len(articles) > limit {
		articles = articles[:limit]
	}
	logger.Debug(ctx, "News fetched", "symbol", symbolFilter, "articles", len(articles))
	return articles, nil
}

func feedArticle(source string, item *gofeed.Item) types.NewsArticle {
	author := ""
	if item.Author != nil {
		author = item.Author.Name
	}
	return types.NewsArticle{
		Source:      source,
		Title:       item.Title,
		Summary:     truncate(stripHTML(item.Description), maxSummaryLen),
		Link:        item.Link,
		PublishedAt: item.Published,
		Author:      author,
	}
}

// mentionsSymbol reports whether the article's title or summary contains the
// (already uppercased) symbol.
func mentionsSymbol(a types.NewsArticle, symbol string) bool {
	return strings.Contains(strings.ToUpper(a.Title), symbol) ||
		strings.Contains(strings.ToUpper(a.Summary), symbol)
}

// stripHTML flattens feed summaries that carry markup down to plain text.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// scrapeGoogleNews is the fallback when the RSS feeds carry nothing about a
// symbol. Headlines only; Google News does not expose summaries here.
func (g *Gateway) scrapeGoogleNews(ctx context.Context, symbol string, limit int) ([]types.NewsArticle, error) {
	articles := []types.NewsArticle{}

	c := colly.NewCollector(
		colly.AllowedDomains("news.google.com", "www.google.com"),
	)
	c.SetRequestTimeout(g.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	})

	c.OnHTML("article", func(e *colly.HTMLElement) {
		if len(articles) >= limit {
			return
		}

		title := e.ChildText("h3, h4")
		link := e.ChildAttr("a", "href")
		if title == "" || link == "" {
			return
		}
		if strings.HasPrefix(link, "./articles/") {
			link = "https://news.google.com" + link[1:]
		}

		articles = append(articles, types.NewsArticle{
			Source: "GoogleNews",
			Title:  title,
			Link:   link,
		})
	})

	searchQuery := url.QueryEscape(symbol + " stock news")
	searchURL := fmt.Sprintf("https://news.google.com/search?q=%s&hl=en-US&gl=US&ceid=US:en", searchQuery)

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("google news scrape: %w", err)
	}
	c.Wait()

	return articles, nil
}
