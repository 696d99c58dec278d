package news

import (
	"context"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	"CoinPulse/pkg/cache"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	"CoinPulse/pkg/logger"
)

// Client fetches coin headlines from the CryptoPanic posts API.
type Client struct {
	baseURL   string
	authToken string
	ttl       time.Duration

	http    *xhttp.Client
	cache   cache.Service
	metrics repository.Metrics
	log     *logger.Logger
}

// New creates a news client from configuration.
func New(cfg *config.Config, httpClient *xhttp.Client, c cache.Service, metrics repository.Metrics, log *logger.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.News.BaseURL, "/"),
		authToken: cfg.News.AuthToken,
		ttl:       cfg.News.CacheTTL,
		http:      httpClient,
		cache:     c,
		metrics:   metrics,
		log:       log,
	}
}

type postsResponse struct {
	Results []post `json:"results"`
}

type post struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Slug        string `json:"slug"`
	PublishedAt string `json:"published_at"`
	Source      struct {
		Title string `json:"title"`
	} `json:"source"`
	Metadata struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"metadata"`
}

// Fetch returns headlines currency-tagged with coin's ticker-style name.
func (c *Client) Fetch(ctx context.Context, coin string) ([]models.NewsItem, error) {
	coin = strings.ToLower(coin)

	key := "news::" + coin
	var items []models.NewsItem
	if err := c.cache.Get(ctx, key, &items); err == nil {
		c.metrics.RecordCache("news", true)
		return items, nil
	}
	c.metrics.RecordCache("news", false)

	var resp postsResponse
	start := time.Now()
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/posts/",
		QueryParams: map[string][]string{
			"auth_token": {c.authToken},
			"public":     {"true"},
			"currencies": {coin},
		},
	}, &resp)
	c.metrics.RecordUpstream("news_posts", time.Since(start).Seconds())
	if err != nil {
		return nil, models.E(models.ErrUpstream, coin, err)
	}

	items = make([]models.NewsItem, 0, len(resp.Results))
	for _, p := range resp.Results {
		items = append(items, models.NewsItem{
			Title:       pickTitle(p),
			URL:         p.URL,
			Source:      p.Source.Title,
			Published:   p.PublishedAt,
			Description: p.Metadata.Description,
		})
	}

	if err := c.cache.Set(ctx, key, items, c.ttl); err != nil && c.log != nil {
		c.log.Warn("cache news", logger.String("coin", coin), logger.Error(err))
	}
	return items, nil
}

// pickTitle falls back through the post fields the API populates
// inconsistently.
func pickTitle(p post) string {
	if p.Title != "" {
		return p.Title
	}
	if p.Metadata.Title != "" {
		return p.Metadata.Title
	}
	if p.Slug != "" {
		return p.Slug
	}
	return "Untitled"
}
