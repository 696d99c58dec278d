package binance

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	"CoinPulse/internal/service/ratelimit"
	"CoinPulse/pkg/cache"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	"CoinPulse/pkg/logger"
	"CoinPulse/pkg/util"
)

const (
	rateKey   = "binance"
	liveScope = "live"
	histScope = "history"
)

// Client serves quotes and candles from the Binance REST API. Upstream calls
// are rate limited and results are cached for a short TTL so bursts of
// identical requests collapse onto one exchange round trip.
type Client struct {
	baseURL    string
	coins      map[string]string
	canonical  []string
	ttl        time.Duration
	rateCap    float64
	rateRefill float64

	http    *xhttp.Client
	cache   cache.Service
	limiter *ratelimit.Limiter
	metrics repository.Metrics
	log     *logger.Logger
}

// New creates a Binance client from configuration.
func New(cfg *config.Config, httpClient *xhttp.Client, c cache.Service, limiter *ratelimit.Limiter, metrics repository.Metrics, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.Binance.BaseURL, "/"),
		coins:      cfg.Binance.Coins,
		canonical:  canonicalCoins(cfg.Binance.Coins),
		ttl:        cfg.Binance.CacheTTL,
		rateCap:    cfg.Binance.RateCapacity,
		rateRefill: cfg.Binance.RateRefill,
		http:       httpClient,
		cache:      c,
		limiter:    limiter,
		metrics:    metrics,
		log:        log,
	}
}

// canonicalCoins picks one name per symbol, preferring the longest so full
// names win over ticker aliases, and returns them sorted.
func canonicalCoins(coins map[string]string) []string {
	best := make(map[string]string)
	for name, symbol := range coins {
		if cur, ok := best[symbol]; !ok || len(name) > len(cur) || (len(name) == len(cur) && name < cur) {
			best[symbol] = name
		}
	}
	out := make([]string, 0, len(best))
	for _, name := range best {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Coins returns the canonical coin names this client can serve.
func (c *Client) Coins() []string {
	out := make([]string, len(c.canonical))
	copy(out, c.canonical)
	return out
}

// Symbol resolves a coin name or ticker alias to its exchange symbol.
func (c *Client) Symbol(coin string) (string, error) {
	symbol, ok := c.coins[strings.ToLower(coin)]
	if !ok {
		return "", models.Ef(models.ErrUnknownAsset, strings.ToLower(coin), "no symbol mapping")
	}
	return symbol, nil
}

type tickerResponse struct {
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
}

// Live returns the 24h ticker snapshot for coin.
func (c *Client) Live(ctx context.Context, coin string) (models.LiveQuote, error) {
	coin = strings.ToLower(coin)
	symbol, err := c.Symbol(coin)
	if err != nil {
		return models.LiveQuote{}, err
	}

	key := "live::" + symbol
	var quote models.LiveQuote
	if err := c.cache.Get(ctx, key, &quote); err == nil {
		c.metrics.RecordCache(liveScope, true)
		quote.Coin = coin
		return quote, nil
	}
	c.metrics.RecordCache(liveScope, false)

	if !c.limiter.Allow(rateKey, c.rateCap, c.rateRefill) {
		return models.LiveQuote{}, models.Ef(models.ErrUpstream, coin, "rate limited")
	}

	var resp tickerResponse
	start := time.Now()
	err = c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/ticker/24hr",
		QueryParams: map[string][]string{"symbol": {symbol}},
	}, &resp)
	c.metrics.RecordUpstream("ticker_24hr", time.Since(start).Seconds())
	if err != nil {
		return models.LiveQuote{}, models.E(models.ErrUpstream, coin, err)
	}

	price, err := strconv.ParseFloat(resp.LastPrice, 64)
	if err != nil {
		return models.LiveQuote{}, models.E(models.ErrUpstream, coin, fmt.Errorf("parse lastPrice: %w", err))
	}
	change, err := strconv.ParseFloat(resp.PriceChangePercent, 64)
	if err != nil {
		return models.LiveQuote{}, models.E(models.ErrUpstream, coin, fmt.Errorf("parse priceChangePercent: %w", err))
	}
	volume, err := strconv.ParseFloat(resp.QuoteVolume, 64)
	if err != nil {
		return models.LiveQuote{}, models.E(models.ErrUpstream, coin, fmt.Errorf("parse quoteVolume: %w", err))
	}

	quote = models.LiveQuote{Coin: coin, Price: price, PercentChange: change, Volume24h: volume}
	c.metrics.RecordLastPrice(symbol, price)
	if err := c.cache.Set(ctx, key, quote, c.ttl); err != nil && c.log != nil {
		c.log.Warn("cache live quote", logger.String("symbol", symbol), logger.Error(err))
	}
	return quote, nil
}

// History returns up to the exchange's kline limit of candles for coin,
// oldest first.
func (c *Client) History(ctx context.Context, coin string, days int, interval repository.Interval) ([]models.Candle, error) {
	coin = strings.ToLower(coin)
	symbol, err := c.Symbol(coin)
	if err != nil {
		return nil, err
	}
	limit := klineLimit(interval, days)

	key := fmt.Sprintf("hist::%s::%d::%s", symbol, days, interval)
	var candles []models.Candle
	if err := c.cache.Get(ctx, key, &candles); err == nil {
		c.metrics.RecordCache(histScope, true)
		return candles, nil
	}
	c.metrics.RecordCache(histScope, false)

	if !c.limiter.Allow(rateKey, c.rateCap, c.rateRefill) {
		return nil, models.Ef(models.ErrUpstream, coin, "rate limited")
	}

	var rows [][]interface{}
	start := time.Now()
	err = c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/klines",
		QueryParams: map[string][]string{
			"symbol":   {symbol},
			"interval": {string(interval)},
			"limit":    {strconv.Itoa(limit)},
		},
	}, &rows)
	c.metrics.RecordUpstream("klines", time.Since(start).Seconds())
	if err != nil {
		return nil, models.E(models.ErrUpstream, coin, err)
	}

	candles = make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		candle, ok := parseKline(row)
		if !ok {
			continue
		}
		candles = append(candles, candle)
	}

	if err := c.cache.Set(ctx, key, candles, c.ttl); err != nil && c.log != nil {
		c.log.Warn("cache history", logger.String("symbol", symbol), logger.Error(err))
	}
	return candles, nil
}

// klineLimit maps a day span to the exchange's per-request kline count.
func klineLimit(interval repository.Interval, days int) int {
	switch interval {
	case repository.Interval1d:
		if days < 1 {
			days = 1
		}
		if days > 1000 {
			days = 1000
		}
		return days
	case repository.Interval1h:
		limit := days * 24
		if limit > 1000 {
			limit = 1000
		}
		if limit < 1 {
			limit = 1
		}
		return limit
	default:
		return 500
	}
}

// parseKline converts one raw kline row. Rows with unexpected shapes are
// skipped rather than failing the whole response.
func parseKline(row []interface{}) (models.Candle, bool) {
	if len(row) < 6 {
		return models.Candle{}, false
	}
	ms, ok := row[0].(float64)
	if !ok {
		return models.Candle{}, false
	}
	vals := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		s, ok := row[i].(string)
		if !ok {
			return models.Candle{}, false
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, false
		}
		vals[i-1] = v
	}

	t := time.UnixMilli(int64(ms)).UTC()
	return models.Candle{
		Date:      util.DateOf(t),
		Timestamp: util.TimestampOf(t),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, true
}
