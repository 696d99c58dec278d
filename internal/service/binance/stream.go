package binance

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	"CoinPulse/pkg/cache"
	"CoinPulse/pkg/config"
	"CoinPulse/pkg/logger"
)

// Stream keeps live quotes warm by subscribing to the exchange's miniTicker
// feed and writing each update into the same cache keys the REST path reads.
type Stream struct {
	url       string
	coins     map[string]string
	ttl       time.Duration
	reconnect time.Duration

	cache   cache.Service
	metrics repository.Metrics
	log     *logger.Logger
}

// NewStream creates a stream for the configured coins.
func NewStream(cfg *config.Config, c cache.Service, metrics repository.Metrics, log *logger.Logger) *Stream {
	return &Stream{
		url:       cfg.Binance.WebSocketURL,
		coins:     cfg.Binance.Coins,
		ttl:       cfg.Binance.CacheTTL,
		reconnect: cfg.Binance.ReconnectDelay,
		cache:     c,
		metrics:   metrics,
		log:       log,
	}
}

type subscribeMessage struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}

type miniTickerEvent struct {
	EventType   string `json:"e"`
	Symbol      string `json:"s"`
	Close       string `json:"c"`
	Open        string `json:"o"`
	QuoteVolume string `json:"q"`
}

// Run connects and consumes events until ctx is cancelled, reconnecting with
// a fixed delay after any failure.
func (s *Stream) Run(ctx context.Context) {
	for {
		if err := s.consume(ctx); err != nil && s.log != nil {
			s.log.Warn("stream disconnected", logger.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnect):
		}
	}
}

func (s *Stream) consume(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.WriteJSON(subscribeMessage{
		Method: "SUBSCRIBE",
		Params: s.streams(),
		ID:     1,
	}); err != nil {
		return err
	}
	if s.log != nil {
		s.log.Info("stream connected", logger.Int("subscriptions", len(s.streams())))
	}

	// Unblock ReadMessage when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.handle(ctx, data)
	}
}

// streams lists one miniTicker subscription per distinct symbol.
func (s *Stream) streams() []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(s.coins))
	for _, symbol := range s.coins {
		if seen[symbol] {
			continue
		}
		seen[symbol] = true
		out = append(out, strings.ToLower(symbol)+"@miniTicker")
	}
	return out
}

func (s *Stream) handle(ctx context.Context, data []byte) {
	var ev miniTickerEvent
	if err := json.Unmarshal(data, &ev); err != nil || ev.EventType != "24hrMiniTicker" {
		return
	}

	price, err := strconv.ParseFloat(ev.Close, 64)
	if err != nil {
		return
	}
	open, err := strconv.ParseFloat(ev.Open, 64)
	if err != nil || open == 0 {
		return
	}
	volume, err := strconv.ParseFloat(ev.QuoteVolume, 64)
	if err != nil {
		return
	}

	quote := models.LiveQuote{
		Coin:          s.coinFor(ev.Symbol),
		Price:         price,
		PercentChange: (price - open) / open * 100,
		Volume24h:     volume,
	}
	s.metrics.RecordLastPrice(ev.Symbol, price)
	if err := s.cache.Set(ctx, "live::"+ev.Symbol, quote, s.ttl); err != nil && s.log != nil {
		s.log.Warn("cache stream quote", logger.String("symbol", ev.Symbol), logger.Error(err))
	}
}

// coinFor maps a symbol back to its longest configured name.
func (s *Stream) coinFor(symbol string) string {
	best := ""
	for name, sym := range s.coins {
		if sym == symbol && len(name) > len(best) {
			best = name
		}
	}
	return best
}
