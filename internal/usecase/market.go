package usecase

import (
	"context"
	"sort"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	"CoinPulse/pkg/logger"
)

const topMoversCount = 3

// MarketUseCase composes market data views on top of the exchange client.
type MarketUseCase struct {
	market repository.MarketData
	log    *logger.Logger
}

// NewMarketUseCase creates the market use case.
func NewMarketUseCase(market repository.MarketData, log *logger.Logger) *MarketUseCase {
	return &MarketUseCase{market: market, log: log}
}

// Live returns the current snapshot for one coin.
func (u *MarketUseCase) Live(ctx context.Context, coin string) (models.LiveQuote, error) {
	return u.market.Live(ctx, coin)
}

// LiveMulti returns snapshots for the requested coins, or the full configured
// set when none are given. Per-coin failures land in the Errors map instead
// of failing the batch.
func (u *MarketUseCase) LiveMulti(ctx context.Context, coins []string) models.MultiQuote {
	if len(coins) == 0 {
		coins = u.market.Coins()
	}

	out := models.MultiQuote{Quotes: make(map[string]models.LiveQuote)}
	for _, coin := range coins {
		quote, err := u.market.Live(ctx, coin)
		if err != nil {
			if out.Errors == nil {
				out.Errors = make(map[string]string)
			}
			out.Errors[coin] = err.Error()
			if u.log != nil {
				u.log.Warn("live quote failed", logger.String("coin", coin), logger.Error(err))
			}
			continue
		}
		out.Quotes[coin] = quote
	}
	return out
}

// History returns raw candles for a coin.
func (u *MarketUseCase) History(ctx context.Context, coin string, days int, interval string) ([]models.Candle, error) {
	iv, err := repository.NormalizeInterval(interval)
	if err != nil {
		return nil, err
	}
	return u.market.History(ctx, coin, days, iv)
}

// Trend reduces a coin's history to aligned dates and closes.
func (u *MarketUseCase) Trend(ctx context.Context, coin string, days int, interval string) (models.TrendSeries, error) {
	candles, err := u.History(ctx, coin, days, interval)
	if err != nil {
		return models.TrendSeries{}, err
	}
	series := models.TrendSeries{
		Dates:  make([]string, 0, len(candles)),
		Prices: make([]float64, 0, len(candles)),
	}
	for _, c := range candles {
		series.Dates = append(series.Dates, c.Date)
		series.Prices = append(series.Prices, c.Close)
	}
	return series, nil
}

// TopMovers ranks the requested coins by 24h change, or the full configured
// set when none are given. Coins whose quote cannot be fetched are skipped so
// one bad symbol does not empty the board.
func (u *MarketUseCase) TopMovers(ctx context.Context, coins []string) models.TopMovers {
	if len(coins) == 0 {
		coins = u.market.Coins()
	}

	movers := make([]models.Mover, 0, len(coins))
	for _, coin := range coins {
		quote, err := u.market.Live(ctx, coin)
		if err != nil {
			if u.log != nil {
				u.log.Warn("top movers skip", logger.String("coin", coin), logger.Error(err))
			}
			continue
		}
		movers = append(movers, models.Mover{Coin: coin, Change: quote.PercentChange})
	}

	sort.Slice(movers, func(i, j int) bool { return movers[i].Change > movers[j].Change })

	n := topMoversCount
	if n > len(movers) {
		n = len(movers)
	}
	gainers := make([]models.Mover, n)
	copy(gainers, movers[:n])

	losers := make([]models.Mover, n)
	for i := 0; i < n; i++ {
		losers[i] = movers[len(movers)-1-i]
	}
	return models.TopMovers{Gainers: gainers, Losers: losers}
}
