package usecase

import (
	"context"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
)

// NewsUseCase exposes coin headlines.
type NewsUseCase struct {
	source repository.NewsSource
}

// NewNewsUseCase creates the news use case.
func NewNewsUseCase(source repository.NewsSource) *NewsUseCase {
	return &NewsUseCase{source: source}
}

// ForCoin returns headlines for a coin.
func (u *NewsUseCase) ForCoin(ctx context.Context, coin string) ([]models.NewsItem, error) {
	return u.source.Fetch(ctx, coin)
}
