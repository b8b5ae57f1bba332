package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
)

// DefaultMatchThreshold: минимальная косинусная близость, ниже которой ассеты не возвращаются.
const DefaultMatchThreshold = 0.5

// SimilaritySearch находит ассеты каталога, похожие на текстовый запрос.
type SimilaritySearch struct {
	embedder  Embedder
	repo      SimilarityRepository
	threshold float64
	logger    logger.Logger
}

func NewSimilaritySearch(embedder Embedder, repo SimilarityRepository, threshold float64, logger logger.Logger) *SimilaritySearch {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}

	return &SimilaritySearch{
		embedder:  embedder,
		repo:      repo,
		threshold: threshold,
		logger:    logger,
	}
}

// Search возвращает не более limit ассетов с близостью не ниже порога, по убыванию близости.
// Любая ошибка оборачивает e.ErrSearch.
func (s *SimilaritySearch) Search(ctx context.Context, query string, limit int) ([]domain.Asset, error) {
	const op = "SimilaritySearch.Search"

	if limit <= 0 {
		return []domain.Asset{}, nil
	}

	if strings.TrimSpace(query) == "" {
		return nil, e.Wrap(op, fmt.Errorf("%w: empty query", e.ErrSearch))
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrSearch, err))
	}

	assets, err := s.repo.SearchSimilar(ctx, vector, s.threshold, limit)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrSearch, err))
	}

	filtered := make([]domain.Asset, 0, len(assets))
	for _, asset := range assets {
		if asset.SimilarityScore > s.threshold {
			filtered = append(filtered, asset)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].SimilarityScore > filtered[j].SimilarityScore
	})

	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	s.logger.Debugf("%s: %d assets matched (threshold %.2f)", op, len(filtered), s.threshold)
	return filtered, nil
}
