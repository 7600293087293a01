// File: /services/popularity_service.go
package services

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"filmogram-api/metrics"
	"filmogram-api/models"
	"filmogram-api/repositories"
	"golang.org/x/sync/singleflight"
)

// DefaultPopularCount is the page size used when no count is requested.
const DefaultPopularCount = 10

// PopularityRanking orders films by how many distinct users like them, most
// liked first. Films with equal counts are ordered by ascending id.
//
// Concurrent readers share one computation per ledger generation, so a caller
// whose like has already been recorded never receives a ranking computed
// before it.
type PopularityRanking struct {
	dir    repositories.Directory
	ledger *LikeLedger
	logger *slog.Logger

	group singleflight.Group
}

func NewPopularityRanking(dir repositories.Directory, ledger *LikeLedger, logger *slog.Logger) *PopularityRanking {
	return &PopularityRanking{
		dir:    dir,
		ledger: ledger,
		logger: loggerOrDefault(logger).With("component", "popularity_ranking"),
	}
}

// TopPopular returns the ids of the count most liked films. A count of zero
// means DefaultPopularCount; a negative count is an InvalidArgument error.
func (p *PopularityRanking) TopPopular(ctx context.Context, count int) ([]int64, error) {
	films, err := p.TopPopularFilms(ctx, count)
	if err != nil {
		return nil, err
	}
	return filmIDs(films), nil
}

// TopPopularFilms is TopPopular returning the film records with LikesCount set.
func (p *PopularityRanking) TopPopularFilms(ctx context.Context, count int) ([]models.Film, error) {
	if count < 0 {
		return nil, models.InvalidArgument("popularity", "TopPopular",
			fmt.Sprintf("count must not be negative, got %d", count))
	}
	if count == 0 {
		count = DefaultPopularCount
	}

	ranked, err := p.ranked(ctx)
	if err != nil {
		return nil, err
	}
	if len(ranked) > count {
		ranked = ranked[:count]
	}
	return ranked, nil
}

// AllRankedByPopularity returns every film id in popularity order.
func (p *PopularityRanking) AllRankedByPopularity(ctx context.Context) ([]int64, error) {
	films, err := p.AllRankedFilms(ctx)
	if err != nil {
		return nil, err
	}
	return filmIDs(films), nil
}

// AllRankedFilms returns every film in popularity order with LikesCount set.
func (p *PopularityRanking) AllRankedFilms(ctx context.Context) ([]models.Film, error) {
	return p.ranked(ctx)
}

// ranked computes the ordering once for all concurrent callers of the same
// generation and hands each caller its own copy. The shared computation is
// detached from any one caller's cancellation; a caller that gives up only
// stops waiting.
func (p *PopularityRanking) ranked(ctx context.Context) ([]models.Film, error) {
	key := fmt.Sprintf("ranking:%d", p.ledger.Generation())
	ch := p.group.DoChan(key, func() (interface{}, error) {
		return p.compute(context.WithoutCancel(ctx))
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	shared := res.Val.([]models.Film)
	out := make([]models.Film, len(shared))
	for i, f := range shared {
		f.Genres = f.Genres.Clone()
		out[i] = f
	}
	return out, nil
}

func (p *PopularityRanking) compute(ctx context.Context) ([]models.Film, error) {
	start := time.Now()
	defer func() { metrics.RankingDuration.Observe(time.Since(start).Seconds()) }()

	films, err := p.dir.ListFilms(ctx)
	if err != nil {
		return nil, fmt.Errorf("popularity.rank: %w", err)
	}
	counts, err := p.ledger.Counts(ctx, filmIDs(films))
	if err != nil {
		return nil, fmt.Errorf("popularity.rank: %w", err)
	}

	for i := range films {
		films[i].LikesCount = counts[films[i].ID]
	}
	SortByPopularity(films)

	p.logger.Debug("ranking computed", "films", len(films), "took", time.Since(start))
	return films, nil
}

// SortByPopularity orders films by LikesCount descending, then ID ascending.
func SortByPopularity(films []models.Film) {
	slices.SortFunc(films, func(a, b models.Film) int {
		if c := cmp.Compare(b.LikesCount, a.LikesCount); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func filmIDs(films []models.Film) []int64 {
	ids := make([]int64, len(films))
	for i, f := range films {
		ids[i] = f.ID
	}
	return ids
}
