// File: /jobs/catalog_stats_job.go
package jobs

import (
	"context"
	"log/slog"
	"time"

	"filmogram-api/metrics"
	"filmogram-api/services"
)

// CatalogStats is one snapshot published by CatalogStatsJob.
type CatalogStats struct {
	Films        int
	Likes        int
	TopFilmID    int64
	TopFilmLikes int
}

// CatalogStatsJob periodically recomputes the popularity ranking and publishes
// catalog gauges.
type CatalogStatsJob struct {
	ranking  *services.PopularityRanking
	interval time.Duration
	logger   *slog.Logger
}

func NewCatalogStatsJob(ranking *services.PopularityRanking, interval time.Duration, logger *slog.Logger) *CatalogStatsJob {
	return &CatalogStatsJob{
		ranking:  ranking,
		interval: interval,
		logger:   logger.With("job", "catalog_stats"),
	}
}

// Run collects stats immediately and then on every tick until ctx is done.
func (j *CatalogStatsJob) Run(ctx context.Context) error {
	j.logger.Info("catalog stats job started", "interval", j.interval)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.collect(ctx)
	for {
		select {
		case <-ticker.C:
			j.collect(ctx)
		case <-ctx.Done():
			j.logger.Info("catalog stats job stopped")
			return nil
		}
	}
}

func (j *CatalogStatsJob) collect(ctx context.Context) {
	stats, err := j.Collect(ctx)
	if err != nil {
		j.logger.Error("catalog stats failed", "error", err)
		return
	}
	if stats.Films == 0 {
		j.logger.Debug("catalog is empty")
		return
	}
	j.logger.Info("catalog stats",
		"films", stats.Films,
		"likes", stats.Likes,
		"top_film_id", stats.TopFilmID,
		"top_film_likes", stats.TopFilmLikes,
	)
}

// Collect computes one snapshot and publishes it to the gauges.
func (j *CatalogStatsJob) Collect(ctx context.Context) (CatalogStats, error) {
	films, err := j.ranking.AllRankedFilms(ctx)
	if err != nil {
		return CatalogStats{}, err
	}

	stats := CatalogStats{Films: len(films)}
	for _, f := range films {
		stats.Likes += f.LikesCount
	}
	if len(films) > 0 {
		stats.TopFilmID = films[0].ID
		stats.TopFilmLikes = films[0].LikesCount
	}

	metrics.CatalogFilms.Set(float64(stats.Films))
	metrics.CatalogLikes.Set(float64(stats.Likes))
	metrics.TopFilmLikes.Set(float64(stats.TopFilmLikes))
	return stats, nil
}
