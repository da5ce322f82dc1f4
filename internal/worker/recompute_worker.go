package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kpredict/predict-backend/internal/config"
	"github.com/kpredict/predict-backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// RecomputeBatchWindow dedupes burst traffic: submissions arriving within
	// the window collapse into one recompute per offering.
	RecomputeBatchWindow = 2 * time.Second
	RecomputePollTimeout = 1 * time.Second
)

// RecomputeWorker drains the recompute queue and runs the statistics pipeline.
type RecomputeWorker struct {
	rdb            *redis.Client
	predictService *service.PredictService
	log            zerolog.Logger
}

// NewRecomputeWorker creates a new RecomputeWorker.
func NewRecomputeWorker(rdb *redis.Client, predictService *service.PredictService, log zerolog.Logger) *RecomputeWorker {
	return &RecomputeWorker{
		rdb:            rdb,
		predictService: predictService,
		log:            log.With().Str("component", "recompute_worker").Logger(),
	}
}

// Start runs the worker loop until the context is cancelled. Queued requests
// are gathered into a dedupe window before running, so a burst of submissions
// against the same offering triggers a single recompute.
func (w *RecomputeWorker) Start(ctx context.Context) {
	w.log.Info().Msg("RecomputeWorker started")

	pending := make(map[string]*service.RecomputeRequest)
	lastFlush := time.Now()

	for {
		if len(pending) > 0 && time.Since(lastFlush) >= RecomputeBatchWindow {
			w.flush(ctx, pending)
			pending = make(map[string]*service.RecomputeRequest)
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining recomputes...")
			w.flush(context.Background(), pending)
			return

		default:
			item, err := w.rdb.BLPop(ctx, RecomputePollTimeout, config.WorkerKey.RecomputeStatisticsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var req service.RecomputeRequest
			if err := json.Unmarshal([]byte(item[1]), &req); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			key := fmt.Sprintf("%d:%s:%d", req.Year, req.Exam, req.Round)
			pending[key] = &req
		}
	}
}

func (w *RecomputeWorker) flush(ctx context.Context, pending map[string]*service.RecomputeRequest) {
	for key, req := range pending {
		start := time.Now()
		if err := w.predictService.UpdateStatistics(ctx, req.Year, req.Exam, req.Round); err != nil {
			w.log.Error().Err(err).Str("offering", key).Msg("recompute failed")
			continue
		}
		w.log.Info().
			Str("offering", key).
			Dur("took", time.Since(start)).
			Msg("recompute complete")
	}
}
