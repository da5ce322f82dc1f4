package main

import (
	"context"
	"flag"
	"time"

	"github.com/kpredict/predict-backend/internal/config"
	"github.com/kpredict/predict-backend/internal/database"
	"github.com/kpredict/predict-backend/internal/logger"
	"github.com/kpredict/predict-backend/internal/repository"
	"github.com/kpredict/predict-backend/internal/service"
)

// update-statistics runs one full statistics recompute for an offering from
// the command line, bypassing the worker queue. Useful for backfills and for
// re-running an offering after fixing its data.
func main() {
	var (
		year  int
		exam  string
		round int
	)
	flag.IntVar(&year, "year", 0, "Exam year (required)")
	flag.StringVar(&exam, "exam", "", "Exam family: haengsi, chilgeup, gyeongwi, prime (required)")
	flag.IntVar(&round, "round", 0, "Round number (0 for official exams)")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if year == 0 || exam == "" {
		flag.Usage()
		log.Fatal().Msg("-year and -exam are required")
	}

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Run ───────────────────────────────────────────────────────────
	examRepo := repository.NewExamRepository(pool)
	studentRepo := repository.NewStudentRepository(pool, log)
	departmentRepo := repository.NewDepartmentRepository(pool)
	answerCountRepo := repository.NewAnswerCountRepository(pool)

	predictService := service.NewPredictService(cfg, rdb, log, examRepo, studentRepo, departmentRepo, answerCountRepo)

	start := time.Now()
	if err := predictService.UpdateStatistics(ctx, year, exam, round); err != nil {
		log.Fatal().Err(err).
			Int("year", year).Str("exam", exam).Int("round", round).
			Msg("Recompute failed")
	}

	log.Info().
		Int("year", year).Str("exam", exam).Int("round", round).
		Dur("took", time.Since(start)).
		Msg("Recompute complete")
}
