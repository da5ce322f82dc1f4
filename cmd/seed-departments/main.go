package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kpredict/predict-backend/internal/config"
	"github.com/kpredict/predict-backend/internal/database"
	"github.com/kpredict/predict-backend/internal/logger"
	"github.com/kpredict/predict-backend/internal/model"
	"github.com/kpredict/predict-backend/internal/profile"
	"github.com/kpredict/predict-backend/internal/repository"
)

// seed-departments loads the recruiting-track reference data every exam
// family ranks against. Inserts are idempotent, so re-running is safe.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	departmentRepo := repository.NewDepartmentRepository(pool)

	fmt.Println("=== Seeding Departments ===")

	type seed struct {
		exam string
		unit string
		name string
	}

	seeds := []seed{
		// 5급 공채 행정직
		{profile.ExamHaengsi, "행정", "일반행정"},
		{profile.ExamHaengsi, "행정", "재경"},
		{profile.ExamHaengsi, "행정", "국제통상"},
		{profile.ExamHaengsi, "행정", "법무행정"},
		{profile.ExamHaengsi, "행정", "교육행정"},
		{profile.ExamHaengsi, "행정", "사회복지"},
		{profile.ExamHaengsi, "행정", "교정"},
		{profile.ExamHaengsi, "행정", "보호"},
		{profile.ExamHaengsi, "행정", "검찰"},
		{profile.ExamHaengsi, "행정", "출입국관리"},
		// 5급 공채 기술직
		{profile.ExamHaengsi, "기술", "일반기계"},
		{profile.ExamHaengsi, "기술", "전기"},
		{profile.ExamHaengsi, "기술", "화공"},
		{profile.ExamHaengsi, "기술", "일반토목"},
		{profile.ExamHaengsi, "기술", "건축"},
		{profile.ExamHaengsi, "기술", "전산개발"},
		{profile.ExamHaengsi, "기술", "데이터"},
		// 7급 공채
		{profile.ExamChilgeup, "행정", "일반행정"},
		{profile.ExamChilgeup, "행정", "우정사업본부"},
		{profile.ExamChilgeup, "행정", "재경"},
		{profile.ExamChilgeup, "행정", "외무영사"},
		{profile.ExamChilgeup, "행정", "감사"},
		{profile.ExamChilgeup, "행정", "세무"},
		{profile.ExamChilgeup, "행정", "관세"},
		{profile.ExamChilgeup, "행정", "통계"},
		{profile.ExamChilgeup, "행정", "교정"},
		{profile.ExamChilgeup, "행정", "검찰"},
		// 경위공채
		{profile.ExamGyeongwi, "경위", "일반"},
		{profile.ExamGyeongwi, "경위", "세무회계"},
		{profile.ExamGyeongwi, "경위", "사이버"},
		// 프라임 모의고사 (PSAT-shaped rounds share the 5급 tracks)
		{profile.ExamPrime, "행정", "일반행정"},
		{profile.ExamPrime, "행정", "재경"},
	}

	successCount := 0
	for i, s := range seeds {
		d := &model.Department{
			Exam:  s.exam,
			Unit:  s.unit,
			Name:  s.name,
			Order: i + 1,
		}
		if err := departmentRepo.Create(ctx, d); err != nil {
			fmt.Printf("Error creating department %s/%s: %v\n", s.exam, s.name, err)
			continue
		}
		successCount++
	}

	fmt.Printf("\nSeed completed! Successfully added %d/%d departments.\n", successCount, len(seeds))
}
