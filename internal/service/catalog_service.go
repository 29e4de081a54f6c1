package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"procserv_training_backend/internal/model"
	"procserv_training_backend/internal/repository"
	"procserv_training_backend/internal/util"
	"procserv_training_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	catalogCacheKey = "courses:catalog"
	catalogCacheTTL = 24 * time.Hour
)

// CatalogService serves the course catalog. The two implementations are
// picked once at construction: a live store-backed catalog, or the fixed
// JBCC offering when no database is configured.
type CatalogService interface {
	ListCourses(ctx context.Context) ([]model.CourseType, error)
	ListModules(ctx context.Context, courseTypeID string) ([]model.CourseModule, error)
}

// LiveCatalogService reads from the store, with an optional redis cache in
// front of the course listing.
type LiveCatalogService struct {
	CourseRepo *repository.CourseRepository
	Redis      *redis.Client
}

func NewLiveCatalogService(courseRepo *repository.CourseRepository, rdb *redis.Client) *LiveCatalogService {
	return &LiveCatalogService{
		CourseRepo: courseRepo,
		Redis:      rdb,
	}
}

func (s *LiveCatalogService) ListCourses(ctx context.Context) ([]model.CourseType, error) {
	if s.Redis != nil {
		val, err := s.Redis.Get(ctx, catalogCacheKey).Result()
		if err == nil {
			var cached []model.CourseType
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
				return cached, nil
			}
		}
	}

	courses, err := s.CourseRepo.FindAll()
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(courses); err == nil {
			if err := s.Redis.Set(ctx, catalogCacheKey, payload, catalogCacheTTL).Err(); err != nil {
				logger.Log.Warn("catalog cache write failed", zap.Error(err))
			}
		}
	}

	return courses, nil
}

func (s *LiveCatalogService) ListModules(ctx context.Context, courseTypeID string) ([]model.CourseModule, error) {
	if _, err := s.CourseRepo.FindByID(courseTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return s.CourseRepo.FindModules(courseTypeID)
}

// InvalidateCache drops the cached listing after admin content writes.
func (s *LiveCatalogService) InvalidateCache(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, catalogCacheKey).Err(); err != nil {
		logger.Log.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}

// StaticCatalogService is the degraded-mode catalog: the two JBCC courses,
// no modules, nothing persisted.
type StaticCatalogService struct{}

func NewStaticCatalogService() *StaticCatalogService {
	return &StaticCatalogService{}
}

func (s *StaticCatalogService) ListCourses(ctx context.Context) ([]model.CourseType, error) {
	return []model.CourseType{
		{
			UUIDBase:      model.UUIDBase{ID: "1"},
			Name:          "initial",
			Title:         "Initial Process Server Certification",
			Description:   "7-hour JBCC approved initial certification course",
			DurationHours: 7,
			PassingScore:  70,
		},
		{
			UUIDBase:      model.UUIDBase{ID: "2"},
			Name:          "renewal",
			Title:         "Process Server Continuing Education",
			Description:   "8-hour JBCC approved continuing education course",
			DurationHours: 8,
			PassingScore:  70,
		},
	}, nil
}

func (s *StaticCatalogService) ListModules(ctx context.Context, courseTypeID string) ([]model.CourseModule, error) {
	return []model.CourseModule{}, nil
}
