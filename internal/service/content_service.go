package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"procserv_training_backend/internal/model"
	"procserv_training_backend/internal/repository"
	"procserv_training_backend/internal/util"
	"procserv_training_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContentService covers admin-side course authoring: courses, modules,
// quiz questions and module video uploads.
type ContentService struct {
	CourseRepo *repository.CourseRepository
	Storage    *StorageService
	Catalog    CatalogService
}

func NewContentService(courseRepo *repository.CourseRepository, storage *StorageService, catalog CatalogService) *ContentService {
	return &ContentService{
		CourseRepo: courseRepo,
		Storage:    storage,
		Catalog:    catalog,
	}
}

func (s *ContentService) CreateCourse(ctx context.Context, course *model.CourseType) error {
	if course.PassingScore == 0 {
		course.PassingScore = 70
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *ContentService) CreateModule(ctx context.Context, courseTypeID string, module *model.CourseModule) error {
	if _, err := s.CourseRepo.FindByID(courseTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return err
	}

	module.CourseTypeID = courseTypeID
	if module.Order == 0 {
		count, err := s.CourseRepo.CountModules(courseTypeID)
		if err != nil {
			return err
		}
		module.Order = int(count) + 1
	}

	return s.CourseRepo.CreateModule(module)
}

func (s *ContentService) CreateQuestion(ctx context.Context, moduleID string, question *model.QuizQuestion) error {
	if _, err := s.CourseRepo.FindModuleByID(moduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrModuleNotFound
		}
		return err
	}

	question.ModuleID = moduleID
	return s.CourseRepo.CreateQuestion(question)
}

// UploadModuleVideo stores the uploaded file, probes its duration and
// attaches it to the module. The probed duration overrides whatever the
// module carried before.
func (s *ContentService) UploadModuleVideo(ctx context.Context, moduleID string, file *multipart.FileHeader) (*model.CourseModule, error) {
	module, err := s.CourseRepo.FindModuleByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "module-video-*"+filepath.Ext(file.Filename))
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		return nil, err
	}

	if info, err := util.ProbeVideo(tmp.Name()); err != nil {
		logger.Log.Warn("video probe failed, keeping stored duration",
			zap.String("module_id", moduleID), zap.Error(err))
	} else if info.Duration > 0 {
		module.DurationMinutes = int(info.Duration / 60)
		if module.DurationMinutes == 0 {
			module.DurationMinutes = 1
		}
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("videos/%s%s", module.ID, filepath.Ext(file.Filename))
	contentType := file.Header.Get("Content-Type")
	url, err := s.Storage.Upload(ctx, objectName, tmp, file.Size, contentType)
	if err != nil {
		return nil, err
	}

	module.VideoURL = url
	if err := s.CourseRepo.UpdateModule(module); err != nil {
		return nil, err
	}

	s.invalidateCatalog(ctx)
	return module, nil
}

func (s *ContentService) invalidateCatalog(ctx context.Context) {
	if live, ok := s.Catalog.(*LiveCatalogService); ok {
		live.InvalidateCache(ctx)
	}
}
