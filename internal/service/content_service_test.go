package service

import (
	"context"
	"errors"
	"testing"

	"procserv_training_backend/internal/model"
	"procserv_training_backend/internal/repository"
	"procserv_training_backend/internal/util"
)

func newContentService(t *testing.T) (*ContentService, *testEnv) {
	t.Helper()

	env := newTestEnv(t)
	courseRepo := repository.NewCourseRepository(env.db)
	catalog := NewLiveCatalogService(courseRepo, nil)
	storage := &StorageService{Provider: &LocalStorageProvider{}}
	return NewContentService(courseRepo, storage, catalog), env
}

func TestCreateCourseDefaultsPassingScore(t *testing.T) {
	svc, _ := newContentService(t)

	course := &model.CourseType{
		Name:          "initial",
		Title:         "Initial Certification",
		DurationHours: 7,
	}
	if err := svc.CreateCourse(context.Background(), course); err != nil {
		t.Fatalf("create course: %v", err)
	}
	if course.PassingScore != 70 {
		t.Fatalf("passing score %d, want default 70", course.PassingScore)
	}
}

func TestCreateModuleAssignsNextOrder(t *testing.T) {
	svc, env := newContentService(t)
	course := seedCourse(t, env.db, "initial", 70)
	seedModule(t, env.db, course.ID, 1)

	module := &model.CourseModule{Title: "Second", DurationMinutes: 20}
	if err := svc.CreateModule(context.Background(), course.ID, module); err != nil {
		t.Fatalf("create module: %v", err)
	}
	if module.Order != 2 {
		t.Fatalf("order %d, want 2", module.Order)
	}
	if module.CourseTypeID != course.ID {
		t.Fatalf("module bound to %q, want %q", module.CourseTypeID, course.ID)
	}
}

func TestCreateModuleUnknownCourse(t *testing.T) {
	svc, _ := newContentService(t)

	err := svc.CreateModule(context.Background(), "missing", &model.CourseModule{Title: "X"})
	if !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestCreateQuestionUnknownModule(t *testing.T) {
	svc, _ := newContentService(t)

	err := svc.CreateQuestion(context.Background(), "missing", &model.QuizQuestion{Question: "?"})
	if !errors.Is(err, util.ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}
}
