package service

import (
	"encoding/json"
	"testing"
	"time"

	"procserv_training_backend/internal/config"
	"procserv_training_backend/internal/model"
	"procserv_training_backend/internal/repository"
	"procserv_training_backend/pkg/logger"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.InitLogger("test")
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.CourseType{},
		&model.CourseModule{},
		&model.QuizQuestion{},
		&model.Enrollment{},
		&model.ModuleProgress{},
		&model.QuizAttempt{},
		&model.PaymentTransaction{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:     "test-secret-test-secret-test-secret",
			ExpireTime: time.Hour,
		},
		Payment: config.PaymentConfig{
			CoursePrices: map[string]int64{
				"initial": 15000,
				"renewal": 12000,
			},
		},
	}
}

func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()

	user := &model.User{
		Email:     email,
		FirstName: "Pat",
		LastName:  "Server",
		Password:  "not-a-real-hash",
		Role:      model.Student,
		IsActive:  true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedCourse(t *testing.T, db *gorm.DB, name string, passingScore int) *model.CourseType {
	t.Helper()

	course := &model.CourseType{
		Name:          name,
		Title:         "Course " + name,
		DurationHours: 7,
		PassingScore:  passingScore,
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return course
}

func seedModule(t *testing.T, db *gorm.DB, courseID string, order int) *model.CourseModule {
	t.Helper()

	module := &model.CourseModule{
		CourseTypeID:    courseID,
		Title:           "Module",
		DurationMinutes: 30,
		Order:           order,
	}
	if err := db.Create(module).Error; err != nil {
		t.Fatalf("seed module: %v", err)
	}
	return module
}

// seedQuestion adds a four-option question whose correct answer is index 0.
func seedQuestion(t *testing.T, db *gorm.DB, moduleID string) *model.QuizQuestion {
	t.Helper()

	options, err := json.Marshal([]string{"right", "wrong", "wrong", "wrong"})
	if err != nil {
		t.Fatalf("marshal options: %v", err)
	}
	question := &model.QuizQuestion{
		ModuleID:      moduleID,
		Question:      "Which option is right?",
		Options:       datatypes.JSON(options),
		CorrectAnswer: 0,
	}
	if err := db.Create(question).Error; err != nil {
		t.Fatalf("seed question: %v", err)
	}
	return question
}

type testEnv struct {
	db          *gorm.DB
	auth        *AuthService
	enrollment  *EnrollmentService
	progress    *ProgressService
	certificate *CertificateService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := openTestDB(t)
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	return &testEnv{
		db:          db,
		auth:        NewAuthService(userRepo, testConfig()),
		enrollment:  NewEnrollmentService(enrollmentRepo, courseRepo, progressRepo),
		progress:    NewProgressService(enrollmentRepo, courseRepo, progressRepo),
		certificate: NewCertificateService(enrollmentRepo, courseRepo),
	}
}
