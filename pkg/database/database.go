package database

import (
	"fmt"
	"log"

	"procserv_training_backend/internal/config"
	"procserv_training_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the connection and, when migrate is set, runs schema
// migration and course seeding. Release deployments skip migration unless
// forced from the command line.
func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if migrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")

		if err := SeedCourses(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.CourseType{},
		&model.CourseModule{},
		&model.QuizQuestion{},
		&model.Enrollment{},
		&model.ModuleProgress{},
		&model.QuizAttempt{},
		&model.PaymentTransaction{},
	)
}

// SeedCourses inserts the two JBCC course offerings on a fresh database.
func SeedCourses(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.CourseType{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []model.CourseType{
		{
			Name:                "initial",
			Title:               "Initial Process Server Certification",
			Description:         "7-hour JBCC approved initial certification course for Texas Process Servers",
			DurationHours:       7,
			PassingScore:        70,
			EthicsHoursRequired: 0,
		},
		{
			Name:                "renewal",
			Title:               "Process Server Continuing Education",
			Description:         "8-hour JBCC approved continuing education course for Texas Process Server renewal",
			DurationHours:       8,
			PassingScore:        70,
			EthicsHoursRequired: 2,
		},
	}
	for i := range defaults {
		if err := db.Create(&defaults[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
