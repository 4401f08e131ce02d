package dbhelper

import (
	"fmt"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wardrobeapi/models"
	"wardrobeapi/services"
)

func DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		services.GetEnv("DB_USERNAME", ""),
		services.GetEnv("DB_PASSWORD", ""),
		services.GetEnv("DB_HOST", ""),
		services.GetEnv("DB_PORT", "5432"),
		services.GetEnv("DB_NAME", ""),
	)
}

func SetupDB() *gorm.DB {
	db, err := gorm.Open(postgres.Open(DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		panic(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(300)
	sqlDB.SetConnMaxLifetime(time.Minute * 5)

	Migrate(db, &models.UserAccount{})
	Migrate(db, &models.UserPushToken{})
	Migrate(db, &models.UserPreference{})
	Migrate(db, &models.WardrobeItem{})
	Migrate(db, &models.ImageItem{})
	Migrate(db, &models.SavedOutfit{})

	return db
}

func SetupTestDB() *gorm.DB {
	os.Setenv("DB_USERNAME", "wardrobe")
	os.Setenv("DB_PASSWORD", "wardrobe")
	os.Setenv("DB_HOST", "localhost")
	os.Setenv("DB_NAME", "wardrobe")
	os.Setenv("DB_PORT", "5432")
	os.Setenv("JWT_SECRET", "test-secret")
	return SetupDB()
}
