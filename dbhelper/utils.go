package dbhelper

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"wardrobeapi/models"
)

func SetupCleaner(db *gorm.DB) func() {
	return func() {
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.SavedOutfit{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.WardrobeItem{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ImageItem{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.UserPreference{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.UserPushToken{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.UserAccount{})
	}
}

func Migrate(db *gorm.DB, model interface{}) {
	if err := db.AutoMigrate(model); err != nil {
		log.Fatal().Err(err).Msgf("error while migrating %T", model)
	}
}
