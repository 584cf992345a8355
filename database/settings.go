package database

import (
	"datatrans/models"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errEmptySettingKey = errors.New("empty setting key")

// GetSetting returns a persisted key/value setting.
// ok is false when the key does not exist.
func GetSetting(db *gorm.DB, key string) (value string, ok bool, err error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, errEmptySettingKey
	}

	var s models.AppSetting
	if err := db.Where(&models.AppSetting{Key: key}).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return s.Value, true, nil
}

// SetSetting persists a key/value setting, replacing any previous value.
func SetSetting(db *gorm.DB, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errEmptySettingKey
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models.AppSetting{Key: key, Value: strings.TrimSpace(value)}).Error
}

// DeleteSetting removes a persisted setting if it exists.
func DeleteSetting(db *gorm.DB, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errEmptySettingKey
	}

	return db.Where(&models.AppSetting{Key: key}).Delete(&models.AppSetting{}).Error
}
