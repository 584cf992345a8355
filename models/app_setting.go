package models

import "time"

// Setting keys written by the services.
const (
	SettingLastObsoletePurge = "obsoletes.last_purge"
	SettingLastPurgeCount    = "obsoletes.last_purge_count"
)

// AppSetting stores small persistent key/value settings next to the translation tables.
type AppSetting struct {
	Key       string    `gorm:"primaryKey;size:128" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
