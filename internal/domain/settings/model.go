package settings

import "time"

// GlobalID is the primary key of the only settings row.
const GlobalID = "global"

type AppSettings struct {
	ID                 string    `gorm:"type:text;primaryKey"`
	AcceptingResponses bool      `gorm:"not null;default:true"`
	UpdatedAt          time.Time `gorm:"not null"`
}

func (AppSettings) TableName() string {
	return "app_settings"
}

// Defaults is what a fresh chapter starts with.
func Defaults() AppSettings {
	return AppSettings{ID: GlobalID, AcceptingResponses: true}
}
