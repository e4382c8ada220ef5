package models

import "time"

// ProduceLog records a harvest quantity a user reported for a crop on a date.
type ProduceLog struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"index;not null"`
	CropName       string    `json:"crop_name" gorm:"type:varchar(100);not null" validate:"required"`
	Quantity       float64   `json:"quantity" validate:"required,gt=0"`
	ProductionDate time.Time `json:"production_date"`
}
