package models

// Location is the address attached to a completed profile. A fresh row is
// inserted on every sign-up attempt; rows are not deduplicated.
type Location struct {
	ID            uint   `json:"location_id" gorm:"primaryKey;column:location_id"`
	SiDo          string `json:"si_do" gorm:"type:varchar(50)" validate:"required"`
	SiGunGu       string `json:"si_gun_gu" gorm:"type:varchar(50)" validate:"required"`
	Dong          string `json:"dong" gorm:"type:varchar(50)" validate:"required"`
	DetailAddress string `json:"detail_address" gorm:"type:varchar(255)" validate:"required"`
}
