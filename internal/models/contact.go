package models

import "time"

type Contact struct {
    ID             uint   `gorm:"primaryKey"`
    FirstName      string `gorm:"size:50"`
    LastName       string `gorm:"size:50"`
    Email          string `gorm:"size:100"`
    PhoneNumber    string `gorm:"size:20"`
    Birthday       time.Time `gorm:"type:date"`
    AdditionalInfo string `gorm:"size:500"`
    UserID         uint   `gorm:"index"`
    CreatedAt      time.Time
    UpdatedAt      time.Time
}
