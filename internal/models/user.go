package models

import (
    "time"
)

const (
    RoleUser      = "user"
    RoleModerator = "moderator"
    RoleAdmin     = "admin"
)

type User struct {
    ID        uint   `gorm:"primaryKey"`
    Username  string `gorm:"uniqueIndex;size:50"`
    Email     string `gorm:"uniqueIndex;size:100"`
    Password  string
    Role      string `gorm:"default:user"`
    Avatar    string `gorm:"size:255"`
    Confirmed bool   `gorm:"default:false"`
    Active    bool   `gorm:"default:true"`
    CreatedAt time.Time
    UpdatedAt time.Time
}

func IsValidRole(role string) bool {
    switch role {
    case RoleUser, RoleModerator, RoleAdmin:
        return true
    }
    return false
}
