package repository

import (
    "context"
    "errors"

    "gorm.io/gorm"

    "github.com/olehb/contactly/internal/models"
)

type UserRepository struct {
    DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
    return &UserRepository{DB: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
    var user models.User
    err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return &user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
    var user models.User
    err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
    var user models.User
    err := r.DB.WithContext(ctx).First(&user, id).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
    return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID uint, hash string) error {
    return r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
        Update("password", hash).Error
}

func (r *UserRepository) SetConfirmed(ctx context.Context, userID uint) error {
    return r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
        Update("confirmed", true).Error
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, userID uint, url string) error {
    return r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
        Update("avatar", url).Error
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
    var users []models.User
    err := r.DB.WithContext(ctx).Order("id").Limit(limit).Offset(offset).Find(&users).Error
    return users, err
}
