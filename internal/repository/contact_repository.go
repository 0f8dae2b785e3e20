package repository

import (
    "context"
    "errors"
    "time"

    "gorm.io/gorm"

    "github.com/olehb/contactly/internal/models"
)

type ContactRepository struct {
    DB *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
    return &ContactRepository{DB: db}
}

func (r *ContactRepository) List(ctx context.Context, userID uint, limit, offset int) ([]models.Contact, error) {
    var contacts []models.Contact
    err := r.DB.WithContext(ctx).Where("user_id = ?", userID).
        Order("id").Limit(limit).Offset(offset).Find(&contacts).Error
    return contacts, err
}

func (r *ContactRepository) Get(ctx context.Context, userID, contactID uint) (*models.Contact, error) {
    var contact models.Contact
    err := r.DB.WithContext(ctx).
        Where("id = ? AND user_id = ?", contactID, userID).First(&contact).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return &contact, nil
}

func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) error {
    return r.DB.WithContext(ctx).Create(contact).Error
}

func (r *ContactRepository) Update(ctx context.Context, contact *models.Contact) error {
    return r.DB.WithContext(ctx).Save(contact).Error
}

func (r *ContactRepository) Delete(ctx context.Context, userID, contactID uint) (bool, error) {
    res := r.DB.WithContext(ctx).
        Where("id = ? AND user_id = ?", contactID, userID).Delete(&models.Contact{})
    return res.RowsAffected > 0, res.Error
}

func (r *ContactRepository) Search(ctx context.Context, userID uint, query string) ([]models.Contact, error) {
    var contacts []models.Contact
    pattern := "%" + query + "%"
    err := r.DB.WithContext(ctx).
        Where("user_id = ?", userID).
        Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?", pattern, pattern, pattern).
        Order("id").Find(&contacts).Error
    return contacts, err
}

// UpcomingBirthdays returns contacts whose birthday falls within the next
// `days` days, wrapping correctly over the end of the year.
func (r *ContactRepository) UpcomingBirthdays(ctx context.Context, userID uint, days int, now time.Time) ([]models.Contact, error) {
    var contacts []models.Contact
    start := now.YearDay()
    end := start + days
    yearLen := 365
    if isLeapYear(now.Year()) {
        yearLen = 366
    }
    q := r.DB.WithContext(ctx).Where("user_id = ?", userID)
    if end <= yearLen {
        q = q.Where("EXTRACT(DOY FROM birthday) BETWEEN ? AND ?", start, end)
    } else {
        q = q.Where("EXTRACT(DOY FROM birthday) >= ? OR EXTRACT(DOY FROM birthday) <= ?", start, end-yearLen)
    }
    err := q.Order("id").Find(&contacts).Error
    return contacts, err
}

func isLeapYear(year int) bool {
    return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
