package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/business_site/internal/models"
)

// NormalizeEmail is the single email identity policy: surrounding spaces
// are dropped and the address is compared case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *GormRepo) FindAccountByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindAccountByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) ListAccounts(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("email ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) CreateAccount(ctx context.Context, u *models.User) error {
	u.Email = NormalizeEmail(u.Email)
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := emailTaken(tx, u.Email, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return ErrUserAlreadyExist
		}
		return uniqueViolation(tx.Create(u).Error, ErrUserAlreadyExist)
	})
}

// SaveAccount writes every column of u. Changing the email to one held by
// another account fails with ErrUserAlreadyExist.
func (r *GormRepo) SaveAccount(ctx context.Context, u *models.User) error {
	u.Email = NormalizeEmail(u.Email)
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := emailTaken(tx, u.Email, u.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrUserAlreadyExist
		}
		return uniqueViolation(tx.Save(u).Error, ErrUserAlreadyExist)
	})
}

func (r *GormRepo) DeleteAccountByEmail(ctx context.Context, email string) error {
	res := r.DB.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func emailTaken(tx *gorm.DB, email string, except uuid.UUID) (bool, error) {
	var count int64
	q := tx.Model(&models.User{}).Where("email = ?", email)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
