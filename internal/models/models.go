package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"  json:"email"`
	PasswordHash string    `gorm:"not null"              json:"-"`
	FirstName    string    `gorm:"not null;default:''"   json:"firstName"`
	LastName     string    `gorm:"not null;default:''"   json:"lastName"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Name        string    `gorm:"not null"              json:"name"`
	ImageURL    string    `gorm:"not null;default:''"   json:"imageUrl"`
	SortOrder   int       `gorm:"not null;default:0;index" json:"sortOrder"`
	IsPublished bool      `gorm:"not null;default:false;index" json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Service struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	CategoryID  uuid.UUID `gorm:"type:uuid;index;not null" json:"categoryId"`
	Name        string    `gorm:"not null"              json:"name"`
	Description string    `gorm:"not null;default:''"   json:"description"`
	Price       float64   `gorm:"not null;default:0"    json:"price"`
	ImageURL    string    `gorm:"not null;default:''"   json:"imageUrl"`
	Slug        string    `gorm:"uniqueIndex;not null"  json:"slug"`
	IsPublished bool      `gorm:"not null;default:false;index" json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (s *Service) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// All lists every model the store migrates.
func All() []any {
	return []any{&User{}, &Category{}, &Service{}}
}
