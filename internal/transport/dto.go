package transport

import "time"

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type TokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	AccessExp    time.Time `json:"accessExp"`
	RefreshExp   time.Time `json:"refreshExp,omitzero"`
}

type CreateUserRequest struct {
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=8,max=256"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName"  validate:"max=100"`
	IsAdmin   bool   `json:"isAdmin"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email"     validate:"omitempty,email"`
	Password  *string `json:"password"  validate:"omitempty,min=8,max=256"`
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName"  validate:"omitempty,max=100"`
	IsAdmin   *bool   `json:"isAdmin"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"        validate:"required,max=200"`
	ImageURL    string `json:"imageUrl"    validate:"omitempty,url"`
	SortOrder   int    `json:"sortOrder"`
	IsPublished bool   `json:"isPublished"`
}

type PatchCategoryRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=1,max=200"`
	ImageURL    *string `json:"imageUrl"    validate:"omitempty,url"`
	SortOrder   *int    `json:"sortOrder"`
	IsPublished *bool   `json:"isPublished"`
}

type CreateServiceRequest struct {
	CategoryID  string  `json:"categoryId"  validate:"required,uuid"`
	Name        string  `json:"name"        validate:"required,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Price       float64 `json:"price"       validate:"gte=0"`
	ImageURL    string  `json:"imageUrl"    validate:"omitempty,url"`
	Slug        string  `json:"slug"        validate:"omitempty,max=200"`
	IsPublished bool    `json:"isPublished"`
}

type PatchServiceRequest struct {
	CategoryID  *string  `json:"categoryId"  validate:"omitempty,uuid"`
	Name        *string  `json:"name"        validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price"       validate:"omitempty,gte=0"`
	ImageURL    *string  `json:"imageUrl"    validate:"omitempty,url"`
	Slug        *string  `json:"slug"        validate:"omitempty,max=200"`
	IsPublished *bool    `json:"isPublished"`
}

type CategoryView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

type ServiceView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	Slug        string  `json:"slug"`
}

type CategoryWithServices struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	SortOrder int           `json:"sortOrder"`
	Services  []ServiceView `json:"services"`
}

type ServiceDetail struct {
	ServiceView
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
}
