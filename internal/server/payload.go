package server

import (
	"github.com/librarydirecto/catalogapi/internal/db/models"
	"github.com/librarydirecto/catalogapi/internal/services/catalog"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type RegisterStaffRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"     validate:"required"`
	Role     string `json:"role"     validate:"required,oneof=LIBRARIAN ADMIN"`
}

// UserDto never carries the password hash.
type UserDto struct {
	ID      int64   `json:"id"`
	Email   string  `json:"email"`
	Name    *string `json:"name"`
	Role    string  `json:"role"`
	Picture *string `json:"picture"`
}

type CategoryRequest struct {
	Name        string  `json:"name"        validate:"required,max=100"`
	Description *string `json:"description"`
}

type CategoryDto struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type BookRequest struct {
	ISBN            string  `json:"isbn"            validate:"required,max=13"`
	Title           string  `json:"title"           validate:"required"`
	Author          string  `json:"author"          validate:"required"`
	Publisher       *string `json:"publisher"`
	PublicationYear *int    `json:"publicationYear"`
	Description     *string `json:"description"`
	CoverImage      *string `json:"coverImage"`
	TotalCopies     *int    `json:"totalCopies"     validate:"required,gte=0"`
	CategoryID      *int64  `json:"categoryId"      validate:"required"`
}

type BookDto struct {
	ID              int64        `json:"id"`
	ISBN            string       `json:"isbn"`
	Title           string       `json:"title"`
	Author          string       `json:"author"`
	Publisher       *string      `json:"publisher"`
	PublicationYear *int         `json:"publicationYear"`
	Description     *string      `json:"description"`
	CoverImage      *string      `json:"coverImage"`
	TotalCopies     int          `json:"totalCopies"`
	AvailableCopies int          `json:"availableCopies"`
	Category        *CategoryDto `json:"category"`
	CreatedByName   *string      `json:"createdByName"`
}

func toUserDto(u *models.User) UserDto {
	return UserDto{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Role:    string(u.Role),
		Picture: u.Picture,
	}
}

func toCategoryDto(c *models.Category) CategoryDto {
	return CategoryDto{ID: c.ID, Name: c.Name, Description: c.Description}
}

func toBookDto(b *models.Book) BookDto {
	dto := BookDto{
		ID:              b.ID,
		ISBN:            b.ISBN,
		Title:           b.Title,
		Author:          b.Author,
		Publisher:       b.Publisher,
		PublicationYear: b.PublicationYear,
		Description:     b.Description,
		CoverImage:      b.CoverImage,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
	}
	if b.Category != nil && b.Category.ID != 0 {
		category := toCategoryDto(b.Category)
		dto.Category = &category
	}
	// Left joins leave an empty creator when the column is NULL.
	if b.CreatedBy != nil && b.CreatedBy.ID != 0 {
		name := b.CreatedBy.DisplayName()
		dto.CreatedByName = &name
	}
	return dto
}

func (r CategoryRequest) input() catalog.CategoryInput {
	return catalog.CategoryInput{Name: r.Name, Description: r.Description}
}

// input must only be called after validation, which guarantees the required
// pointers are set.
func (r BookRequest) input() catalog.BookInput {
	return catalog.BookInput{
		ISBN:            r.ISBN,
		Title:           r.Title,
		Author:          r.Author,
		Publisher:       r.Publisher,
		PublicationYear: r.PublicationYear,
		Description:     r.Description,
		CoverImage:      r.CoverImage,
		TotalCopies:     *r.TotalCopies,
		CategoryID:      *r.CategoryID,
	}
}
