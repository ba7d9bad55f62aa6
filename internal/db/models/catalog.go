package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Category groups books. Names are unique.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Name        string    `bun:"name,notnull,unique,type:varchar(100)"`
	Description *string   `bun:"description"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Book is a catalog entry. ISBNs are unique.
type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID              int64     `bun:"id,pk,autoincrement"`
	ISBN            string    `bun:"isbn,notnull,unique,type:varchar(13)"`
	Title           string    `bun:"title,notnull"`
	Author          string    `bun:"author,notnull"`
	Publisher       *string   `bun:"publisher"`
	PublicationYear *int      `bun:"publication_year"`
	Description     *string   `bun:"description"`
	CoverImage      *string   `bun:"cover_image"`
	TotalCopies     int       `bun:"total_copies,notnull"`
	AvailableCopies int       `bun:"available_copies,notnull"`
	CategoryID      int64     `bun:"category_id,notnull"`
	CreatedByID     *int64    `bun:"created_by"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	Category  *Category `bun:"rel:belongs-to,join:category_id=id"`
	CreatedBy *User     `bun:"rel:belongs-to,join:created_by=id"`
}
