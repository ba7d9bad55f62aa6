package server

import (
	"net/http"

	"github.com/librarydirecto/catalogapi/internal/auth"
	"github.com/librarydirecto/catalogapi/internal/middleware"
	"github.com/librarydirecto/catalogapi/internal/services/catalog"
)

// BookHandlers serves /api/books.
type BookHandlers struct {
	books     *catalog.BookService
	validator *Validator
}

func NewBookHandlers(books *catalog.BookService, v *Validator) *BookHandlers {
	return &BookHandlers{books: books, validator: v}
}

func (h *BookHandlers) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]BookDto, 0, len(books))
	for i := range books {
		out = append(out, toBookDto(&books[i]))
	}
	middleware.WriteJSON(w, http.StatusOK, out)
}

func (h *BookHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	book, err := h.books.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toBookDto(book))
}

// Create registers a book on behalf of the calling identity.
func (h *BookHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	var createdBy *int64
	if principal, ok := auth.PrincipalFromContext(r.Context()); ok && principal.UserID != 0 {
		createdBy = &principal.UserID
	}

	book, err := h.books.Create(r.Context(), req.input(), createdBy)
	if err != nil {
		respondError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, toBookDto(book))
}

func (h *BookHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req BookRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	book, err := h.books.Update(r.Context(), id, req.input())
	if err != nil {
		respondError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toBookDto(book))
}

func (h *BookHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.books.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CategoryHandlers serves /api/categories.
type CategoryHandlers struct {
	categories *catalog.CategoryService
	validator  *Validator
}

func NewCategoryHandlers(categories *catalog.CategoryService, v *Validator) *CategoryHandlers {
	return &CategoryHandlers{categories: categories, validator: v}
}

func (h *CategoryHandlers) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]CategoryDto, 0, len(categories))
	for i := range categories {
		out = append(out, toCategoryDto(&categories[i]))
	}
	middleware.WriteJSON(w, http.StatusOK, out)
}

func (h *CategoryHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	category, err := h.categories.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toCategoryDto(category))
}

func (h *CategoryHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}
	category, err := h.categories.Create(r.Context(), req.input())
	if err != nil {
		respondError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, toCategoryDto(category))
}

func (h *CategoryHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req CategoryRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}
	category, err := h.categories.Update(r.Context(), id, req.input())
	if err != nil {
		respondError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toCategoryDto(category))
}

func (h *CategoryHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.categories.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
