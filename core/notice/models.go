package notice

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Notice categories
type Category string

const (
	CategoryGeneral  Category = "general"
	CategoryAcademic Category = "academic"
	CategoryEvent    Category = "event"
	CategoryHoliday  Category = "holiday"
)

type Notice struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Category  Category  `json:"category" db:"category"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewNotice contains information needed to publish a new Notice.
type NewNotice struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category" validate:"omitempty,noticecategory"`
}

func (nn *NewNotice) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	if nn.Category == "" {
		nn.Category = string(CategoryGeneral)
	}
	return validate.Struct(nn)
}

// UpdateNotice defines what information may be provided to modify an existing Notice.
type UpdateNotice struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category" validate:"omitempty,noticecategory"`
}

func (un *UpdateNotice) Validate(orig Notice, validate *validator.Validate) error {
	if title := core.CleanString(un.Title); title != "" {
		un.Title = title
	} else {
		un.Title = orig.Title
	}
	if un.Content == "" {
		un.Content = orig.Content
	}
	if un.Category == "" {
		un.Category = string(orig.Category)
	}
	return validate.Struct(un)
}
