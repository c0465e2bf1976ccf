package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// ListFilter narrows List. An empty CarNo matches every record.
type ListFilter struct {
	CarNo string
}

// Repository is the Document Store contract. List returns records newest
// first, ties broken by descending id.
type Repository interface {
	Insert(ctx context.Context, form *LabForm) error
	List(ctx context.Context, filter ListFilter) ([]LabForm, error)
	// Delete reports whether a record with id existed and was removed.
	Delete(ctx context.Context, id snowflake.ID) (bool, error)
}
