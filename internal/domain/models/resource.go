package models

import (
	"time"
)

// Resource content types accepted by the store. Parsing happens upstream;
// the store only ever sees already-extracted text.
const (
	ResourceTypePDF      = "pdf"
	ResourceTypeMarkdown = "md"
	ResourceTypeText     = "text"
)

// Resource is a stored reference document that can be attached to an input
// node as context for an execution round.
type Resource struct {
	ID            string    `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description" db:"description"`
	Type          string    `json:"type" db:"type"`
	FileName      string    `json:"file_name" db:"file_name"`
	FileSize      int64     `json:"file_size" db:"file_size"`
	ParsedContent string    `json:"parsed_content" db:"parsed_content"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// ResourceRef is the slice of a resource an input node actually carries:
// the title and the text that gets concatenated into the effective prompt.
type ResourceRef struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Ref returns the attachable reference for this resource.
func (r *Resource) Ref() ResourceRef {
	return ResourceRef{
		ID:      r.ID,
		Title:   r.Title,
		Type:    r.Type,
		Content: r.ParsedContent,
	}
}
