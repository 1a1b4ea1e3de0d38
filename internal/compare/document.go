package compare

import (
	"strings"

	"github.com/google/uuid"

	"simcheck/internal/normalize"
)

// Document is one submission in a batch. The normalized text is derived once
// at construction and never changes.
type Document struct {
	ID          string
	DisplayName string
	Filename    string
	RawText     string

	normalized string
}

func NewDocument(displayName, filename, rawText string) *Document {
	return NewDocumentWithID(uuid.NewString(), displayName, filename, rawText)
}

func NewDocumentWithID(id, displayName, filename, rawText string) *Document {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = strings.TrimSpace(filename)
	}
	return &Document{
		ID:          id,
		DisplayName: displayName,
		Filename:    filename,
		RawText:     rawText,
		normalized:  normalize.Normalize(rawText),
	}
}

func (d *Document) NormalizedText() string {
	return d.normalized
}
