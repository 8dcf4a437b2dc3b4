package topic

import (
	"fmt"
	"sort"
	"strings"
)

// Proposal is a candidate topic submitted for a duplicate check.
type Proposal struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ValidationError reports caller input that cannot be searched.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", key, e.Fields[key]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// BuildQuery joins the non-blank title and description of a proposal with a
// blank line. A proposal with neither is rejected.
func BuildQuery(p Proposal) (string, error) {
	parts := make([]string, 0, 2)
	if strings.TrimSpace(p.Title) != "" {
		parts = append(parts, p.Title)
	}
	if strings.TrimSpace(p.Description) != "" {
		parts = append(parts, p.Description)
	}
	if len(parts) == 0 {
		return "", NewValidationError("title", "title or description is required")
	}
	return strings.Join(parts, "\n\n"), nil
}
