// Package forms collects field-level validation for the row entry screens.
package forms

import (
	"fmt"
	"strconv"
	"strings"

	"garagedesk/models"
)

// ValidationError is one field failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects multiple field errors.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

func (ve *ValidationErrors) Error() string {
	msgs := make([]string, len(ve.Errors))
	for i, e := range ve.Errors {
		msgs[i] = e.Field + ": " + e.Message
	}
	return strings.Join(msgs, "; ")
}

// RequireField checks a required string field is non-empty.
func RequireField(ve *ValidationErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, "is required")
	}
}

// ValidateEnum checks a field is one of allowed values.
func ValidateEnum(ve *ValidationErrors, field, value string, allowed []string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	ve.Add(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
}

// ParseQuantity parses a quantity form value. Blank parses to zero; anything
// non-numeric records an error on the field.
func ParseQuantity(ve *ValidationErrors, field, raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	qty, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		ve.Add(field, "must be a whole number")
		return 0
	}
	if qty < 0 {
		ve.Add(field, "must not be negative")
	}
	return qty
}

// ParseProgress parses an optional 0-100 progress form value. Blank means the
// row carries no progress.
func ParseProgress(ve *ValidationErrors, field, raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	p, err := strconv.Atoi(raw)
	if err != nil {
		ve.Add(field, "must be a whole number")
		return nil
	}
	if p < 0 || p > 100 {
		ve.Add(field, "must be between 0 and 100")
		return nil
	}
	return &p
}

// ValidateRowComplete checks a row has everything its kind requires. The add
// button uses it to keep a new row out until the previous one is filled in.
func ValidateRowComplete(ve *ValidationErrors, kind models.RowKind, row models.WorkItemRow) {
	switch kind {
	case models.KindWorkDetail:
		RequireField(ve, "description", row.Description)
		RequireField(ve, "status", row.Status)
		ValidateEnum(ve, "status", row.Status, models.StatusesFor(kind))
	default:
		RequireField(ve, "part_number", row.PartNumber)
		if row.Quantity <= 0 {
			ve.Add("quantity", "must be a positive whole number")
		}
		ValidateEnum(ve, "status", row.Status, models.StatusesFor(kind))
	}
}
