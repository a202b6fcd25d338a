package service

import (
	"errors"
	"strings"

	"yamdb/pkg/apperror"
	"yamdb/pkg/sanitize"

	"gorm.io/gorm"
)

// notFound translates a missing row into a 404 and passes anything else through.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(what)
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// cleanText sanitizes user text and rejects what is left empty.
func cleanText(field, text string) (string, error) {
	cleaned := sanitize.Text(text)
	if cleaned == "" {
		return "", apperror.Validation(field, "this field may not be blank")
	}
	return cleaned, nil
}
