package app

import "errors"

var (
	ErrContentNotFound = errors.New("content not found")

	// ErrForbidden is returned when a record exists but belongs to a
	// different user.
	ErrForbidden = errors.New("forbidden")

	ErrProductServiceRequired = errors.New("productService is required")
	ErrContentTypeRequired    = errors.New("contentType is required")
	ErrLanguageRequired       = errors.New("language is required")
	ErrToneRequired           = errors.New("tone is required")
	ErrGeneratedTextRequired  = errors.New("generatedText is required")
)
