package app

import "errors"

var (
	ErrProductServiceRequired = errors.New("productService is required")
	ErrContentTypeRequired    = errors.New("contentType is required")
	ErrLanguageRequired       = errors.New("language is required")
	ErrToneRequired           = errors.New("tone is required")
)
