package invoice

import (
	"errors"
	"fmt"
)

// ErrInvoice is wrapped by every error the parser reports about page content.
var ErrInvoice = errors.New("invoice parse error")

// ParseError describes why an order page could not be turned into an OrderDetail.
type ParseError struct {
	// Field is the OrderDetail field being extracted, e.g. "date" or "items".
	Field   string
	Message string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets callers match any ParseError with errors.Is(err, ErrInvoice).
func (e *ParseError) Unwrap() error {
	return ErrInvoice
}

func parseErrorf(field, format string, args ...any) *ParseError {
	return &ParseError{Field: field, Message: fmt.Sprintf(format, args...)}
}
