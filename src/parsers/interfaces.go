package parsers

import (
	"io"

	"github.com/berkes/beancount-degiro/src/models"
)

// StatementParser turns a raw statement file into typed rows.
type StatementParser interface {
	// Identify reports whether the header record belongs to this parser's
	// statement format.
	Identify(header []string) bool
	Parse(file io.Reader) ([]models.RawRow, error)
}
