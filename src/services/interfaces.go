package services

import (
	"errors"
	"io"

	"github.com/berkes/beancount-degiro/src/models"
)

var (
	ErrParsingFailed = errors.New("statement parsing failed")
)

// ImportResult is what one statement conversion produces.
type ImportResult struct {
	Beancount        string              `json:"beancount"`
	TransactionCount int                 `json:"transactionCount"`
	BalanceCount     int                 `json:"balanceCount"`
	Diagnostics      []models.Diagnostic `json:"diagnostics"`
	DurationMs       int64               `json:"durationMs"`
}

// ImportService converts an uploaded statement into beancount text.
type ImportService interface {
	ProcessImport(fileReader io.Reader, filename string) (*ImportResult, error)
	LatestResult() (*ImportResult, bool)
}
