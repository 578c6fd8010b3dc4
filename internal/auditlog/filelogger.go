// Package auditlog provides audit sink observers notified after committed mutations.
package auditlog

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-bank/ledger/internal/bankservice"
	"github.com/go-bank/ledger/internal/domain"
)

var _ bankservice.Observer = (*FileLogger)(nil)

// FileLogger appends one line per committed deposit or withdraw leg to a file.
type FileLogger struct {
	file   *os.File
	logger zerolog.Logger
}

// NewFileLogger opens the file at path in append mode and returns the logger.
func NewFileLogger(path string) (*FileLogger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	logger := zerolog.New(file).With().Timestamp().Logger()

	return &FileLogger{
		file:   file,
		logger: logger,
	}, nil
}

// OnTransaction writes the committed leg to the audit file.
func (f *FileLogger) OnTransaction(number string, operation domain.Operation, amount decimal.Decimal) {
	f.logger.Info().
		Str("account", number).
		Str("operation", string(operation)).
		Str("amount", amount.String()).
		Msg("transaction")
}

// Close closes the underlying file.
func (f *FileLogger) Close() error {
	return f.file.Close()
}
