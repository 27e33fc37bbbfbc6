package processors

import (
	"fmt"

	"github.com/berkes/beancount-degiro/src/logger"
	"github.com/berkes/beancount-degiro/src/models"
)

// Report accumulates the diagnostics one engine run produces. Every stage
// appends to the same report; nothing here is fatal.
type Report struct {
	Diagnostics []models.Diagnostic
}

func (r *Report) Addf(kind models.DiagnosticKind, line int, format string, args ...interface{}) {
	d := models.Diagnostic{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
	r.Diagnostics = append(r.Diagnostics, d)
	if logger.L != nil {
		logger.L.Warn("Import diagnostic", "kind", string(kind), "line", line, "message", d.Message)
	}
}
