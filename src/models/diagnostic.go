package models

import "fmt"

// DiagnosticKind classifies the non-fatal anomalies the engine surfaces.
type DiagnosticKind string

const (
	DiagUnparseableField     DiagnosticKind = "UNPARSEABLE_FIELD"
	DiagCorrelationAmbiguity DiagnosticKind = "CORRELATION_AMBIGUITY"
	DiagUnclassifiedRow      DiagnosticKind = "UNCLASSIFIED_ROW"
)

// Diagnostic records one anomaly for human review. Diagnostics never abort
// an import; the engine prefers an auditable, imperfect ledger over losing
// rows.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Line    int            `json:"line"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s: %s", d.Line, d.Kind, d.Message)
}
