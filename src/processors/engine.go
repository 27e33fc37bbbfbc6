package processors

import (
	"github.com/berkes/beancount-degiro/src/accounts"
	"github.com/berkes/beancount-degiro/src/models"
	"github.com/berkes/beancount-degiro/src/rules"
)

// Options parametrize one reconciliation engine.
type Options struct {
	HomeCurrency            string
	FXMatchTolerancePercent float64
	Templates               accounts.Templates
}

// Result is everything one engine run derives from a statement.
type Result struct {
	Transactions []models.Transaction
	Balances     []models.BalanceAssertion
	Diagnostics  []models.Diagnostic
}

// Engine orchestrates the reconciliation pipeline:
// sanitize -> correlate -> classify -> assemble.
type Engine struct {
	sanitizer  *Sanitizer
	correlator *Correlator
	classifier *Classifier
	assembler  *Assembler
}

func NewEngine(rs rules.RuleSet, resolver *accounts.Resolver, opts Options) *Engine {
	builder := NewPostingBuilder(resolver, opts.Templates)
	return &Engine{
		sanitizer:  NewSanitizer(rs),
		correlator: NewCorrelator(rs, opts.HomeCurrency, opts.FXMatchTolerancePercent),
		classifier: NewClassifier(rs),
		assembler:  NewAssembler(builder, resolver, opts.Templates),
	}
}

// Run processes sanitized statement rows into balanced transactions plus
// balance assertions. All anomalies are collected as diagnostics; Run
// itself never fails.
func (e *Engine) Run(rows []models.RawRow) Result {
	rep := &Report{}

	rows = e.sanitizer.Sanitize(rows, rep)
	rows = e.correlator.Correlate(rows, rep)

	classes := make([]models.Classification, len(rows))
	for i := range rows {
		classes[i] = e.classifier.Classify(&rows[i])
	}

	transactions, balances := e.assembler.Assemble(rows, classes, rep)
	return Result{
		Transactions: transactions,
		Balances:     balances,
		Diagnostics:  rep.Diagnostics,
	}
}
