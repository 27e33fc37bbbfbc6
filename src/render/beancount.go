// Package render writes assembled transactions as beancount text.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/berkes/beancount-degiro/src/models"
)

const dateLayout = "2006-01-02"

// Renderer serializes an engine result. Output order is the transaction
// order followed by the balance assertions, matching the engine contract.
type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

func (r *Renderer) Render(w io.Writer, transactions []models.Transaction, balances []models.BalanceAssertion) error {
	for i, tx := range transactions {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := r.renderTransaction(w, tx); err != nil {
			return err
		}
	}
	for _, b := range balances {
		line := fmt.Sprintf("\n%s balance %s  %s %s\n",
			b.Date.Format(dateLayout), b.Account, b.Amount.Number, b.Amount.Currency)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderTransaction(w io.Writer, tx models.Transaction) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s * %s %s\n", tx.Date.Format(dateLayout), quote(tx.Payee), quote(tx.Narration))

	keys := make([]string, 0, len(tx.Metadata))
	for k := range tx.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %s: %s\n", k, quote(tx.Metadata[k]))
	}

	for _, p := range tx.Postings {
		sb.WriteString("  ")
		sb.WriteString(p.Account)
		if p.Amount != nil {
			fmt.Fprintf(&sb, "  %s %s", p.Amount.Number, p.Amount.Currency)
		}
		if p.Cost != nil {
			sb.WriteString(" ")
			sb.WriteString(renderCost(p.Cost))
		}
		if p.Price != nil {
			fmt.Fprintf(&sb, " @ %s %s", p.Price.Number, p.Price.Currency)
		}
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func renderCost(c *models.CostSpec) string {
	var parts []string
	if c.PerUnit != nil {
		unit := c.PerUnit.String()
		if c.Currency != "" {
			unit += " " + c.Currency
		}
		parts = append(parts, unit)
	}
	if c.Date != nil {
		parts = append(parts, c.Date.Format(dateLayout))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
