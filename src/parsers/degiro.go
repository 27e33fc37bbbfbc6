package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/berkes/beancount-degiro/src/logger"
	"github.com/berkes/beancount-degiro/src/models"
	"github.com/berkes/beancount-degiro/src/rules"
)

// ErrHeaderMismatch means the file's header line does not belong to the
// active rule set's statement format. This is the fatal MalformedInput
// path: nothing in the file can be trusted.
var ErrHeaderMismatch = errors.New("statement header does not match expected fields")

const fieldCount = 12

// DegiroParser reads a DEGIRO account statement export into raw rows.
// Locale-specific number and date parsing is delegated to the rule set.
type DegiroParser struct {
	rules    rules.RuleSet
	encoding string
}

func NewDegiroParser(rs rules.RuleSet, encoding string) *DegiroParser {
	return &DegiroParser{rules: rs, encoding: encoding}
}

// Identify compares the header record against the rule set's field names.
// Matching is prefix-based per cell ("Uhrze" accepts "Uhrzeit"); empty
// expected fields (the unnamed amount columns) accept anything.
func (p *DegiroParser) Identify(header []string) bool {
	for i, want := range p.rules.Fields() {
		if want == "" {
			continue
		}
		if i >= len(header) {
			return false
		}
		if !strings.HasPrefix(strings.TrimSpace(header[i]), want) {
			return false
		}
	}
	return true
}

func (p *DegiroParser) Parse(file io.Reader) ([]models.RawRow, error) {
	reader := csv.NewReader(p.decode(file))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if !p.Identify(header) {
		return nil, fmt.Errorf("%w: got %q", ErrHeaderMismatch, strings.Join(header, ","))
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read all CSV records: %w", err)
	}

	var rows []models.RawRow
	for i, record := range records {
		line := i + 2 // header occupies line 1
		if len(record) < fieldCount {
			logger.L.Warn("Skipping short record", "line", line, "fields", len(record))
			continue
		}
		rows = append(rows, p.parseRecord(record, line))
	}
	return rows, nil
}

func (p *DegiroParser) parseRecord(record []string, line int) models.RawRow {
	row := models.RawRow{
		Line:            line,
		ValueDate:       strings.TrimSpace(record[2]),
		Product:         strings.TrimSpace(record[3]),
		ISIN:            strings.TrimSpace(record[4]),
		Description:     strings.TrimSpace(record[5]),
		ChangeCurrency:  strings.TrimSpace(record[7]),
		BalanceCurrency: strings.TrimSpace(record[9]),
		OrderID:         strings.TrimSpace(record[11]),
	}

	// A missing timestamp is legitimate: it marks a continuation fragment
	// that the sanitizer folds into the preceding row.
	if ts, err := p.rules.ParseDateTime(record[0], record[1]); err == nil {
		row.Timestamp = &ts
	} else if strings.TrimSpace(record[0]) != "" {
		logger.L.Warn("Unparseable booking date", "line", line, "date", record[0], "time", record[1], "error", err)
	}

	row.FX = p.parseOptionalDecimal(record[6], "FX", line)
	row.Change = p.parseOptionalDecimal(record[8], "change", line)
	row.Balance = p.parseOptionalDecimal(record[10], "balance", line)
	return row
}

func (p *DegiroParser) parseOptionalDecimal(raw, field string, line int) *decimal.Decimal {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	d, err := p.rules.ParseDecimal(raw)
	if err != nil {
		logger.L.Warn("Unparseable number", "line", line, "field", field, "value", raw, "error", err)
		return nil
	}
	return &d
}

func (p *DegiroParser) decode(r io.Reader) io.Reader {
	switch strings.ToLower(p.encoding) {
	case "", "utf-8", "utf8":
		return r
	case "iso-8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case "iso-8859-15", "latin9":
		return transform.NewReader(r, charmap.ISO8859_15.NewDecoder())
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder())
	default:
		logger.L.Warn("Unknown file encoding, reading as UTF-8", "encoding", p.encoding)
		return r
	}
}
