// Package rules supplies the language-specific pattern tables that drive
// row classification. The engine never hardcodes a pattern; swapping the
// rule set is all it takes to support another statement language.
package rules

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/berkes/beancount-degiro/src/models"
)

// RuleSet is the capability the engine consumes: per-kind description
// matching plus the locale's number and date formats.
type RuleSet interface {
	Language() string
	// Fields returns the expected CSV header fields. Empty entries stand
	// for the unnamed amount columns; matching is prefix-based per cell.
	Fields() []string
	ParseDecimal(s string) (decimal.Decimal, error)
	ParseDateTime(date, clock string) (time.Time, error)

	// Match tests a description against the rule for the given kind and
	// returns the extracted values, if the rule defines any.
	Match(kind models.Kind, description string) (*models.ExtractedValues, bool)

	// Auxiliary patterns that are not classification kinds.
	MatchCashSweep(description string) bool
	MatchSplit(description string) bool
	MatchPayout(description string) bool
}

// Get returns the rule set for a language tag.
func Get(language string) (RuleSet, error) {
	switch strings.ToLower(language) {
	case "de":
		return German(), nil
	case "en":
		return English(), nil
	default:
		return nil, fmt.Errorf("no rule set available for language: %s", language)
	}
}

// Matcher tests one description pattern.
type Matcher interface {
	Match(description string, parse func(string) (decimal.Decimal, error)) (*models.ExtractedValues, bool)
}

// PatternMatcher matches a bare regular expression and extracts nothing.
type PatternMatcher struct {
	Pattern *regexp.Regexp
}

func (m PatternMatcher) Match(description string, _ func(string) (decimal.Decimal, error)) (*models.ExtractedValues, bool) {
	if m.Pattern.MatchString(description) {
		return nil, true
	}
	return nil, false
}

// TradeMatcher matches buy/sell descriptions and extracts quantity, price,
// currency and the split flag from the numbered capture groups.
type TradeMatcher struct {
	Pattern       *regexp.Regexp
	SplitGroup    int
	QuantityGroup int
	PriceGroup    int
	CurrencyGroup int
}

func (m TradeMatcher) Match(description string, parse func(string) (decimal.Decimal, error)) (*models.ExtractedValues, bool) {
	groups := m.Pattern.FindStringSubmatch(description)
	if groups == nil {
		return nil, false
	}
	quantity, err := parse(groups[m.QuantityGroup])
	if err != nil {
		return nil, false
	}
	price, err := parse(groups[m.PriceGroup])
	if err != nil {
		return nil, false
	}
	return &models.ExtractedValues{
		Price:    price,
		Quantity: quantity,
		Currency: groups[m.CurrencyGroup],
		Split:    groups[m.SplitGroup] != "",
	}, true
}

// Set is a concrete RuleSet built from a locale definition. The language
// files in this package construct one via NewSet.
type Set struct {
	language       string
	fields         []string
	thousandsSep   string
	decimalSep     string
	datetimeLayout string
	matchers       map[models.Kind]Matcher
	cashSweep      *regexp.Regexp
	split          *regexp.Regexp
	payout         *regexp.Regexp
}

// Definition is the raw material for a language's rule set.
type Definition struct {
	Language       string
	Fields         []string
	ThousandsSep   string
	DecimalSep     string
	DatetimeLayout string
	Matchers       map[models.Kind]Matcher
	CashSweep      *regexp.Regexp
	Split          *regexp.Regexp
	Payout         *regexp.Regexp
}

func NewSet(def Definition) *Set {
	return &Set{
		language:       def.Language,
		fields:         def.Fields,
		thousandsSep:   def.ThousandsSep,
		decimalSep:     def.DecimalSep,
		datetimeLayout: def.DatetimeLayout,
		matchers:       def.Matchers,
		cashSweep:      def.CashSweep,
		split:          def.Split,
		payout:         def.Payout,
	}
}

func (s *Set) Language() string { return s.language }
func (s *Set) Fields() []string { return s.fields }

func (s *Set) ParseDecimal(v string) (decimal.Decimal, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return decimal.Decimal{}, fmt.Errorf("empty number")
	}
	v = strings.ReplaceAll(v, s.thousandsSep, "")
	if s.decimalSep != "." {
		v = strings.ReplaceAll(v, s.decimalSep, ".")
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing number %q: %w", v, err)
	}
	return d, nil
}

func (s *Set) ParseDateTime(date, clock string) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := time.Parse(s.datetimeLayout, date+" "+strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing datetime %q %q: %w", date, clock, err)
	}
	return t, nil
}

func (s *Set) Match(kind models.Kind, description string) (*models.ExtractedValues, bool) {
	m, ok := s.matchers[kind]
	if !ok {
		return nil, false
	}
	return m.Match(description, s.ParseDecimal)
}

func (s *Set) MatchCashSweep(description string) bool { return s.cashSweep.MatchString(description) }
func (s *Set) MatchSplit(description string) bool     { return s.split.MatchString(description) }
func (s *Set) MatchPayout(description string) bool    { return s.payout.MatchString(description) }
