package processors

import (
	"github.com/berkes/beancount-degiro/src/models"
	"github.com/berkes/beancount-degiro/src/rules"
)

// classificationOrder is the canonical rule order. It must be preserved
// exactly: patterns overlap (the split-flagged buy/sell variants) and the
// first match wins.
var classificationOrder = []models.Kind{
	models.KindLiquidityFund,
	models.KindFee,
	models.KindDeposit,
	models.KindBuy,
	models.KindSell,
	models.KindInterest,
	models.KindDividend,
	models.KindDividendTax,
	models.KindCurrencyExchange,
}

// Classifier resolves a row's transaction kind from its description via
// the injected rule set.
type Classifier struct {
	rules rules.RuleSet
}

func NewClassifier(rs rules.RuleSet) *Classifier {
	return &Classifier{rules: rs}
}

func (c *Classifier) Classify(row *models.RawRow) models.Classification {
	for _, kind := range classificationOrder {
		if vals, ok := c.rules.Match(kind, row.Description); ok {
			return models.Classification{Kind: kind, Values: vals}
		}
	}
	return models.Classification{Kind: models.KindUnclassified}
}
