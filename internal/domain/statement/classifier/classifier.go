// Package classifier assigns a category, Riba flag, confidence tier and reason to a
// statement line using an ordered list of rules. The first matching rule wins, so
// explicit interest language always outranks generic fee or income language.
package classifier

import (
	"fmt"
	"regexp"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/model"
)

// Result is the outcome of classifying one line.
type Result struct {
	Category   model.Category
	IsRiba     bool
	Confidence model.Confidence
	Reason     string
}

// Rule pairs a case-insensitive pattern with the result it produces.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Result  Result
}

// Fallback is returned when no rule matches. It carries no reason.
var Fallback = Result{
	Category:   model.CategoryShopping,
	IsRiba:     false,
	Confidence: model.ConfidenceLow,
}

// DefaultRules returns the built-in rule cascade in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "explicit_interest",
			Pattern: regexp.MustCompile(`(?i)` +
				`\b(?:credit|gross|net|paid|debit|accrued|overdraft|loan|mortgage|card|savings)\s+interest\b` +
				`|\binterest\s+(?:charged?|charges|paid|earned|accrued|credited|debited|payment|on)\b` +
				`|\bfinance\s+charges?\b|\bnsf\s+fee\b|\bnon[- ]sufficient\s+funds\b` +
				`|\bcash\s+advance\s+fees?\b|\bannual\s+percentage\s+rate\b` +
				// APR only as the uppercase rate label next to a percentage, never the month.
				`|(?-i:\bAPR\b)\s*:?\s*\d+(?:[.,]\d+)?\s*%|\d\s*%\s*(?-i:APR\b)`),
			Result: Result{model.CategoryRiba, true, model.ConfidenceHigh, "Explicit interest or finance charge"},
		},
		{
			Name:    "penalty",
			Pattern: regexp.MustCompile(`(?i)\blate\s+(?:payment\s+)?fees?\b|\bpenalt(?:y|ies)\b|\barrears\b|\bpast\s+due\b|\boverdue\b`),
			Result:  Result{model.CategoryRiba, true, model.ConfidenceMedium, "Late payment penalty or arrears charge"},
		},
		{
			Name:    "interest_mention",
			Pattern: regexp.MustCompile(`(?i)\binterest\b`),
			Result:  Result{model.CategoryRiba, true, model.ConfidenceMedium, "Mentions interest"},
		},
		{
			Name:    "service_fee",
			Pattern: regexp.MustCompile(`(?i)\b(?:service|maintenance|annual|monthly|account|atm|wire)\s+(?:fees?|charges?)\b`),
			Result:  Result{model.CategoryUtilities, false, model.ConfidenceLow, "Bank service fee"},
		},
		{
			Name:    "halal_income",
			Pattern: regexp.MustCompile(`(?i)\bcash\s?back\b|\brefund(?:ed)?\b|\bdeposit\b|\btransfer\b|\bsalary\b|\bpayroll\b`),
			Result:  Result{model.CategoryIncome, false, model.ConfidenceHigh, "Salary, refund, deposit or transfer"},
		},
		{
			Name:    "ambiguous_reward",
			Pattern: regexp.MustCompile(`(?i)\bdividends?\b|\bprofit\b|\bbonus\b|\brewards?\b`),
			Result:  Result{model.CategoryUncategorized, false, model.ConfidenceMedium, "Ambiguous: dividend, profit or reward needs manual review"},
		},
	}
}

// Classifier evaluates rules in order.
type Classifier struct {
	rules []Rule
}

// New creates a classifier with the default rules.
func New() *Classifier {
	return &Classifier{rules: DefaultRules()}
}

// NewWithRules creates a classifier with a custom cascade.
func NewWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the result of the first matching rule, or Fallback.
func (c *Classifier) Classify(line string) Result {
	for _, r := range c.rules {
		if r.Pattern.MatchString(line) {
			return r.Result
		}
	}
	return Fallback
}

// Rules returns a copy of the cascade.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Prepend adds a rule ahead of all existing rules.
func (c *Classifier) Prepend(name, pattern string, result Result) error {
	re, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		return fmt.Errorf("compile rule %s: %w", name, err)
	}
	c.rules = append([]Rule{{Name: name, Pattern: re, Result: result}}, c.rules...)
	return nil
}
