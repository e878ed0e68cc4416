package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/model"
)

func TestClassifier_Classify(t *testing.T) {
	c := New()

	tests := []struct {
		name       string
		line       string
		category   model.Category
		isRiba     bool
		confidence model.Confidence
		hasReason  bool
	}{
		{"overdraft interest", "2024-01-10 Overdraft Interest Charge 12.50", model.CategoryRiba, true, model.ConfidenceHigh, true},
		{"interest paid", "Interest paid on account 3.10", model.CategoryRiba, true, model.ConfidenceHigh, true},
		{"finance charge", "FINANCE CHARGE 22.00", model.CategoryRiba, true, model.ConfidenceHigh, true},
		{"nsf fee", "NSF Fee returned item 35.00", model.CategoryRiba, true, model.ConfidenceHigh, true},
		{"apr", "Purchase APR 24.99%", model.CategoryRiba, true, model.ConfidenceHigh, true},
		{"apr after rate", "Cash advances 29.9% APR variable", model.CategoryRiba, true, model.ConfidenceHigh, true},
		{"april date", "12 Apr 2024 Tesco Groceries 45.00", model.CategoryShopping, false, model.ConfidenceLow, false},
		{"april date uppercase", "12 APR 2024 TESCO GROCERIES 45.00", model.CategoryShopping, false, model.ConfidenceLow, false},
		{"month name first", "Apr 3, 2024 Bookshop 9.99", model.CategoryShopping, false, model.ConfidenceLow, false},
		{"late fee", "12/03/2024 Late fee 25.00", model.CategoryRiba, true, model.ConfidenceMedium, true},
		{"late payment fee", "Late payment fee 15.00", model.CategoryRiba, true, model.ConfidenceMedium, true},
		{"arrears", "Mortgage arrears charge 80.00", model.CategoryRiba, true, model.ConfidenceMedium, true},
		{"past due", "Past due amount 40.00", model.CategoryRiba, true, model.ConfidenceMedium, true},
		{"bare interest", "Interest 1.23", model.CategoryRiba, true, model.ConfidenceMedium, true},
		{"service fee", "Monthly fee 5.00", model.CategoryUtilities, false, model.ConfidenceLow, true},
		{"maintenance fee", "Account maintenance fee 2.00", model.CategoryUtilities, false, model.ConfidenceLow, true},
		{"salary", "2024-01-05 Salary Deposit 2500.00", model.CategoryIncome, false, model.ConfidenceHigh, true},
		{"refund", "Amazon refund 19.99", model.CategoryIncome, false, model.ConfidenceHigh, true},
		{"cashback", "Card cashback 1.50", model.CategoryIncome, false, model.ConfidenceHigh, true},
		{"dividend", "Quarterly dividend 14.20", model.CategoryUncategorized, false, model.ConfidenceMedium, true},
		{"profit share", "Profit distribution 8.00", model.CategoryUncategorized, false, model.ConfidenceMedium, true},
		{"fallback", "01/02/2024 Coffee 30.00", model.CategoryShopping, false, model.ConfidenceLow, false},
		{"interesting is not interest", "Interesting Books Ltd 12.00", model.CategoryShopping, false, model.ConfidenceLow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.line)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.isRiba, got.IsRiba)
			assert.Equal(t, tt.confidence, got.Confidence)
			if tt.hasReason {
				assert.NotEmpty(t, got.Reason)
			} else {
				assert.Empty(t, got.Reason)
			}
		})
	}
}

func TestClassifier_Ordering(t *testing.T) {
	c := New()

	t.Run("explicit interest outranks late fee", func(t *testing.T) {
		got := c.Classify("Overdraft interest late fee applied")
		assert.True(t, got.IsRiba)
		assert.Equal(t, model.ConfidenceHigh, got.Confidence)
	})

	t.Run("penalty outranks service fee", func(t *testing.T) {
		got := c.Classify("Late fee and monthly fee")
		assert.Equal(t, model.CategoryRiba, got.Category)
		assert.Equal(t, model.ConfidenceMedium, got.Confidence)
	})

	t.Run("interest outranks transfer", func(t *testing.T) {
		got := c.Classify("Transfer of interest 4.00")
		assert.Equal(t, model.CategoryRiba, got.Category)
	})

	t.Run("income outranks ambiguous reward", func(t *testing.T) {
		got := c.Classify("Reward cashback 2.00")
		assert.Equal(t, model.CategoryIncome, got.Category)
	})
}

func TestClassifier_Prepend(t *testing.T) {
	c := New()
	before := len(c.Rules())

	err := c.Prepend("zakat", `\bzakat\b`, Result{
		Category:   model.CategoryTransfer,
		Confidence: model.ConfidenceHigh,
		Reason:     "Zakat payment",
	})
	require.NoError(t, err)

	rules := c.Rules()
	assert.Len(t, rules, before+1)
	assert.Equal(t, "zakat", rules[0].Name)

	got := c.Classify("ZAKAT transfer 100.00")
	assert.Equal(t, model.CategoryTransfer, got.Category)

	err = c.Prepend("broken", `(`, Result{})
	assert.Error(t, err)
}
