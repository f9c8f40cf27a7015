package validation_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fxstream/trade-consumer/pkg/models"
	"github.com/fxstream/trade-consumer/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	}
}

func validMessage(t *testing.T) *models.TradeMessage {
	t.Helper()
	m := &models.TradeMessage{}
	m.FromMap(map[string]any{
		"userId":             "134256",
		"currencyFrom":       "EUR",
		"currencyTo":         "GBP",
		"amountSell":         json.Number("1000"),
		"amountBuy":          json.Number("747.10"),
		"rate":               json.Number("0.7471"),
		"timePlaced":         "24-JAN-15 10:27:44",
		"originatingCountry": "FR",
	})
	require.NoError(t, m.NormalizeTimestamp())
	return m
}

func messages(violations []validation.Violation) []string {
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.Message)
	}
	return out
}

func TestValidate_CompleteValidMessage(t *testing.T) {
	v := validation.NewWithClock(fixedClock())
	m := validMessage(t)

	violations := v.Validate(m, validation.AllGroups()...)
	assert.Empty(t, violations)
}

func TestValidate_EmptyMessage_AggregatesViolations(t *testing.T) {
	v := validation.NewWithClock(fixedClock())
	m := &models.TradeMessage{}

	violations := v.Validate(m, validation.AllGroups()...)
	msgs := messages(violations)

	assert.Contains(t, msgs, "userId is blank")
	assert.Contains(t, msgs, "amountSell is blank")
	assert.Contains(t, msgs, "amountBuy is blank")
	assert.Contains(t, msgs, "rate is blank")
	assert.Contains(t, msgs, "timePlaced is blank")
	assert.Contains(t, msgs, "currencyFrom is blank")
	assert.Contains(t, msgs, "currencyTo is blank")
	assert.Contains(t, msgs, "originatingCountry is blank")
	assert.Contains(t, msgs, "Values validate rate, amountSell and amountBuy do not appear to match")
	assert.Contains(t, msgs, "Value timePlaced is not valid")
	assert.Contains(t, msgs, "Values currencyFrom and currencyTo should not match")
}

func TestValidate_NoGroups_AppliesDefaultOnly(t *testing.T) {
	v := validation.NewWithClock(fixedClock())
	m := validMessage(t)
	m.CurrencyFrom = "ZZZ" // invalid code, but membership lives outside Default

	violations := v.Validate(m)
	assert.Empty(t, violations)
}

func TestValidate_CurrencyGroups(t *testing.T) {
	v := validation.NewWithClock(fixedClock())

	tests := []struct {
		code  string
		valid bool
	}{
		{"EUR", true},
		{"GBP", true},
		{"ZZZ", false},
		{"eur", false},
	}

	for _, tc := range tests {
		m := &models.TradeMessage{CurrencyFrom: tc.code}
		violations := v.Validate(m, validation.GroupCurrencyFrom)
		if tc.valid {
			assert.Empty(t, violations, "currencyFrom %q", tc.code)
		} else {
			require.Len(t, violations, 1, "currencyFrom %q", tc.code)
			assert.Equal(t, "currencyFrom is not valid", violations[0].Message)
		}

		m = &models.TradeMessage{CurrencyTo: tc.code}
		violations = v.Validate(m, validation.GroupCurrencyTo)
		if tc.valid {
			assert.Empty(t, violations, "currencyTo %q", tc.code)
		} else {
			require.Len(t, violations, 1, "currencyTo %q", tc.code)
			assert.Equal(t, "currencyTo is not valid", violations[0].Message)
		}
	}
}

func TestValidate_CurrencyGroup_Blank(t *testing.T) {
	v := validation.NewWithClock(fixedClock())
	m := &models.TradeMessage{}

	violations := v.Validate(m, validation.GroupCurrencyFrom)
	require.Len(t, violations, 1)
	assert.Equal(t, "currencyFrom is blank", violations[0].Message)
}

func TestValidate_OriginatingCountryGroup(t *testing.T) {
	v := validation.NewWithClock(fixedClock())

	m := &models.TradeMessage{OriginatingCountry: "FR"}
	assert.Empty(t, v.Validate(m, validation.GroupOriginatingCountry))

	m = &models.TradeMessage{OriginatingCountry: "XX"}
	violations := v.Validate(m, validation.GroupOriginatingCountry)
	require.Len(t, violations, 1)
	assert.Equal(t, "originatingCountry is not valid", violations[0].Message)
}

func TestValidate_NumericRules(t *testing.T) {
	v := validation.NewWithClock(fixedClock())

	m := validMessage(t)
	m.AmountSell = "abc"
	msgs := messages(v.Validate(m))
	assert.Contains(t, msgs, "amountSell is not a number")

	m = validMessage(t)
	m.Rate = json.Number("-0.5")
	msgs = messages(v.Validate(m))
	assert.Contains(t, msgs, "rate must be at least 0")

	m = validMessage(t)
	m.AmountBuy = nil
	msgs = messages(v.Validate(m))
	assert.Contains(t, msgs, "amountBuy is blank")
}

func TestValidate_IntegrityCheckRate(t *testing.T) {
	v := validation.NewWithClock(fixedClock())

	m := validMessage(t)
	assert.Empty(t, v.Validate(m, validation.GroupIntegrityRate))

	m.AmountBuy = json.Number("999.10")
	violations := v.Validate(m, validation.GroupIntegrityRate)
	require.Len(t, violations, 1)
	assert.Equal(t, validation.GroupIntegrityRate, violations[0].Field)
	assert.Equal(t, "Values validate rate, amountSell and amountBuy do not appear to match", violations[0].Message)
}

func TestValidate_IntegrityCheckTime(t *testing.T) {
	now := fixedClock()()
	v := validation.NewWithClock(fixedClock())

	m := &models.TradeMessage{TimePlaced: now.Add(-time.Minute)}
	assert.Empty(t, v.Validate(m, validation.GroupIntegrityTime))

	m = &models.TradeMessage{TimePlaced: now}
	assert.Empty(t, v.Validate(m, validation.GroupIntegrityTime))

	m = &models.TradeMessage{TimePlaced: now.Add(time.Minute)}
	violations := v.Validate(m, validation.GroupIntegrityTime)
	require.Len(t, violations, 1)
	assert.Equal(t, "Value timePlaced is not valid", violations[0].Message)

	// Not normalized at all
	m = &models.TradeMessage{TimePlaced: "24-JAN-15 10:27:44"}
	violations = v.Validate(m, validation.GroupIntegrityTime)
	require.Len(t, violations, 1)
}

func TestValidate_IntegrityCheckCurrency(t *testing.T) {
	v := validation.NewWithClock(fixedClock())

	m := &models.TradeMessage{CurrencyFrom: "EUR", CurrencyTo: "USD"}
	assert.Empty(t, v.Validate(m, validation.GroupIntegrityCurrency))

	m = &models.TradeMessage{CurrencyFrom: "USD", CurrencyTo: "USD"}
	violations := v.Validate(m, validation.GroupIntegrityCurrency)
	require.Len(t, violations, 1)
	assert.Equal(t, "Values currencyFrom and currencyTo should not match", violations[0].Message)
}

func TestValidate_UnknownGroupIgnored(t *testing.T) {
	v := validation.NewWithClock(fixedClock())
	m := &models.TradeMessage{}

	violations := v.Validate(m, "noSuchGroup")
	assert.Empty(t, violations)
}
