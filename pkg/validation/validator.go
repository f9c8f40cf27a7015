// Package validation implements the rule-group registry for trade messages.
// Rules are plain predicate functions bound to named groups; validation
// aggregates every violation rather than failing fast.
package validation

import (
	"time"

	"github.com/fxstream/trade-consumer/pkg/iso"
	"github.com/fxstream/trade-consumer/pkg/models"
	"github.com/shopspring/decimal"
)

// Rule group names. GroupDefault holds the unconditional rules; the rest are
// invocable selectively.
const (
	GroupDefault            = "Default"
	GroupCurrencyFrom       = "currencyFrom"
	GroupCurrencyTo         = "currencyTo"
	GroupOriginatingCountry = "originatingCountry"
	GroupIntegrityRate      = "integrityCheckRate"
	GroupIntegrityTime      = "integrityCheckTime"
	GroupIntegrityCurrency  = "integrityCheckCurrency"
)

// AllGroups returns the full group set the request pipeline validates with.
func AllGroups() []string {
	return []string{
		GroupDefault,
		GroupCurrencyFrom,
		GroupCurrencyTo,
		GroupOriginatingCountry,
		GroupIntegrityRate,
		GroupIntegrityTime,
		GroupIntegrityCurrency,
	}
}

// Violation is one failed rule, tied to a field or a cross-field rule name.
type Violation struct {
	Field   string
	Message string
}

// Rule checks one condition against a message at a given instant.
// It returns nil when the message passes.
type Rule func(m *models.TradeMessage, now time.Time) *Violation

// Validator applies registered rule groups to trade messages.
type Validator struct {
	now    func() time.Time
	groups map[string][]Rule
}

// New returns a Validator with the built-in rule catalogue, using the wall
// clock for temporal rules.
func New() *Validator {
	return NewWithClock(time.Now)
}

// NewWithClock returns a Validator whose temporal rules evaluate against the
// supplied clock.
func NewWithClock(now func() time.Time) *Validator {
	return &Validator{now: now, groups: builtinGroups()}
}

// Validate runs the named rule groups against the message and returns every
// violation found. With no groups it applies only the Default rules. An
// empty result means valid. Unknown group names are ignored.
func (v *Validator) Validate(m *models.TradeMessage, groups ...string) []Violation {
	if len(groups) == 0 {
		groups = []string{GroupDefault}
	}
	now := v.now()
	var violations []Violation
	for _, g := range groups {
		for _, rule := range v.groups[g] {
			if viol := rule(m, now); viol != nil {
				violations = append(violations, *viol)
			}
		}
	}
	return violations
}

func builtinGroups() map[string][]Rule {
	return map[string][]Rule{
		GroupDefault: {
			requiredString("userId", func(m *models.TradeMessage) string { return m.UserID }),
			numericField("amountSell", func(m *models.TradeMessage) any { return m.AmountSell }, (*models.TradeMessage).AmountSellDecimal),
			numericField("amountBuy", func(m *models.TradeMessage) any { return m.AmountBuy }, (*models.TradeMessage).AmountBuyDecimal),
			numericField("rate", func(m *models.TradeMessage) any { return m.Rate }, (*models.TradeMessage).RateDecimal),
			requiredTimestamp(),
		},
		GroupCurrencyFrom: {
			requiredString("currencyFrom", func(m *models.TradeMessage) string { return m.CurrencyFrom }),
			codeMembership("currencyFrom", func(m *models.TradeMessage) string { return m.CurrencyFrom }, iso.IsValidCurrencyCode),
		},
		GroupCurrencyTo: {
			requiredString("currencyTo", func(m *models.TradeMessage) string { return m.CurrencyTo }),
			codeMembership("currencyTo", func(m *models.TradeMessage) string { return m.CurrencyTo }, iso.IsValidCurrencyCode),
		},
		GroupOriginatingCountry: {
			requiredString("originatingCountry", func(m *models.TradeMessage) string { return m.OriginatingCountry }),
			codeMembership("originatingCountry", func(m *models.TradeMessage) string { return m.OriginatingCountry }, iso.IsValidCountryCode),
		},
		GroupIntegrityRate: {
			func(m *models.TradeMessage, _ time.Time) *Violation {
				if m.AmountsConsistentWithRate() {
					return nil
				}
				return &Violation{
					Field:   GroupIntegrityRate,
					Message: "Values validate rate, amountSell and amountBuy do not appear to match",
				}
			},
		},
		GroupIntegrityTime: {
			func(m *models.TradeMessage, now time.Time) *Violation {
				if m.TimestampNotInFuture(now) {
					return nil
				}
				return &Violation{Field: GroupIntegrityTime, Message: "Value timePlaced is not valid"}
			},
		},
		GroupIntegrityCurrency: {
			func(m *models.TradeMessage, _ time.Time) *Violation {
				if m.CurrenciesDiffer() {
					return nil
				}
				return &Violation{
					Field:   GroupIntegrityCurrency,
					Message: "Values currencyFrom and currencyTo should not match",
				}
			},
		},
	}
}

func requiredString(field string, get func(m *models.TradeMessage) string) Rule {
	return func(m *models.TradeMessage, _ time.Time) *Violation {
		if get(m) == "" {
			return &Violation{Field: field, Message: field + " is blank"}
		}
		return nil
	}
}

func requiredTimestamp() Rule {
	return func(m *models.TradeMessage, _ time.Time) *Violation {
		if m.TimePlaced == nil || m.TimePlaced == "" {
			return &Violation{Field: "timePlaced", Message: "timePlaced is blank"}
		}
		return nil
	}
}

// numericField folds the required, numeric-type and non-negative checks for
// one amount field into a single rule producing at most one violation.
func numericField(field string, raw func(m *models.TradeMessage) any, dec func(m *models.TradeMessage) (decimal.Decimal, bool)) Rule {
	return func(m *models.TradeMessage, _ time.Time) *Violation {
		v := raw(m)
		if v == nil || v == "" {
			return &Violation{Field: field, Message: field + " is blank"}
		}
		d, ok := dec(m)
		if !ok {
			return &Violation{Field: field, Message: field + " is not a number"}
		}
		if d.IsNegative() {
			return &Violation{Field: field, Message: field + " must be at least 0"}
		}
		return nil
	}
}

func codeMembership(field string, get func(m *models.TradeMessage) string, valid func(string) bool) Rule {
	return func(m *models.TradeMessage, _ time.Time) *Violation {
		code := get(m)
		if code == "" || valid(code) {
			return nil
		}
		return &Violation{Field: field, Message: field + " is not valid"}
	}
}
