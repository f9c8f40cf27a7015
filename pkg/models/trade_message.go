package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimePlacedLayout is the only accepted wire format for the timePlaced
// field, e.g. "24-JAN-15 10:27:44". Day and hour may omit the leading zero.
const TimePlacedLayout = "2-Jan-06 15:04:05"

// MalformedTimestampError reports a timePlaced value that does not match
// TimePlacedLayout. It carries the offending raw value.
type MalformedTimestampError struct {
	Raw any
}

func (e MalformedTimestampError) Error() string {
	return fmt.Sprintf("Invalid datetime provided (%s)", rawString(e.Raw))
}

func rawString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// TradeMessage represents one currency-exchange trade report.
//
// The amount fields and timePlaced hold raw JSON values until validation and
// normalization run; hydration copies values verbatim and never rejects.
// ID and CreatedAt are assigned by the store on successful persistence.
type TradeMessage struct {
	ID        int64
	CreatedAt time.Time

	UserID             string
	CurrencyFrom       string
	CurrencyTo         string
	AmountSell         any
	AmountBuy          any
	Rate               any
	TimePlaced         any // string as received; time.Time after NormalizeTimestamp
	OriginatingCountry string
}

// FromMap hydrates the message from an untyped key/value map. Only known
// keys are copied; unknown keys are silently dropped. String fields accept
// only strings, so type errors surface later as blank-field violations.
func (m *TradeMessage) FromMap(data map[string]any) {
	for key, value := range data {
		switch key {
		case "userId":
			if s, ok := value.(string); ok {
				m.UserID = s
			}
		case "currencyFrom":
			if s, ok := value.(string); ok {
				m.CurrencyFrom = s
			}
		case "currencyTo":
			if s, ok := value.(string); ok {
				m.CurrencyTo = s
			}
		case "amountSell":
			m.AmountSell = value
		case "amountBuy":
			m.AmountBuy = value
		case "rate":
			m.Rate = value
		case "timePlaced":
			m.TimePlaced = value
		case "originatingCountry":
			if s, ok := value.(string); ok {
				m.OriginatingCountry = s
			}
		}
	}
}

// ToMap returns the settable fields as a plain map, the inverse of FromMap.
// ID and CreatedAt are excluded; unset fields are omitted.
func (m *TradeMessage) ToMap() map[string]any {
	out := make(map[string]any)
	if m.UserID != "" {
		out["userId"] = m.UserID
	}
	if m.CurrencyFrom != "" {
		out["currencyFrom"] = m.CurrencyFrom
	}
	if m.CurrencyTo != "" {
		out["currencyTo"] = m.CurrencyTo
	}
	if m.AmountSell != nil {
		out["amountSell"] = m.AmountSell
	}
	if m.AmountBuy != nil {
		out["amountBuy"] = m.AmountBuy
	}
	if m.Rate != nil {
		out["rate"] = m.Rate
	}
	if m.TimePlaced != nil {
		out["timePlaced"] = m.TimePlaced
	}
	if m.OriginatingCountry != "" {
		out["originatingCountry"] = m.OriginatingCountry
	}
	return out
}

// NormalizeTimestamp parses the raw timePlaced string against
// TimePlacedLayout and replaces the field with the structured timestamp.
// Non-string values (including absent and numeric inputs) fail.
func (m *TradeMessage) NormalizeTimestamp() error {
	raw, ok := m.TimePlaced.(string)
	if !ok || raw == "" {
		return MalformedTimestampError{Raw: m.TimePlaced}
	}
	t, err := time.Parse(TimePlacedLayout, canonicalizeMonth(raw))
	if err != nil {
		return MalformedTimestampError{Raw: raw}
	}
	m.TimePlaced = t
	return nil
}

// canonicalizeMonth folds the month abbreviation ("JAN", "jan") into the
// title case time.Parse expects. Anything else is left for the parser to
// reject.
func canonicalizeMonth(raw string) string {
	parts := strings.SplitN(raw, "-", 3)
	if len(parts) != 3 {
		return raw
	}
	mon := parts[1]
	if len(mon) > 0 {
		mon = strings.ToUpper(mon[:1]) + strings.ToLower(mon[1:])
	}
	return parts[0] + "-" + mon + "-" + parts[2]
}

// TimePlacedTime returns the structured timestamp, if normalization has run.
func (m *TradeMessage) TimePlacedTime() (time.Time, bool) {
	t, ok := m.TimePlaced.(time.Time)
	return t, ok
}

// AmountSellDecimal returns the sell amount as a decimal, if numeric.
func (m *TradeMessage) AmountSellDecimal() (decimal.Decimal, bool) {
	return decimalFrom(m.AmountSell)
}

// AmountBuyDecimal returns the buy amount as a decimal, if numeric.
func (m *TradeMessage) AmountBuyDecimal() (decimal.Decimal, bool) {
	return decimalFrom(m.AmountBuy)
}

// RateDecimal returns the exchange rate as a decimal, if numeric.
func (m *TradeMessage) RateDecimal() (decimal.Decimal, bool) {
	return decimalFrom(m.Rate)
}

// AmountsConsistentWithRate reports whether amountBuy equals
// amountSell × rate, compared exactly on the decimal representation.
// False when any of the three is missing or not numeric.
func (m *TradeMessage) AmountsConsistentWithRate() bool {
	sell, ok := m.AmountSellDecimal()
	if !ok {
		return false
	}
	buy, ok := m.AmountBuyDecimal()
	if !ok {
		return false
	}
	rate, ok := m.RateDecimal()
	if !ok {
		return false
	}
	return buy.Equal(sell.Mul(rate))
}

// TimestampNotInFuture reports whether timePlaced is a structured timestamp
// no later than now. False when normalization has not run.
func (m *TradeMessage) TimestampNotInFuture(now time.Time) bool {
	t, ok := m.TimePlacedTime()
	if !ok {
		return false
	}
	return !t.After(now)
}

// CurrenciesDiffer reports whether currencyFrom and currencyTo differ.
func (m *TradeMessage) CurrenciesDiffer() bool {
	return m.CurrencyFrom != m.CurrencyTo
}

func decimalFrom(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		if n == "" {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(n)
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	default:
		return decimal.Decimal{}, false
	}
}
