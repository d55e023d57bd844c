package tradedesk

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultCurrency is used when a Money has no currency set.
const DefaultCurrency = "USD"

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// Money represents a monetary value.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M creates a Money from any numeric value.
func M[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// USD creates a Money in US dollars.
func USD[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) Money {
	return M(value, "USD")
}

// currency returns the go-money currency, never nil.
func (m Money) currency() *money.Currency {
	code := m.cur
	if code == "" {
		code = DefaultCurrency
	}
	return money.New(0, code).Currency()
}

// String returns the money formatted in its currency, rounded to the currency's minor unit.
func (m Money) String() string {
	cur := m.currency()
	minor := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// SignedString returns the string representation with an explicit sign.
// 0 is represented as "-".
func (m Money) SignedString() string {
	if m.Round().IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Currency() string         { return m.cur }
func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) Equal(n Money) bool {
	return m.value.Equal(n.value) && (m.cur == n.cur || m.cur == "" || n.cur == "")
}
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsPositive() bool         { return m.value.IsPositive() }
func (m Money) IsNegative() bool         { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool    { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool { return m.value.GreaterThan(n.value) }
func (m Money) Neg() Money               { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money               { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Mul(q Quantity) Money     { return Money{value: m.value.Mul(q.value), cur: m.cur} }
func (m Money) DivInt(n int) Money {
	return Money{value: m.value.Div(decimal.NewFromInt(int64(n))), cur: m.cur}
}
func (m Money) MulInt(n int) Money {
	return Money{value: m.value.Mul(decimal.NewFromInt(int64(n))), cur: m.cur}
}

// MulRate multiplies the amount by a plain rate (0.22 for 22%).
func (m Money) MulRate(rate float64) Money {
	return Money{value: m.value.Mul(decimal.NewFromFloat(rate)), cur: m.cur}
}

// Percent returns p percent of m.
func (m Money) Percent(p Percent) Money {
	return Money{value: m.value.Mul(decimal.NewFromFloat(float64(p))).Div(decimal.NewFromInt(100)), cur: m.cur}
}

// Ratio returns m/n as a float, 0 when n is zero.
func (m Money) Ratio(n Money) float64 {
	if n.value.IsZero() {
		return 0
	}
	return m.value.Div(n.value).InexactFloat64()
}

// Round returns the amount rounded to the currency's minor unit.
func (m Money) Round() Money {
	return Money{value: m.value.Round(int32(m.currency().Fraction)), cur: m.cur}
}

// Float64 returns the closest float to the amount. It is meant for display
// and for the float based projections, not for accounting.
func (m Money) Float64() float64 { return m.value.InexactFloat64() }

// Min returns the smallest of m and n.
func (m Money) Min(n Money) Money {
	if n.LessThan(m) {
		return Money{value: n.value, cur: cur(m, n)}
	}
	return Money{value: m.value, cur: cur(m, n)}
}

// Max returns the largest of m and n.
func (m Money) Max(n Money) Money {
	if n.GreaterThan(m) {
		return Money{value: n.value, cur: cur(m, n)}
	}
	return Money{value: m.value, cur: cur(m, n)}
}

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + "!=" + b.cur)
	}
	return a.cur
}

// Sum adds all amounts together.
func Sum(amounts ...Money) (total Money) {
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

type moneyJSON struct {
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency,omitempty"`
}

// MarshalJSON writes the amount rounded to the currency's minor unit.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:   json.Number(m.Round().value.String()),
		Currency: m.cur,
	})
}

// UnmarshalJSON accepts either {"amount": 1.5, "currency": "USD"} or a bare number.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var d decimal.Decimal
		if err := d.UnmarshalJSON(data); err != nil {
			return fmt.Errorf("invalid amount %s: %w", data, err)
		}
		*m = Money{value: d}
		return nil
	}
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := decimal.NewFromString(raw.Amount.String())
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", raw.Amount, err)
	}
	*m = Money{value: d, cur: raw.Currency}
	return nil
}

// UnmarshalYAML reads a bare number, so that scenario files stay readable.
func (m *Money) UnmarshalYAML(node *yaml.Node) error {
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid amount %q: %w", node.Line, node.Value, err)
	}
	*m = Money{value: d}
	return nil
}

// Quantity is an exact number of shares or contracts.
type Quantity struct {
	value decimal.Decimal
}

// Q creates a Quantity from any numeric value.
func Q[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) Quantity {
	return Quantity{value: newDecimal(value)}
}

func (q Quantity) Equal(p Quantity) bool        { return q.value.Equal(p.value) }
func (q Quantity) IsZero() bool                 { return q.value.IsZero() }
func (q Quantity) IsPositive() bool             { return q.value.IsPositive() }
func (q Quantity) Decimal() decimal.Decimal     { return q.value }
func (q Quantity) Float64() float64             { return q.value.InexactFloat64() }
func (q Quantity) String() string               { return q.value.String() }
func (q Quantity) MarshalJSON() ([]byte, error) { return []byte(q.value.String()), nil }
func (q *Quantity) UnmarshalJSON(b []byte) error {
	return q.value.UnmarshalJSON(b)
}
