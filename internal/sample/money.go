package sample

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Rana718/schemaseed/internal/database/common"
)

// Money is an amount in cents. DECIMAL(10, 2) columns hold at most
// 99999999.99, well inside int64.
type Money int64

const maxMoney Money = 9999999999

var maxDecimal = decimal.New(int64(maxMoney), -2)

// ParseMoney accepts a plain decimal with at most two fractional digits.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	whole, frac, hasFrac := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	if whole == "" || (hasFrac && frac == "") || strings.ContainsAny(s, "eE") {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if d.Exponent() < -2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	if d.Abs().GreaterThan(maxDecimal) {
		return 0, fmt.Errorf("amount %q exceeds DECIMAL(10, 2)", s)
	}
	return Money(d.Shift(2).IntPart()), nil
}

func (m Money) String() string {
	return decimal.New(int64(m), -2).StringFixed(2)
}

// Decimal is the form adapters bind for DECIMAL columns.
func (m Money) Decimal() common.Decimal {
	return common.Decimal(m.String())
}

func (m *Money) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", value.Line)
	}
	parsed, err := ParseMoney(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*m = parsed
	return nil
}

func (m Money) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}
