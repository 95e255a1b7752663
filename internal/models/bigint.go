package models

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strings"
)

// BigInt stores an arbitrary-precision integer in a NUMERIC(78,0) column and
// renders as a decimal string in JSON. Balances, reserves, rewards and fees
// all use this type; float64 is reserved for informational display fields.
type BigInt struct {
	big.Int
}

// NewBigInt copies x into a BigInt. A nil x yields zero.
func NewBigInt(x *big.Int) BigInt {
	var b BigInt
	if x != nil {
		b.Set(x)
	}
	return b
}

// NewBigIntFromInt64 returns a BigInt holding x.
func NewBigIntFromInt64(x int64) BigInt {
	var b BigInt
	b.SetInt64(x)
	return b
}

// Big returns a copy safe for arithmetic without mutating the model field.
func (b *BigInt) Big() *big.Int {
	return new(big.Int).Set(&b.Int)
}

// Value implements driver.Valuer.
func (b BigInt) Value() (driver.Value, error) {
	return b.String(), nil
}

// Scan implements sql.Scanner. Postgres returns NUMERIC as text.
func (b *BigInt) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		b.SetInt64(0)
		return nil
	case int64:
		b.SetInt64(v)
		return nil
	case []byte:
		return b.setString(string(v))
	case string:
		return b.setString(v)
	default:
		return fmt.Errorf("cannot scan %T into BigInt", src)
	}
}

func (b *BigInt) setString(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		b.SetInt64(0)
		return nil
	}
	if _, ok := b.SetString(s, 10); !ok {
		return fmt.Errorf("invalid numeric value %q", s)
	}
	return nil
}

// GormDataType maps the type to a column wide enough for 2^256-scale values.
func (BigInt) GormDataType() string {
	return "numeric(78,0)"
}

// MarshalJSON encodes the value as a decimal string.
func (b BigInt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted and bare decimal integers.
func (b *BigInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		b.SetInt64(0)
		return nil
	}
	return b.setString(s)
}
