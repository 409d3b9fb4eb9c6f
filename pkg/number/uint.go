package number

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fox-one/msgpack"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// MaxBits every stored quantity must fit in
const MaxBits = 128

var (
	// ErrOverflow result does not fit in 128 bits
	ErrOverflow = errors.New("number: arithmetic overflow")
	// ErrUnderflow subtraction below zero
	ErrUnderflow = errors.New("number: arithmetic underflow")
	// ErrDivisionByZero division by zero
	ErrDivisionByZero = errors.New("number: division by zero")
	// ErrInvalid malformed number
	ErrInvalid = errors.New("number: invalid number")
)

// Uint unsigned integer bounded to 128 bits.
//
// Intermediate products are evaluated in 256 bits so that a*b/c never
// overflows before the division; only the final result is bounded.
type Uint struct {
	v uint256.Int
}

// Zero zero value
var Zero = Uint{}

// NewUint new uint from uint64
func NewUint(x uint64) Uint {
	var u Uint
	u.v.SetUint64(x)
	return u
}

// Parse parse base 10 string
func Parse(s string) (Uint, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	return bounded(v)
}

// MustParse parse or panic, for constants
func MustParse(s string) Uint {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

func bounded(v *uint256.Int) (Uint, error) {
	if v.BitLen() > MaxBits {
		return Zero, ErrOverflow
	}

	return Uint{v: *v}, nil
}

func (u Uint) IsZero() bool {
	return u.v.IsZero()
}

func (u Uint) IsPositive() bool {
	return !u.v.IsZero()
}

// Cmp compare, -1 if u < o, 0 if equal, +1 otherwise
func (u Uint) Cmp(o Uint) int {
	return u.v.Cmp(&o.v)
}

func (u Uint) Equal(o Uint) bool {
	return u.v.Eq(&o.v)
}

func (u Uint) LessThan(o Uint) bool {
	return u.v.Lt(&o.v)
}

func (u Uint) GreaterThan(o Uint) bool {
	return u.v.Gt(&o.v)
}

func (u Uint) LessThanOrEqual(o Uint) bool {
	return !u.v.Gt(&o.v)
}

func (u Uint) GreaterThanOrEqual(o Uint) bool {
	return !u.v.Lt(&o.v)
}

// Add u + o
func (u Uint) Add(o Uint) (Uint, error) {
	var z uint256.Int
	if _, overflow := z.AddOverflow(&u.v, &o.v); overflow {
		return Zero, ErrOverflow
	}

	return bounded(&z)
}

// Sub u - o, fails instead of wrapping
func (u Uint) Sub(o Uint) (Uint, error) {
	var z uint256.Int
	if _, underflow := z.SubOverflow(&u.v, &o.v); underflow {
		return Zero, ErrUnderflow
	}

	return Uint{v: z}, nil
}

// Mul u * o
func (u Uint) Mul(o Uint) (Uint, error) {
	var z uint256.Int
	if _, overflow := z.MulOverflow(&u.v, &o.v); overflow {
		return Zero, ErrOverflow
	}

	return bounded(&z)
}

// Div integer division, rounds toward zero
func (u Uint) Div(o Uint) (Uint, error) {
	if o.IsZero() {
		return Zero, ErrDivisionByZero
	}

	var z uint256.Int
	z.Div(&u.v, &o.v)
	return Uint{v: z}, nil
}

// MulDiv a * b / d with a single rounding toward zero
func MulDiv(a, b, d Uint) (Uint, error) {
	if d.IsZero() {
		return Zero, ErrDivisionByZero
	}

	var z uint256.Int
	if _, overflow := z.MulOverflow(&a.v, &b.v); overflow {
		return Zero, ErrOverflow
	}

	z.Div(&z, &d.v)
	return bounded(&z)
}

// Min smaller of a and b
func Min(a, b Uint) Uint {
	if a.LessThan(b) {
		return a
	}
	return b
}

func (u Uint) Uint64() uint64 {
	return u.v.Uint64()
}

func (u Uint) IsUint64() bool {
	return u.v.IsUint64()
}

func (u Uint) String() string {
	return u.v.Dec()
}

// Decimal exact decimal value shifted by exp, Scaled(x).Decimal(-8) renders a rate
func (u Uint) Decimal(exp int32) decimal.Decimal {
	return decimal.NewFromBigInt(u.v.ToBig(), exp)
}

// FromDecimal d * 10^shift truncated toward zero
func FromDecimal(d decimal.Decimal, shift int32) (Uint, error) {
	if d.IsNegative() {
		return Zero, fmt.Errorf("%w: negative %s", ErrInvalid, d)
	}

	return Parse(d.Shift(shift).Truncate(0).String())
}

// MarshalBinary fixed 16 byte big endian
func (u Uint) MarshalBinary() ([]byte, error) {
	b := u.v.Bytes32()
	out := make([]byte, MaxBits/8)
	copy(out, b[32-MaxBits/8:])
	return out, nil
}

// UnmarshalBinary expects exactly 16 bytes
func (u *Uint) UnmarshalBinary(data []byte) error {
	if len(data) != MaxBits/8 {
		return fmt.Errorf("%w: corrupted data, 16 bytes expected, got %d", ErrInvalid, len(data))
	}

	u.v.SetBytes(data)
	return nil
}

// MarshalJSON decimal string
func (u Uint) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON accepts a decimal string or a bare number
func (u *Uint) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalid, data)
		}
		s = n.String()
	}

	v, err := Parse(s)
	if err != nil {
		return err
	}

	*u = v
	return nil
}

// MarshalText decimal string, lets Uint bind from query strings and yaml
func (u Uint) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *Uint) UnmarshalText(data []byte) error {
	v, err := Parse(string(data))
	if err != nil {
		return err
	}

	*u = v
	return nil
}

// EncodeMsgpack fixed width binary
func (u Uint) EncodeMsgpack(enc *msgpack.Encoder) error {
	b, _ := u.MarshalBinary()
	return enc.EncodeBytes(b)
}

func (u *Uint) DecodeMsgpack(dec *msgpack.Decoder) error {
	b, err := dec.DecodeBytes()
	if err != nil {
		return err
	}

	return u.UnmarshalBinary(b)
}
