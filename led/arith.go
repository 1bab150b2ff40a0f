package led

import (
	"errors"
	"math"
)

// ErrDivideByZero is the panic value of Div and DivScalar when a divisor
// channel is zero.
var ErrDivideByZero = errors.New("led: division by zero")

// All arithmetic saturates: results below 0 become 0 and results above 255
// become 255. Scalar operations apply to all four channels, white included.

func saturate(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// clampFloat rounds v to the nearest integer and clamps it to [0, 255].
// NaN maps to 0.
func clampFloat(v float64) byte {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(math.Round(v))
}

func (l Led) apply(f func(a int) int) Led {
	return Led{
		Red:   saturate(f(int(l.Red))),
		Green: saturate(f(int(l.Green))),
		Blue:  saturate(f(int(l.Blue))),
		White: saturate(f(int(l.White))),
	}
}

func (l Led) combine(o Led, f func(a, b int) int) Led {
	return Led{
		Red:   saturate(f(int(l.Red), int(o.Red))),
		Green: saturate(f(int(l.Green), int(o.Green))),
		Blue:  saturate(f(int(l.Blue), int(o.Blue))),
		White: saturate(f(int(l.White), int(o.White))),
	}
}

func (l Led) Add(o Led) Led {
	return l.combine(o, func(a, b int) int { return a + b })
}

func (l Led) Sub(o Led) Led {
	return l.combine(o, func(a, b int) int { return a - b })
}

// Mul multiplies channel by channel.
func (l Led) Mul(o Led) Led {
	return l.combine(o, func(a, b int) int { return a * b })
}

// Div divides channel by channel, truncating. It panics with
// ErrDivideByZero if any channel of o is zero.
func (l Led) Div(o Led) Led {
	if o.Red == 0 || o.Green == 0 || o.Blue == 0 || o.White == 0 {
		panic(ErrDivideByZero)
	}
	return l.combine(o, func(a, b int) int { return a / b })
}

func (l Led) AddScalar(v byte) Led {
	return l.apply(func(a int) int { return a + int(v) })
}

func (l Led) SubScalar(v byte) Led {
	return l.apply(func(a int) int { return a - int(v) })
}

// MulScalar scales every channel by f, rounding to the nearest integer.
func (l Led) MulScalar(f float64) Led {
	return Led{
		Red:   clampFloat(float64(l.Red) * f),
		Green: clampFloat(float64(l.Green) * f),
		Blue:  clampFloat(float64(l.Blue) * f),
		White: clampFloat(float64(l.White) * f),
	}
}

// DivScalar divides every channel by v, truncating. It panics with
// ErrDivideByZero if v is zero.
func (l Led) DivScalar(v byte) Led {
	if v == 0 {
		panic(ErrDivideByZero)
	}
	return l.apply(func(a int) int { return a / int(v) })
}
