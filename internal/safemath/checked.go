package safemath

import "errors"

// ErrOverflow reports an arithmetic result that cannot be represented in
// uint64, including subtraction underflow and division by zero.
var ErrOverflow = errors.New("math overflow")

// Add returns a+b or ErrOverflow when the sum wraps.
func Add(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a-b or ErrOverflow when b exceeds a.
func Sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrOverflow
	}
	return a - b, nil
}

// Mul returns a*b or ErrOverflow when the product wraps.
func Mul(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := a * b
	if product/a != b {
		return 0, ErrOverflow
	}
	return product, nil
}

// Div returns floor(a/b) or ErrOverflow when b is zero.
func Div(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrOverflow
	}
	return a / b, nil
}

// MulDiv returns floor(a*b/d), failing if the intermediate product wraps
// or d is zero. This is the share conversion primitive: amounts never
// round up in the depositor's favor.
func MulDiv(a, b, d uint64) (uint64, error) {
	product, err := Mul(a, b)
	if err != nil {
		return 0, err
	}
	return Div(product, d)
}
