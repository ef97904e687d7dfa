package order

import (
	"fmt"
	"math/rand/v2"
	"strconv"
)

// Captcha is a small arithmetic challenge issued before the form starts.
// Both operands stay in [1,5] so the sum is trivial for a human.
type Captcha struct {
	A int `json:"a"`
	B int `json:"b"`
}

// NewCaptcha picks random operands.
func NewCaptcha() Captcha {
	return Captcha{A: rand.IntN(5) + 1, B: rand.IntN(5) + 1}
}

// Question returns the challenge text, e.g. "3 + 4".
func (c Captcha) Question() string {
	return fmt.Sprintf("%d + %d", c.A, c.B)
}

// Check accepts only the exact decimal string of the sum.
func (c Captcha) Check(answer string) bool {
	return answer == strconv.Itoa(c.A+c.B)
}
