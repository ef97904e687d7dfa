package order

import (
	"strings"
	"unicode"
)

const (
	nameMinLen = 2
	nameMaxLen = 30

	phoneMinLen   = 10
	addressMinLen = 5
	timeMinLen    = 2

	// MaxPhotos caps the number of photo attachments per order.
	MaxPhotos = 25
)

// currency markers stripped before the change amount is checked.
var currencyMarkers = []string{"грн", "uah", "₴"}

func validName(name string) bool {
	n := 0
	letters := false
	for _, r := range name {
		n++
		switch {
		case r == ' ':
		case unicode.IsLetter(r):
			letters = true
		default:
			return false
		}
	}
	return letters && n >= nameMinLen && n <= nameMaxLen
}

func validPhone(phone string) bool {
	if len(phone) < phoneMinLen {
		return false
	}
	digits := strings.TrimPrefix(phone, "+")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validAddress(addr string) bool {
	return len([]rune(addr)) >= addressMinLen
}

func validTime(t string) bool {
	return len([]rune(t)) >= timeMinLen
}

func validChangeAmount(amount string) bool {
	s := strings.ToLower(strings.ReplaceAll(amount, " ", ""))
	for _, marker := range currencyMarkers {
		s = strings.TrimSuffix(s, marker)
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
