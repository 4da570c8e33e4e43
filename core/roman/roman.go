// Package roman converts between non-negative integers and Roman numerals.
//
// Only canonical numerals are accepted: Decode succeeds exactly for the
// strings Encode can produce. The package holds no mutable state and is safe
// for concurrent use.
package roman

import "strings"

// Alphabet lists the characters a Roman numeral may contain.
const Alphabet = "IVXLCDM"

// Unit is one token of the symbol table.
type Unit struct {
	Numeral string `json:"numeral" yaml:"numeral"`
	Value   int    `json:"value" yaml:"value"`
}

// units is ordered by descending value. Both directions rely on this order.
var units = [...]Unit{
	{"M", 1000},
	{"CM", 900},
	{"D", 500},
	{"CD", 400},
	{"C", 100},
	{"XC", 90},
	{"L", 50},
	{"XL", 40},
	{"X", 10},
	{"IX", 9},
	{"V", 5},
	{"IV", 4},
	{"I", 1},
}

// Units returns a copy of the symbol table, highest value first.
func Units() []Unit {
	out := make([]Unit, len(units))
	copy(out, units[:])
	return out
}

// Encode returns the canonical numeral for number. Zero encodes to the empty
// string. Negative input returns a *RangeError.
func Encode(number int) (string, error) {
	if number < 0 {
		return "", &RangeError{Number: number}
	}

	var sb strings.Builder
	for number > 0 {
		u := unitLessThanOrEqual(number)
		sb.WriteString(u.Numeral)
		number -= u.Value
	}
	return sb.String(), nil
}

// EncodeMax is Encode with an upper bound. The length of a numeral grows
// linearly with its value, so callers encoding untrusted input should set
// max. A max of zero or less means no bound.
func EncodeMax(number, max int) (string, error) {
	if max > 0 && number > max {
		return "", &RangeError{Number: number, Max: max}
	}
	return Encode(number)
}

// Decode returns the value of a canonical numeral. The empty string decodes
// to zero. Any other input that Encode would not produce returns a
// *NumeralError.
func Decode(s string) (int, error) {
	if pos := invalidCharacterIndex(s); pos >= 0 {
		return 0, &NumeralError{Input: s, Pos: pos, Reason: ReasonInvalidCharacter}
	}

	sum := 0
	for pos := 0; pos < len(s); {
		u, ok := unitMatchingPrefix(s[pos:])
		// Every Alphabet character is also a token, so this only fires if
		// the two tables drift apart.
		if !ok {
			return 0, &NumeralError{Input: s, Pos: pos, Reason: ReasonNoMatchingToken}
		}
		sum += u.Value
		pos += len(u.Numeral)
	}

	// sum is never negative here, so Encode cannot fail.
	if canonical, _ := Encode(sum); canonical != s {
		return 0, &NumeralError{Input: s, Pos: -1, Reason: ReasonNonCanonical}
	}
	return sum, nil
}

// Valid reports whether s decodes successfully.
func Valid(s string) bool {
	_, err := Decode(s)
	return err == nil
}

// HasInvalidCharacter reports whether s contains a character outside the
// Roman alphabet.
func HasInvalidCharacter(s string) bool {
	return invalidCharacterIndex(s) >= 0
}

func invalidCharacterIndex(s string) int {
	for i, r := range s {
		if !strings.ContainsRune(Alphabet, r) {
			return i
		}
	}
	return -1
}

func unitLessThanOrEqual(number int) Unit {
	for _, u := range units {
		if number >= u.Value {
			return u
		}
	}
	// Unreachable for number >= 1 since the table ends with I.
	return units[len(units)-1]
}

func unitMatchingPrefix(s string) (Unit, bool) {
	for _, u := range units {
		if strings.HasPrefix(s, u.Numeral) {
			return u, true
		}
	}
	return Unit{}, false
}
