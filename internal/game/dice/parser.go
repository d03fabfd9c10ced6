package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Term is a single "XdY" group inside an Expression.
type Term struct {
	Count int // number of dice
	Sides int // faces per die
}

// Expression represents a parsed dice expression ready to be rolled.
//
// Invariant: every Term has Count >= 1 and Sides >= 1 after a successful Parse.
type Expression struct {
	Raw      string // original input string
	Terms    []Term // dice groups in input order
	Modifier int    // sum of flat terms (may be negative)
}

// DiceCount returns the total number of dice across all terms.
func (e Expression) DiceCount() int {
	n := 0
	for _, t := range e.Terms {
		n += t.Count
	}
	return n
}

// Parse parses a damage-style dice expression into an Expression.
// Supported forms: "d20", "2d6", "2d6+3", "1d8+1d4+2", "1d10-1", "3".
// Whitespace is ignored. Dice groups may only be added; flat terms may be
// added or subtracted.
//
// Precondition: expr must be a non-empty string.
// Postcondition: Returns an Expression with at least one term or modifier, or a descriptive error.
func Parse(expr string) (Expression, error) {
	raw := strings.TrimSpace(expr)
	if raw == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	s := strings.ToLower(strings.Join(strings.Fields(raw), ""))

	out := Expression{Raw: raw}
	sign := 1
	start := 0
	if s[0] == '+' || s[0] == '-' {
		if s[0] == '-' {
			sign = -1
		}
		start = 1
	}
	for i := start; i <= len(s); i++ {
		if i < len(s) && s[i] != '+' && s[i] != '-' {
			continue
		}
		tok := s[start:i]
		if tok == "" {
			return Expression{}, fmt.Errorf("dice: empty term in %q", raw)
		}
		if err := out.addTerm(tok, sign); err != nil {
			return Expression{}, fmt.Errorf("dice: %w in %q", err, raw)
		}
		if i < len(s) {
			sign = 1
			if s[i] == '-' {
				sign = -1
			}
		}
		start = i + 1
	}
	return out, nil
}

func (e *Expression) addTerm(tok string, sign int) error {
	dIdx := strings.IndexByte(tok, 'd')
	if dIdx < 0 {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return fmt.Errorf("invalid flat term %q", tok)
		}
		e.Modifier += sign * n
		return nil
	}
	if sign < 0 {
		return fmt.Errorf("dice group %q cannot be subtracted", tok)
	}
	count := 1
	if dIdx > 0 {
		n, err := strconv.Atoi(tok[:dIdx])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid die count in %q", tok)
		}
		count = n
	}
	sides, err := strconv.Atoi(tok[dIdx+1:])
	if err != nil || sides <= 0 {
		return fmt.Errorf("invalid die sides in %q", tok)
	}
	e.Terms = append(e.Terms, Term{Count: count, Sides: sides})
	return nil
}

// MustParse parses expr and panics on error. Useful for package-level constants.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}
