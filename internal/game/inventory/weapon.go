package inventory

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cory-johannsen/dvh/internal/game/dice"
)

// DefaultCritRange is the natural d20 needed for a critical when a weapon
// declares none.
const DefaultCritRange = 20

var critRangePattern = regexp.MustCompile(`(?i)critical:\s*(\d+)(?:\s*-\s*\d+)?`)

// CritPolicyFor reads a weapon's critical multiplier from its properties,
// taken together so a range and a multiplier may sit in separate entries.
// "18-20" or "x3" triples; a 19 or 20 range marked "x2" doubles; anything else
// rolls the damage twice. "×" reads as "x".
func CritPolicyFor(properties []string) dice.CritPolicy {
	props := strings.ReplaceAll(strings.ToLower(strings.Join(properties, " ")), "×", "x")
	switch {
	case strings.Contains(props, "18-20") || strings.Contains(props, "x3"):
		return dice.CritTriple
	case strings.Contains(props, "x2") && (strings.Contains(props, "19") || strings.Contains(props, "20")):
		return dice.CritDouble
	}
	return dice.CritRollTwice
}

// CritRange returns the lowest natural d20 that scores a critical, parsed from a
// "Critical: N" or "Critical: N-M" property.
func CritRange(properties []string) int {
	for _, p := range properties {
		m := critRangePattern.FindStringSubmatch(p)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= dice.PoolSides {
			return n
		}
	}
	return DefaultCritRange
}

// RollWeaponDamage rolls def's damage expression through roller.
//
// Precondition: def must be a weapon.
func RollWeaponDamage(def *ItemDef, roller *dice.Roller) (dice.RollResult, error) {
	if def.Kind != KindWeapon {
		return dice.RollResult{}, fmt.Errorf("%w: %q", ErrNotWeapon, def.ID)
	}
	return roller.RollExpr(def.Damage)
}

// RollWeaponCritical rolls def's critical damage under the policy its
// properties declare.
//
// Precondition: def must be a weapon.
func RollWeaponCritical(def *ItemDef, roller *dice.Roller) (dice.CriticalResult, error) {
	if def.Kind != KindWeapon {
		return dice.CriticalResult{}, fmt.Errorf("%w: %q", ErrNotWeapon, def.ID)
	}
	expr, err := dice.Parse(def.Damage)
	if err != nil {
		return dice.CriticalResult{}, err
	}
	return roller.RollCritical(expr, CritPolicyFor(def.Properties)), nil
}
