// Package character holds the sheet model and the pure rules engine: point
// pool allocation, the bonus ledger, derived stats, skill dice and checks.
package character

import (
	"time"

	"github.com/cory-johannsen/dvh/internal/game/inventory"
)

// Sheet is a character's persistent state.
//
// ID is set by the persistence layer; an empty ID indicates an unsaved sheet.
type Sheet struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Player string `json:"player,omitempty"`
	Notes  string `json:"notes,omitempty"`

	Level    int `json:"level"`
	BagBonus int `json:"bag_bonus"`

	Attributes Attributes          `json:"attributes"`
	Skills     Skills              `json:"skills"`
	Ledger     Ledger              `json:"ledger"`
	Pools      Pools               `json:"pools"`
	Inventory  inventory.Inventory `json:"inventory"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSheet returns an unsaved level 0 sheet with every attribute and skill at zero.
//
// Postcondition: Pools are initialized to the base derived stats.
func NewSheet(name string) *Sheet {
	s := &Sheet{
		Name:       name,
		Attributes: NewAttributes(),
		Skills:     NewSkills(),
		Ledger:     Ledger{},
	}
	s.Pools = s.Pools.Reconcile(s.Stats(nil))
	return s
}

// Normalize fills nil maps and clamps the level, for sheets decoded from storage.
func (s *Sheet) Normalize() {
	if s.Attributes == nil {
		s.Attributes = NewAttributes()
	}
	if s.Skills == nil {
		s.Skills = NewSkills()
	}
	if s.Ledger == nil {
		s.Ledger = Ledger{}
	}
	s.Level = ClampLevel(s.Level)
}

// Stats computes the sheet's derived stats under rules.
func (s *Sheet) Stats(rules *Rules) DerivedStats {
	return ComputeDerivedStats(s.Attributes, s.Skills, s.Ledger, s.Level, s.BagBonus, rules)
}

// SkillTotal returns the resolved total of id at the sheet's level.
func (s *Sheet) SkillTotal(id SkillID) int {
	return s.Skills.Total(id, s.Level)
}

// Remaining returns the unallocated attribute points.
func (s *Sheet) Remaining() int {
	return RemainingPoints(s.Level, s.Attributes)
}

// Clone returns a deep copy of s.
func (s *Sheet) Clone() *Sheet {
	out := *s
	out.Attributes = s.Attributes.Clone()
	out.Skills = s.Skills.Clone()
	out.Ledger = s.Ledger.Clone()
	out.Inventory = s.Inventory.Clone()
	return &out
}
