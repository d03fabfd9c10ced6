package character

import "slices"

// AttributeID names one of the twelve base attributes.
type AttributeID string

// Test attributes drive dice pools and most derived stats.
const (
	Strength     AttributeID = "strength"
	Dexterity    AttributeID = "dexterity"
	Intellect    AttributeID = "intellect"
	Wisdom       AttributeID = "wisdom"
	Charisma     AttributeID = "charisma"
	Magic        AttributeID = "magic"
	Constitution AttributeID = "constitution"
)

// Luck attributes share the point pool with the test attributes.
const (
	Luck       AttributeID = "luck"
	Fame       AttributeID = "fame"
	Resilience AttributeID = "resilience"
	Faith      AttributeID = "faith"
	Creativity AttributeID = "creativity"
)

// Group distinguishes test attributes from luck attributes.
type Group string

const (
	GroupTest Group = "test"
	GroupLuck Group = "luck"
)

// Range bounds shared by attributes and the additive skill components.
const (
	MinValue = -5
	MaxValue = 5
)

var testAttributes = []AttributeID{Strength, Dexterity, Intellect, Wisdom, Charisma, Magic, Constitution}

var luckAttributes = []AttributeID{Luck, Fame, Resilience, Faith, Creativity}

// TestAttributes returns the test attribute ids in display order.
func TestAttributes() []AttributeID { return slices.Clone(testAttributes) }

// LuckAttributes returns the luck attribute ids in display order.
func LuckAttributes() []AttributeID { return slices.Clone(luckAttributes) }

// AllAttributes returns every attribute id, test group first.
func AllAttributes() []AttributeID {
	return append(TestAttributes(), luckAttributes...)
}

// Group reports which group id belongs to.
//
// Postcondition: ok is false iff id is not a registered attribute.
func (id AttributeID) Group() (g Group, ok bool) {
	switch {
	case slices.Contains(testAttributes, id):
		return GroupTest, true
	case slices.Contains(luckAttributes, id):
		return GroupLuck, true
	}
	return "", false
}

// Valid reports whether id is a registered attribute.
func (id AttributeID) Valid() bool {
	_, ok := id.Group()
	return ok
}

// Attributes maps attribute ids to their allocated values. Missing keys read as 0.
type Attributes map[AttributeID]int

// NewAttributes returns a map holding every attribute at 0.
func NewAttributes() Attributes {
	a := make(Attributes, len(testAttributes)+len(luckAttributes))
	for _, id := range AllAttributes() {
		a[id] = 0
	}
	return a
}

// Get returns the value of id, 0 when unset.
func (a Attributes) Get(id AttributeID) int { return a[id] }

// Spent returns the sum of all values across both groups.
func (a Attributes) Spent() int {
	sum := 0
	for _, v := range a {
		sum += v
	}
	return sum
}

// Clone returns an independent copy of a.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
