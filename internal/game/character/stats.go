package character

// DerivedStats are the totals computed from a sheet's inputs.
type DerivedStats struct {
	HP            int `json:"hp"`
	Mana          int `json:"mana"`
	Sanity        int `json:"sanity"`
	Soul          int `json:"soul"`
	Defense       int `json:"defense"`
	Dodge         int `json:"dodge"`
	Block         int `json:"block"`
	CarryCapacity int `json:"carry_capacity"`
}

// ComputeDerivedStats derives every stat from attributes, resolved skill totals,
// the applied class and race records, level and the bag bonus.
//
// Postcondition: HP >= 1 and every other stat >= 0. Equal inputs give equal outputs.
func ComputeDerivedStats(attrs Attributes, skills Skills, ledger Ledger, level, bagBonus int, rules *Rules) DerivedStats {
	class, _ := ledger.Record(KindClass)
	race, _ := ledger.Record(KindRace)
	a := attrs.Get

	var d DerivedStats
	d.HP = max(1, a(Resilience)*3+10+class.Stats.HP+
		rules.progression(class.ID, level, attrs, func(p ClassProgression) ProgressionStep { return p.HP }))
	d.Mana = max(0, a(Magic)*5+15+class.Stats.Mana+
		rules.progression(class.ID, level, attrs, func(p ClassProgression) ProgressionStep { return p.Mana }))
	d.Sanity = max(0, a(Intellect)*5+a(Charisma)*3+10+class.Stats.Sanity+
		rules.progression(class.ID, level, attrs, func(p ClassProgression) ProgressionStep { return p.Sanity }))
	d.Soul = soulPoints(attrs, race, class.ID, rules)
	d.Defense = max(0, a(Constitution)+10+class.Stats.Defense)
	d.Dodge = max(0, d.Defense+skills.Total(Reflexes, level)+a(Dexterity))
	d.Block = max(0, a(Constitution)*2+ceilHalf(skills.Total(Fortitude, level)))
	d.CarryCapacity = max(0, a(Strength)*2+3+bagBonus)
	return d
}

func soulPoints(attrs Attributes, race BonusRecord, classID string, rules *Rules) int {
	delta := 0
	if race.SoulDelta != nil {
		delta = *race.SoulDelta
		if delta == 0 && rules.soulless(race.ID) {
			return 0
		}
	}
	a := attrs.Get
	return max(0, a(Magic)*5+a(Resilience)*3+a(Intellect)*2+15+delta-rules.soulPenalty(classID))
}

// ceilHalf returns ceil(n/2) for any sign of n.
func ceilHalf(n int) int {
	if n >= 0 {
		return (n + 1) / 2
	}
	return -(-n / 2)
}

// Pools are the current values of the depletable stats.
type Pools struct {
	HP          int  `json:"hp"`
	Mana        int  `json:"mana"`
	Sanity      int  `json:"sanity"`
	Soul        int  `json:"soul"`
	Initialized bool `json:"initialized"`
}

// Reconcile clamps each current value to its new total. The first call fills
// every pool to its total.
func (p Pools) Reconcile(d DerivedStats) Pools {
	if !p.Initialized {
		return Pools{HP: d.HP, Mana: d.Mana, Sanity: d.Sanity, Soul: d.Soul, Initialized: true}
	}
	p.HP = min(p.HP, d.HP)
	p.Mana = min(p.Mana, d.Mana)
	p.Sanity = min(p.Sanity, d.Sanity)
	p.Soul = min(p.Soul, d.Soul)
	return p
}
