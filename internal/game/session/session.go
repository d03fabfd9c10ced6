// Package session owns live character sheets. Every mutation goes through the
// rules engine and the result is written to the sheet store before it becomes
// visible to readers.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dvh/internal/game/character"
	"github.com/cory-johannsen/dvh/internal/game/dice"
	"github.com/cory-johannsen/dvh/internal/game/inventory"
	"github.com/cory-johannsen/dvh/internal/game/ruleset"
	"github.com/cory-johannsen/dvh/internal/storage"
)

var (
	// ErrUnknownSelection is returned when a race, class, origin or item id is
	// not in the catalog.
	ErrUnknownSelection = errors.New("unknown selection")
	// ErrNoSelection is returned when a choice needs a class or origin that is
	// not selected.
	ErrNoSelection = errors.New("nothing selected")
	// ErrUnknownPool is returned for a pool name other than hp, mana, sanity or soul.
	ErrUnknownPool = errors.New("unknown pool")
)

// Roll kinds recorded in the roll history.
const (
	RollAttribute = "attribute"
	RollSkill     = "skill"
	RollSkillDie  = "skill_die"
	RollBonusDie  = "bonus_die"
	RollDamage    = "damage"
	RollCritical  = "critical"
)

// Deps are the collaborators shared by every session.
type Deps struct {
	Catalog *ruleset.Catalog
	Store   storage.SheetStore
	Rolls   storage.RollLog
	Roller  *dice.Roller
	Logger  *zap.Logger
}

// Session serializes access to one sheet.
type Session struct {
	mu     sync.Mutex
	sheet  *character.Sheet
	closed bool // set once the sheet is deleted
	deps   Deps
	log    *zap.Logger
	now    func() time.Time
}

func newSession(sheet *character.Sheet, deps Deps) *Session {
	return &Session{
		sheet: sheet,
		deps:  deps,
		log:   deps.Logger.With(zap.String("sheet", sheet.ID)),
		now:   time.Now,
	}
}

// ID returns the sheet id.
func (s *Session) ID() string { return s.sheet.ID }

// Sheet returns a copy of the current sheet.
func (s *Session) Sheet() *character.Sheet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheet.Clone()
}

// Stats returns the derived stats of the current sheet.
func (s *Session) Stats() character.DerivedStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheet.Stats(s.deps.Catalog.Rules)
}

// live rejects work on a session whose sheet has been deleted.
//
// Precondition: s.mu must be held.
func (s *Session) live() error {
	if s.closed {
		return fmt.Errorf("%w: %s", storage.ErrSheetNotFound, s.sheet.ID)
	}
	return nil
}

// mutate applies fn to a copy of the sheet, reconciles pools and saves. The
// live sheet is only replaced when both fn and the save succeed.
//
// Precondition: s.mu must be held.
func (s *Session) mutate(ctx context.Context, op string, fn func(next *character.Sheet) error) (*character.Sheet, error) {
	if err := s.live(); err != nil {
		return nil, err
	}
	next := s.sheet.Clone()
	if err := fn(next); err != nil {
		s.log.Info("mutation rejected", zap.String("op", op), zap.Error(err))
		return nil, err
	}
	next.Pools = next.Pools.Reconcile(next.Stats(s.deps.Catalog.Rules))
	if err := s.deps.Store.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.sheet = next
	s.log.Debug("sheet updated", zap.String("op", op))
	return next.Clone(), nil
}

func (s *Session) record(ctx context.Context, e storage.RollEntry) {
	e.At = s.now().UTC()
	if err := s.deps.Rolls.Append(ctx, s.sheet.ID, e); err != nil {
		s.log.Warn("recording roll", zap.String("kind", e.Kind), zap.Error(err))
	}
}

// Patch carries the descriptive fields a client may overwrite directly. Nil
// fields are left unchanged.
type Patch struct {
	Name     *string `json:"name,omitempty"`
	Player   *string `json:"player,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Level    *int    `json:"level,omitempty"`
	BagBonus *int    `json:"bag_bonus,omitempty"`
}

// Update applies p. Level is clamped to the valid range.
func (s *Session) Update(ctx context.Context, p Patch) (*character.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(ctx, "update", func(next *character.Sheet) error {
		if p.Name != nil {
			if *p.Name == "" {
				return fmt.Errorf("%w: name must not be empty", character.ErrInvalidChoice)
			}
			next.Name = *p.Name
		}
		if p.Player != nil {
			next.Player = *p.Player
		}
		if p.Notes != nil {
			next.Notes = *p.Notes
		}
		if p.Level != nil {
			next.Level = character.ClampLevel(*p.Level)
		}
		if p.BagBonus != nil {
			if *p.BagBonus < 0 {
				return fmt.Errorf("%w: bag bonus %d", character.ErrAttributeOutOfRange, *p.BagBonus)
			}
			next.BagBonus = *p.BagBonus
		}
		return nil
	})
}

// SetLevel sets the sheet level, clamped to [0, MaxLevel]. Lowering the level
// never refunds or removes allocated points.
func (s *Session) SetLevel(ctx context.Context, level int) (*character.Sheet, error) {
	return s.Update(ctx, Patch{Level: &level})
}

// AllocateAttribute spends or refunds pool points on attribute id.
func (s *Session) AllocateAttribute(ctx context.Context, id character.AttributeID, delta int) (*character.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(ctx, "allocate_attribute", func(next *character.Sheet) error {
		attrs, err := character.AllocateAttribute(next.Attributes, next.Level, id, delta)
		if err != nil {
			return err
		}
		next.Attributes = attrs
		return nil
	})
}

// AdjustPersonal changes the personal component of skill id.
func (s *Session) AdjustPersonal(ctx context.Context, id character.SkillID, delta int) (*character.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(ctx, "adjust_personal", func(next *character.Sheet) error {
		skills, err := character.AdjustPersonal(next.Skills, id, delta)
		if err != nil {
			return err
		}
		next.Skills = skills
		return nil
	})
}

// Select applies the catalog record id as the sheet's kind bonus, replacing
// any previous selection. An empty id clears the selection. Selecting a class
// or origin adds its starting items that fit within carry capacity.
func (s *Session) Select(ctx context.Context, kind character.BonusKind, id string) (*character.Sheet, error) {
	if kind == character.KindClassChoice || !kind.Valid() {
		return nil, fmt.Errorf("%w: kind %q is not selectable", character.ErrInvalidChoice, kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(ctx, "select_"+string(kind), func(next *character.Sheet) error {
		if id == "" {
			next.Ledger, next.Skills = character.RemoveBonus(next.Ledger, next.Skills, kind)
			return nil
		}
		rec, ok := s.deps.Catalog.BonusRecord(kind, id)
		if !ok {
			return fmt.Errorf("%w: %s %q", ErrUnknownSelection, kind, id)
		}
		next.Ledger, next.Skills = character.ApplyBonus(next.Ledger, next.Skills, kind, rec)
		s.grantItems(next, s.startingItems(kind, id))
		return nil
	})
}

func (s *Session) startingItems(kind character.BonusKind, id string) []string {
	switch kind {
	case character.KindClass:
		if c, ok := s.deps.Catalog.Class(id); ok {
			return c.StartingItems
		}
	case character.KindOrigin:
		if o, ok := s.deps.Catalog.Origin(id); ok {
			return o.Items
		}
	}
	return nil
}

// grantItems adds each item not already carried. Items that do not fit are skipped.
func (s *Session) grantItems(next *character.Sheet, ids []string) {
	if len(ids) == 0 || s.deps.Catalog.Items == nil {
		return
	}
	capacity := float64(next.Stats(s.deps.Catalog.Rules).CarryCapacity)
	for _, id := range ids {
		def, ok := s.deps.Catalog.Items.Item(id)
		if !ok {
			continue
		}
		carried := false
		for _, it := range next.Inventory.Items {
			if it.ItemDefID == id {
				carried = true
				break
			}
		}
		if carried {
			continue
		}
		if _, err := next.Inventory.Add(def, 1, capacity); err != nil {
			s.log.Info("starting item skipped", zap.String("item", id), zap.Error(err))
		}
	}
}

// ChooseClassSkill applies the selected class's single-choice bonus to skill.
func (s *Session) ChooseClassSkill(ctx context.Context, skill character.SkillID) (*character.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(ctx, "choose_class_skill", func(next *character.Sheet) error {
		classID := next.Ledger.SelectionID(character.KindClass)
		if classID == "" {
			return fmt.Errorf("%w: class", ErrNoSelection)
		}
		ledger, skills, err := character.ApplyClassChoice(next.Ledger, next.Skills, s.deps.Catalog.Rules, classID, skill)
		if err != nil {
			return err
		}
		next.Ledger, next.Skills = ledger, skills
		return nil
	})
}

// ChooseOriginSkills replaces the selected origin's bonus with the chosen skills.
func (s *Session) ChooseOriginSkills(ctx context.Context, chosen []character.SkillID) (*character.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(ctx, "choose_origin_skills", func(next *character.Sheet) error {
		originID := next.Ledger.SelectionID(character.KindOrigin)
		if originID == "" {
			return fmt.Errorf("%w: origin", ErrNoSelection)
		}
		origin, ok := s.deps.Catalog.Origin(originID)
		if !ok || origin.ChooseSkills == 0 {
			return fmt.Errorf("%w: origin %q has no skill choice", character.ErrInvalidChoice, originID)
		}
		ledger, skills, err := character.ApplyOriginChoices(next.Ledger, next.Skills, originID, chosen, origin.ChooseSkills)
		if err != nil {
			return err
		}
		next.Ledger, next.Skills = ledger, skills
		return nil
	})
}

// RollSkillDie rolls or clears the manual d6 of skill id.
func (s *Session) RollSkillDie(ctx context.Context, id character.SkillID) (character.DieRoll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var roll character.DieRoll
	_, err := s.mutate(ctx, "roll_skill_die", func(next *character.Sheet) error {
		class, _ := next.Ledger.Record(character.KindClass)
		skills, r, err := character.RollSkillDie(next.Skills, id, next.Level, class.Stats.ExtraDieSlots, s.deps.Roller)
		if err != nil {
			return err
		}
		next.Skills, roll = skills, r
		return nil
	})
	if err != nil {
		return character.DieRoll{}, err
	}
	if !roll.Cleared {
		s.record(ctx, storage.RollEntry{Kind: RollSkillDie, Label: string(id), Rolls: []int{roll.Value}, Result: roll.Value})
	}
	return roll, nil
}

// RollBonusDie rolls or clears the face bonus die of skill id.
func (s *Session) RollBonusDie(ctx context.Context, id character.SkillID, face character.Face) (character.DieRoll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var roll character.DieRoll
	_, err := s.mutate(ctx, "roll_bonus_die", func(next *character.Sheet) error {
		skills, r, err := character.RollBonusDie(next.Skills, id, face, next.Level, s.deps.Roller)
		if err != nil {
			return err
		}
		next.Skills, roll = skills, r
		return nil
	})
	if err != nil {
		return character.DieRoll{}, err
	}
	if !roll.Cleared {
		s.record(ctx, storage.RollEntry{
			Kind: RollBonusDie, Label: fmt.Sprintf("%s d%d", id, face), Rolls: []int{roll.Value}, Result: roll.Value,
		})
	}
	return roll, nil
}

// RollAttribute makes an attribute check with the current value of id.
func (s *Session) RollAttribute(ctx context.Context, id character.AttributeID) (character.CheckResult, error) {
	if !id.Valid() {
		return character.CheckResult{}, fmt.Errorf("%w: %q", character.ErrUnknownAttribute, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.live(); err != nil {
		return character.CheckResult{}, err
	}
	res := character.RollAttributeCheck(s.sheet.Attributes.Get(id), s.deps.Roller)
	s.log.Debug("attribute check", zap.String("attribute", string(id)), zap.Stringer("pool", res.Pool))
	s.record(ctx, storage.RollEntry{
		Kind: RollAttribute, Label: string(id), Rolls: res.Pool.Rolls, Result: res.Result, Detail: res.Pool.String(),
	})
	return res, nil
}

// RollSkill makes a skill check: the pool comes from the governing attribute
// and the skill total is added to the kept die.
func (s *Session) RollSkill(ctx context.Context, id character.SkillID) (character.CheckResult, error) {
	attr, ok := character.GoverningAttribute(id)
	if !ok {
		return character.CheckResult{}, fmt.Errorf("%w: %q", character.ErrUnknownSkill, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.live(); err != nil {
		return character.CheckResult{}, err
	}
	res := character.RollSkillCheck(s.sheet.Attributes.Get(attr), s.sheet.SkillTotal(id), s.deps.Roller)
	s.log.Debug("skill check",
		zap.String("skill", string(id)),
		zap.Int("skill_total", res.SkillTotal),
		zap.Stringer("pool", res.Pool),
	)
	s.record(ctx, storage.RollEntry{
		Kind: RollSkill, Label: string(id), Rolls: res.Pool.Rolls, Result: res.Result,
		Detail: fmt.Sprintf("%s %+d", res.Pool, res.SkillTotal),
	})
	return res, nil
}

// AdjustPool adds delta to the current value of the named pool, clamped to
// [0, total]. Names are hp, mana, sanity and soul.
func (s *Session) AdjustPool(ctx context.Context, name string, delta int) (*character.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(ctx, "adjust_pool", func(next *character.Sheet) error {
		stats := next.Stats(s.deps.Catalog.Rules)
		next.Pools = next.Pools.Reconcile(stats)
		var cur *int
		var total int
		switch name {
		case "hp":
			cur, total = &next.Pools.HP, stats.HP
		case "mana":
			cur, total = &next.Pools.Mana, stats.Mana
		case "sanity":
			cur, total = &next.Pools.Sanity, stats.Sanity
		case "soul":
			cur, total = &next.Pools.Soul, stats.Soul
		default:
			return fmt.Errorf("%w: %q", ErrUnknownPool, name)
		}
		*cur = max(0, min(total, *cur+delta))
		return nil
	})
}

// AddItem adds quantity of catalog item itemID to the inventory.
func (s *Session) AddItem(ctx context.Context, itemID string, quantity int) (inventory.Instance, error) {
	def, ok := s.deps.Catalog.Items.Item(itemID)
	if !ok {
		return inventory.Instance{}, fmt.Errorf("%w: item %q", ErrUnknownSelection, itemID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var inst inventory.Instance
	_, err := s.mutate(ctx, "add_item", func(next *character.Sheet) error {
		capacity := float64(next.Stats(s.deps.Catalog.Rules).CarryCapacity)
		added, err := next.Inventory.Add(def, quantity, capacity)
		if err != nil {
			return err
		}
		inst = added
		return nil
	})
	return inst, err
}

// RemoveItem removes quantity of the carried instance.
func (s *Session) RemoveItem(ctx context.Context, instanceID string, quantity int) (*character.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(ctx, "remove_item", func(next *character.Sheet) error {
		return next.Inventory.Remove(instanceID, quantity)
	})
}

// WeaponRoll is the outcome of a weapon damage roll. Critical is set only for
// critical hits.
type WeaponRoll struct {
	Weapon   string               `json:"weapon"`
	Damage   *dice.RollResult     `json:"damage,omitempty"`
	Critical *dice.CriticalResult `json:"critical,omitempty"`
	Range    int                  `json:"crit_range"`
}

// RollWeapon rolls damage for a carried weapon instance.
func (s *Session) RollWeapon(ctx context.Context, instanceID string, critical bool) (WeaponRoll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.live(); err != nil {
		return WeaponRoll{}, err
	}
	inst, ok := s.sheet.Inventory.Find(instanceID)
	if !ok {
		return WeaponRoll{}, fmt.Errorf("%w: %s", inventory.ErrItemNotFound, instanceID)
	}
	def, ok := s.deps.Catalog.Items.Item(inst.ItemDefID)
	if !ok {
		return WeaponRoll{}, fmt.Errorf("%w: item %q", ErrUnknownSelection, inst.ItemDefID)
	}
	out := WeaponRoll{Weapon: def.ID, Range: inventory.CritRange(def.Properties)}
	if critical {
		res, err := inventory.RollWeaponCritical(def, s.deps.Roller)
		if err != nil {
			return WeaponRoll{}, err
		}
		out.Critical = &res
		var faces []int
		for _, r := range res.Rolls {
			faces = append(faces, r.Dice...)
		}
		s.record(ctx, storage.RollEntry{
			Kind: RollCritical, Label: def.ID, Rolls: faces, Result: res.Total, Detail: res.Policy.String(),
		})
		return out, nil
	}
	res, err := inventory.RollWeaponDamage(def, s.deps.Roller)
	if err != nil {
		return WeaponRoll{}, err
	}
	out.Damage = &res
	s.record(ctx, storage.RollEntry{
		Kind: RollDamage, Label: def.ID, Rolls: res.Dice, Result: res.Total(), Detail: res.String(),
	})
	return out, nil
}

// History returns the n most recent rolls, newest first.
func (s *Session) History(ctx context.Context, n int) ([]storage.RollEntry, error) {
	return s.deps.Rolls.Recent(ctx, s.sheet.ID, n)
}
