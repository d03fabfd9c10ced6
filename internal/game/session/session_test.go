package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/dvh/internal/game/character"
	"github.com/cory-johannsen/dvh/internal/game/dice"
	"github.com/cory-johannsen/dvh/internal/game/inventory"
	"github.com/cory-johannsen/dvh/internal/game/ruleset"
	"github.com/cory-johannsen/dvh/internal/game/session"
	"github.com/cory-johannsen/dvh/internal/storage"
)

type flakyStore struct {
	*storage.MemoryStore
	mu   sync.Mutex
	fail bool
}

func (f *flakyStore) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *flakyStore) Save(ctx context.Context, s *character.Sheet) error {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return f.MemoryStore.Save(ctx, s)
}

func (f *flakyStore) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("disk full")
	}
	return nil
}

func testCatalog(t *testing.T) *ruleset.Catalog {
	t.Helper()
	c := ruleset.NewCatalog()
	require.NoError(t, c.RegisterRace(&ruleset.Race{ID: "human", Name: "Human",
		Bonus: ruleset.BonusDef{Skills: map[string]int{"diplomacy": 1}}}))
	require.NoError(t, c.RegisterRace(&ruleset.Race{ID: "elf", Name: "Elf",
		Bonus: ruleset.BonusDef{Skills: map[string]int{"bows": 2}}}))
	require.NoError(t, c.RegisterClass(&ruleset.Class{ID: "fighter", Name: "Fighter",
		Bonus:         ruleset.BonusDef{HP: 6, ExtraDieSlots: 2, Skills: map[string]int{"athletics": 2}},
		StartingItems: []string{"longsword"}}))
	require.NoError(t, c.RegisterOrigin(&ruleset.Origin{ID: "amnesiac", Name: "Amnesiac", ChooseSkills: 2}))
	require.NoError(t, c.RegisterOrigin(&ruleset.Origin{ID: "soldier", Name: "Soldier",
		Bonus: ruleset.BonusDef{Skills: map[string]int{"athletics": 1}}}))
	require.NoError(t, c.Items.RegisterItem(&inventory.ItemDef{
		ID: "longsword", Name: "Longsword", Kind: inventory.KindWeapon, Weight: 3,
		Damage: "1d8+1", Properties: []string{"Critical: 19-20 (x2)"},
	}))
	require.NoError(t, c.Items.RegisterItem(&inventory.ItemDef{
		ID: "anvil", Name: "Anvil", Kind: inventory.KindGear, Weight: 50,
	}))
	return c
}

type fixture struct {
	mgr   *session.Manager
	store *flakyStore
	rolls *storage.MemoryRollLog
	src   *dice.FixedSource
}

func newFixture(t *testing.T, faces ...int) *fixture {
	t.Helper()
	if len(faces) == 0 {
		faces = []int{10}
	}
	logger := zaptest.NewLogger(t)
	f := &fixture{
		store: &flakyStore{MemoryStore: storage.NewMemoryStore()},
		rolls: storage.NewMemoryRollLog(20),
		src:   dice.NewFixedSource(faces...),
	}
	f.mgr = session.NewManager(session.Deps{
		Catalog: testCatalog(t),
		Store:   f.store,
		Rolls:   f.rolls,
		Roller:  dice.NewLoggedRoller(f.src, logger),
		Logger:  logger,
	})
	return f
}

func TestManager_CreateOpenList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.mgr.Create(ctx, "Vex")
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID())

	stored, err := f.store.Load(ctx, sess.ID())
	require.NoError(t, err)
	assert.True(t, stored.Pools.Initialized)
	assert.Equal(t, 10, stored.Pools.HP)

	same, err := f.mgr.Open(ctx, sess.ID())
	require.NoError(t, err)
	assert.Same(t, sess, same)

	f.mgr.Close(sess.ID())
	assert.Equal(t, 0, f.mgr.Len())
	reopened, err := f.mgr.Open(ctx, sess.ID())
	require.NoError(t, err)
	assert.NotSame(t, sess, reopened)
	assert.Equal(t, "Vex", reopened.Sheet().Name)

	list, err := f.mgr.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.mgr.Open(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrSheetNotFound)

	_, err = f.mgr.Create(ctx, "")
	assert.ErrorIs(t, err, character.ErrInvalidChoice)
}

func TestManager_PingUsesStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assert.NoError(t, f.mgr.Ping(ctx))
	f.store.setFail(true)
	assert.EqualError(t, f.mgr.Ping(ctx), "disk full")
}

func TestManager_DeleteClearsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, err := f.mgr.Create(ctx, "Vex")
	require.NoError(t, err)
	_, err = sess.RollAttribute(ctx, character.Strength)
	require.NoError(t, err)

	require.NoError(t, f.mgr.Delete(ctx, sess.ID()))
	hist, err := f.rolls.Recent(ctx, sess.ID(), 0)
	require.NoError(t, err)
	assert.Empty(t, hist)
	assert.ErrorIs(t, f.mgr.Delete(ctx, sess.ID()), storage.ErrSheetNotFound)
}

func TestManager_DeletedSessionRejectsWork(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, err := f.mgr.Create(ctx, "Vex")
	require.NoError(t, err)
	id := sess.ID()
	require.NoError(t, f.mgr.Delete(ctx, id))

	_, err = sess.AllocateAttribute(ctx, character.Strength, 1)
	assert.ErrorIs(t, err, storage.ErrSheetNotFound)
	_, err = sess.Select(ctx, character.KindRace, "human")
	assert.ErrorIs(t, err, storage.ErrSheetNotFound)
	_, err = sess.RollAttribute(ctx, character.Strength)
	assert.ErrorIs(t, err, storage.ErrSheetNotFound)
	_, err = sess.RollSkill(ctx, "swords")
	assert.ErrorIs(t, err, storage.ErrSheetNotFound)

	_, err = f.store.Load(ctx, id)
	assert.ErrorIs(t, err, storage.ErrSheetNotFound, "deleted sheet stays deleted")
	hist, err := f.rolls.Recent(ctx, id, 0)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestSession_AllocateRejectionLeavesSheet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, err := f.mgr.Create(ctx, "Vex")
	require.NoError(t, err)

	_, err = sess.AllocateAttribute(ctx, character.Strength, 5)
	require.NoError(t, err)
	_, err = sess.AllocateAttribute(ctx, character.Dexterity, 5)
	require.NoError(t, err)
	_, err = sess.AllocateAttribute(ctx, character.Wisdom, 4)
	assert.ErrorIs(t, err, character.ErrPoolExhausted)

	sheet := sess.Sheet()
	assert.Equal(t, 0, sheet.Attributes.Get(character.Wisdom))
	assert.Equal(t, 3, sheet.Remaining())

	stored, err := f.store.Load(ctx, sess.ID())
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Attributes.Get(character.Dexterity))
}

func TestSession_SaveFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, err := f.mgr.Create(ctx, "Vex")
	require.NoError(t, err)

	f.store.setFail(true)
	_, err = sess.AllocateAttribute(ctx, character.Strength, 2)
	require.Error(t, err)
	assert.Equal(t, 0, sess.Sheet().Attributes.Get(character.Strength))

	f.store.setFail(false)
	_, err = sess.AllocateAttribute(ctx, character.Strength, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, sess.Sheet().Attributes.Get(character.Strength))
}

func TestSession_SelectSwitchesAndClears(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, err := f.mgr.Create(ctx, "Vex")
	require.NoError(t, err)

	sheet, err := sess.Select(ctx, character.KindRace, "human")
	require.NoError(t, err)
	assert.Equal(t, 1, sheet.Skills["diplomacy"].Race)

	sheet, err = sess.Select(ctx, character.KindRace, "elf")
	require.NoError(t, err)
	assert.Equal(t, 0, sheet.Skills["diplomacy"].Race)
	assert.Equal(t, 2, sheet.Skills["bows"].Race)
	assert.Equal(t, "elf", sheet.Ledger.SelectionID(character.KindRace))

	sheet, err = sess.Select(ctx, character.KindRace, "")
	require.NoError(t, err)
	assert.Equal(t, 0, sheet.Skills["bows"].Race)
	assert.Empty(t, sheet.Ledger.SelectionID(character.KindRace))

	_, err = sess.Select(ctx, character.KindRace, "orc")
	assert.ErrorIs(t, err, session.ErrUnknownSelection)
	_, err = sess.Select(ctx, character.KindClassChoice, "swords")
	assert.ErrorIs(t, err, character.ErrInvalidChoice)
}

func TestSession_SelectClassGrantsStartingItemsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, err := f.mgr.Create(ctx, "Vex")
	require.NoError(t, err)
	_, err = sess.AllocateAttribute(ctx, character.Strength, 2)
	require.NoError(t, err)

	sheet, err := sess.Select(ctx, character.KindClass, "fighter")
	require.NoError(t, err)
	require.Len(t, sheet.Inventory.Items, 1)
	assert.Equal(t, "longsword", sheet.Inventory.Items[0].ItemDefID)
	assert.Equal(t, 16, sheet.Stats(nil).HP)

	sheet, err = sess.Select(ctx, character.KindClass, "fighter")
	require.NoError(t, err)
	assert.Len(t, sheet.Inventory.Items, 1)
}

func TestSession_ClassChoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, err := f.mgr.Create(ctx, "Vex")
	require.NoError(t, err)

	_, err = sess.ChooseClassSkill(ctx, "swords")
	assert.ErrorIs(t, err, session.ErrNoSelection)

	_, err = sess.Select(ctx, character.KindClass, "fighter")
	require.NoError(t, err)
	sheet, err := sess.ChooseClassSkill(ctx, "swords")
	require.NoError(t, err)
	assert.Equal(t, 5, sheet.Skills["swords"].Class)

	_, err = sess.ChooseClassSkill(ctx, "arts")
	assert.ErrorIs(t, err, character.ErrInvalidChoice)

	sheet, err = sess.Select(ctx, character.KindClass, "")
	require.NoError(t, err)
	assert.Equal(t, 0, sheet.Skills["swords"].Class)
}

func TestSession_OriginChoices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, err := f.mgr.Create(ctx, "Vex")
	require.NoError(t, err)

	_, err = sess.ChooseOriginSkills(ctx, []character.SkillID{"bows"})
	assert.ErrorIs(t, err, session.ErrNoSelection)

	_, err = sess.Select(ctx, character.KindOrigin, "soldier")
	require.NoError(t, err)
	_, err = sess.ChooseOriginSkills(ctx, []character.SkillID{"bows"})
	assert.ErrorIs(t, err, character.ErrInvalidChoice)

	_, err = sess.Select(ctx, character.KindOrigin, "amnesiac")
	require.NoError(t, err)
	sheet, err := sess.ChooseOriginSkills(ctx, []character.SkillID{"bows", "diplomacy"})
	require.NoError(t, err)
	assert.Equal(t, 2, sheet.Skills["bows"].Origin)
	assert.Equal(t, 2, sheet.Skills["diplomacy"].Origin)
	assert.Equal(t, 0, sheet.Skills["athletics"].Origin)

	_, err = sess.ChooseOriginSkills(ctx, []character.SkillID{"bows", "diplomacy", "athletics"})
	assert.ErrorIs(t, err, character.ErrInvalidChoice)
}

func TestSession_SkillDieUsesClassSlots(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	sess, err := f.mgr.Create(ctx, "Vex")
	require.NoError(t, err)

	skills := character.AllSkills()
	for i := 0; i < character.ManualDieCap(0); i++ {
		roll, err := sess.RollSkillDie(ctx, skills[i])
		require.NoError(t, err)
		assert.Equal(t, 4, roll.Value)
	}
	_, err = sess.RollSkillDie(ctx, skills[10])
	assert.ErrorIs(t, err, character.ErrDieCapReached)

	_, err = sess.Select(ctx, character.KindClass, "fighter")
	require.NoError(t, err)
	_, err = sess.RollSkillDie(ctx, skills[10])
	assert.NoError(t, err)

	cleared, err := sess.RollSkillDie(ctx, skills[0])
	require.NoError(t, err)
	assert.True(t, cleared.Cleared)
	assert.Equal(t, 0, sess.Sheet().Skills[skills[0]].Die)
}

func TestSession_BonusDieGatedByLevel(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	sess, err := f.mgr.Create(ctx, "Vex")
	require.NoError(t, err)

	_, err = sess.RollBonusDie(ctx, "bows", character.D4)
	assert.ErrorIs(t, err, character.ErrDieUnavailable)

	_, err = sess.SetLevel(ctx, 15)
	require.NoError(t, err)
	roll, err := sess.RollBonusDie(ctx, "bows", character.D4)
	require.NoError(t, err)
	assert.Equal(t, 3, roll.Value)
	assert.Equal(t, 3, sess.Sheet().SkillTotal("bows"))

	hist, err := sess.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, session.RollBonusDie, hist[0].Kind)
}

func TestSession_ChecksAreRecorded(t *testing.T) {
	f := newFixture(t, 17, 4, 9, 12)
	ctx := context.Background()
	sess, err := f.mgr.Create(ctx, "Vex")
	require.NoError(t, err)
	_, err = sess.AllocateAttribute(ctx, character.Dexterity, 2)
	require.NoError(t, err)

	res, err := sess.RollAttribute(ctx, character.Dexterity)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pool.Count)
	assert.Equal(t, 17, res.Result)

	_, err = sess.AdjustPersonal(ctx, character.Reflexes, 2)
	require.NoError(t, err)
	skill, err := sess.RollSkill(ctx, character.Reflexes)
	require.NoError(t, err)
	assert.Equal(t, 2, skill.SkillTotal)
	assert.Equal(t, skill.Pool.Kept+2, skill.Result)

	_, err = sess.RollAttribute(ctx, "charm")
	assert.ErrorIs(t, err, character.ErrUnknownAttribute)
	_, err = sess.RollSkill(ctx, "juggling")
	assert.ErrorIs(t, err, character.ErrUnknownSkill)

	hist, err := sess.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, session.RollSkill, hist[0].Kind)
	assert.Equal(t, session.RollAttribute, hist[1].Kind)
}

func TestSession_PoolsClampAndHeal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, err := f.mgr.Create(ctx, "Vex")
	require.NoError(t, err)

	sheet, err := sess.AdjustPool(ctx, "hp", -4)
	require.NoError(t, err)
	assert.Equal(t, 6, sheet.Pools.HP)

	sheet, err = sess.AdjustPool(ctx, "hp", 100)
	require.NoError(t, err)
	assert.Equal(t, 10, sheet.Pools.HP)

	sheet, err = sess.AdjustPool(ctx, "mana", -100)
	require.NoError(t, err)
	assert.Equal(t, 0, sheet.Pools.Mana)

	_, err = sess.AdjustPool(ctx, "stamina", 1)
	assert.ErrorIs(t, err, session.ErrUnknownPool)
}

func TestSession_InventoryAndWeapons(t *testing.T) {
	f := newFixture(t, 6)
	ctx := context.Background()
	sess, err := f.mgr.Create(ctx, "Vex")
	require.NoError(t, err)

	inst, err := sess.AddItem(ctx, "longsword", 1)
	require.NoError(t, err)
	_, err = sess.AddItem(ctx, "anvil", 1)
	assert.ErrorIs(t, err, inventory.ErrOverCapacity)
	_, err = sess.AddItem(ctx, "spoon", 1)
	assert.ErrorIs(t, err, session.ErrUnknownSelection)

	roll, err := sess.RollWeapon(ctx, inst.InstanceID, false)
	require.NoError(t, err)
	require.NotNil(t, roll.Damage)
	assert.Equal(t, 7, roll.Damage.Total())
	assert.Equal(t, 19, roll.Range)

	crit, err := sess.RollWeapon(ctx, inst.InstanceID, true)
	require.NoError(t, err)
	require.NotNil(t, crit.Critical)
	assert.Equal(t, dice.CritDouble, crit.Critical.Policy)
	assert.Equal(t, 14, crit.Critical.Total)

	_, err = sess.RemoveItem(ctx, inst.InstanceID, 1)
	require.NoError(t, err)
	_, err = sess.RollWeapon(ctx, inst.InstanceID, false)
	assert.ErrorIs(t, err, inventory.ErrItemNotFound)
}

func TestSession_UpdatePatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, err := f.mgr.Create(ctx, "Vex")
	require.NoError(t, err)

	name, level, bag := "Vexa", 250, 4
	sheet, err := sess.Update(ctx, session.Patch{Name: &name, Level: &level, BagBonus: &bag})
	require.NoError(t, err)
	assert.Equal(t, "Vexa", sheet.Name)
	assert.Equal(t, character.MaxLevel, sheet.Level)
	assert.Equal(t, 7, sess.Stats().CarryCapacity)

	empty := ""
	_, err = sess.Update(ctx, session.Patch{Name: &empty})
	assert.Error(t, err)
	neg := -1
	_, err = sess.Update(ctx, session.Patch{BagBonus: &neg})
	assert.Error(t, err)
}

func TestSession_ConcurrentMutations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, err := f.mgr.Create(ctx, "Vex")
	require.NoError(t, err)
	_, err = sess.SetLevel(ctx, 100)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, id := range character.TestAttributes() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 3; i++ {
				_, _ = sess.AllocateAttribute(ctx, id, 1)
				_, _ = sess.RollAttribute(ctx, id)
			}
		}()
	}
	wg.Wait()

	sheet := sess.Sheet()
	for _, id := range character.TestAttributes() {
		assert.Equal(t, 3, sheet.Attributes.Get(id))
	}
}
