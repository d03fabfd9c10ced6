package dice_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cory-johannsen/dvh/internal/game/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{Expression: "1d8+1d4+2", Dice: []int{5, 3}, Modifier: 2}
	assert.Equal(t, 10, r.Total())
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, "2d6+3 -> [4 5] +3 = 12", r.String())
}

func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	r := dice.RollResult{Dice: []int{4}}
	assert.Panics(t, func() { _ = r.String() })
}

func TestRollResult_Total_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rolls := rapid.SliceOf(rapid.IntRange(1, 20)).Draw(rt, "dice")
		modifier := rapid.IntRange(-100, 100).Draw(rt, "modifier")
		r := dice.RollResult{Expression: "NdM", Dice: rolls, Modifier: modifier}

		expected := modifier
		for _, d := range rolls {
			expected += d
		}
		assert.Equal(rt, expected, r.Total())
		assert.Contains(rt, r.String(), fmt.Sprintf("= %d", expected))
	})
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Intn(20), b.Intn(20))
	}
}

func TestFixedSource_ReplaysFaces(t *testing.T) {
	src := dice.NewFixedSource(17, 3)
	assert.Equal(t, 17, dice.Die(20, src))
	assert.Equal(t, 3, dice.Die(20, src))
	assert.Equal(t, 17, dice.Die(20, src), "script wraps around")
	assert.Equal(t, 3, src.Calls())
}

func TestParse_Forms(t *testing.T) {
	cases := []struct {
		in       string
		terms    []dice.Term
		modifier int
	}{
		{"d20", []dice.Term{{Count: 1, Sides: 20}}, 0},
		{"2d6", []dice.Term{{Count: 2, Sides: 6}}, 0},
		{"2d6+3", []dice.Term{{Count: 2, Sides: 6}}, 3},
		{"1d10-1", []dice.Term{{Count: 1, Sides: 10}}, -1},
		{"1d8 + 1d4 + 2", []dice.Term{{Count: 1, Sides: 8}, {Count: 1, Sides: 4}}, 2},
		{"3", nil, 3},
		{"2D12+1+1", []dice.Term{{Count: 2, Sides: 12}}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			e, err := dice.Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.terms, e.Terms)
			assert.Equal(t, tc.modifier, e.Modifier)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "   ", "xd6", "1d", "1d0", "0d6", "1d6+", "1d6+-2", "2-1d4", "1d8d4"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, "expected error for %q", in)
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("nope") })
	assert.NotPanics(t, func() { dice.MustParse("1d6") })
}

func TestRoll_DiceCountAndRange_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		terms := rapid.SliceOfN(rapid.Custom(func(rt *rapid.T) dice.Term {
			return dice.Term{
				Count: rapid.IntRange(1, 5).Draw(rt, "count"),
				Sides: rapid.SampledFrom([]int{4, 6, 8, 10, 12, 20}).Draw(rt, "sides"),
			}
		}), 1, 4).Draw(rt, "terms")
		mod := rapid.IntRange(-5, 5).Draw(rt, "mod")

		parts := make([]string, len(terms))
		for i, term := range terms {
			parts[i] = fmt.Sprintf("%dd%d", term.Count, term.Sides)
		}
		raw := strings.Join(parts, "+") + fmt.Sprintf("%+d", mod)

		res, err := dice.RollExpr(raw, dice.NewSeededSource(uint64(len(raw))))
		require.NoError(rt, err)

		idx := 0
		for _, term := range terms {
			for i := 0; i < term.Count; i++ {
				d := res.Dice[idx]
				assert.GreaterOrEqual(rt, d, 1)
				assert.LessOrEqual(rt, d, term.Sides)
				idx++
			}
		}
		assert.Len(rt, res.Dice, idx)
		assert.Equal(rt, mod, res.Modifier)
	})
}
