package coerce

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/mdtable/internal/domain/data"
	domainerrors "github.com/leengari/mdtable/internal/domain/errors"
	"github.com/leengari/mdtable/internal/domain/schema"
	"github.com/leengari/mdtable/internal/markdown"
)

func parse(t *testing.T, text string) *schema.Table {
	t.Helper()
	tbl, err := markdown.ParseTable(text)
	require.NoError(t, err)
	return tbl
}

const leaderboard = `| Model | Score | Commercial? | Released | Org | Elo |
|---|---|---|---|---|---|
| A | 3.5 | yes | 2023-03-14 | OpenAI | 1200 |
| B | | no | 2023-02-24 | Meta | n/a |
| C | -1.25e2 | YES | 2022-11-30 | Meta | 1100 |
| D | .5 | No | 2023-05-01 | Google | 1000 |
| E | +7 | yes | | Google | 990 |
`

func TestCoerceInfersEachColumn(t *testing.T) {
	tbl, err := Coerce(parse(t, leaderboard), DefaultOptions())
	require.NoError(t, err)

	want := map[string]schema.ColumnType{
		"Score":       schema.ColumnTypeNumeric,
		"Commercial?": schema.ColumnTypeBoolean,
		"Released":    schema.ColumnTypeDate,
		"Org":         schema.ColumnTypeCategorical,
		"Elo":         schema.ColumnTypeCategorical,
	}
	for col, typ := range want {
		got, ok := tbl.Type(col)
		require.True(t, ok, col)
		assert.Equal(t, typ, got, col)
	}

	assert.Equal(t, 3.5, tbl.Value("A", "Score").Number())
	assert.True(t, tbl.Value("B", "Score").IsNull(), "null stays null, not zero")
	assert.Equal(t, -125.0, tbl.Value("C", "Score").Number())
	assert.Equal(t, 0.5, tbl.Value("D", "Score").Number())
	assert.Equal(t, 7.0, tbl.Value("E", "Score").Number())

	assert.True(t, tbl.Value("C", "Commercial?").Bool())
	assert.False(t, tbl.Value("D", "Commercial?").Bool())
	assert.Equal(t, data.KindBool, tbl.Value("A", "Commercial?").Kind())

	assert.True(t, time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC).Equal(tbl.Value("A", "Released").Date()))
	assert.True(t, tbl.Value("E", "Released").IsNull())

	assert.Equal(t, "n/a", tbl.Value("B", "Elo").Text())
}

func TestCoerceDoesNotMutateInput(t *testing.T) {
	src := parse(t, leaderboard)
	_, err := Coerce(src, DefaultOptions())
	require.NoError(t, err)

	typ, _ := src.Type("Score")
	assert.Equal(t, schema.ColumnTypeCategorical, typ)
	assert.Equal(t, "3.5", src.Value("A", "Score").Text())
}

func TestBooleanYesNoAnyCase(t *testing.T) {
	tbl, err := Coerce(parse(t, "| M | Open |\n|---|---|\n| a | Yes |\n| b | NO |\n| c | yEs |\n| d | no |\n"), DefaultOptions())
	require.NoError(t, err)

	typ, _ := tbl.Type("Open")
	require.Equal(t, schema.ColumnTypeBoolean, typ)
	assert.Equal(t, data.Bool(true), tbl.Value("a", "Open"))
	assert.Equal(t, data.Bool(false), tbl.Value("b", "Open"))
	assert.Equal(t, data.Bool(true), tbl.Value("c", "Open"))
	assert.Equal(t, data.Bool(false), tbl.Value("d", "Open"))
}

func TestBooleanBeforeNumeric(t *testing.T) {
	opts := DefaultOptions()
	opts.TrueTokens = []string{"1"}
	opts.FalseTokens = []string{"0"}

	tbl, err := Coerce(parse(t, "| M | Flag |\n|---|---|\n| a | 1 |\n| b | 0 |\n"), opts)
	require.NoError(t, err)

	typ, _ := tbl.Type("Flag")
	assert.Equal(t, schema.ColumnTypeBoolean, typ)
}

func TestNumericRejectsNonDecimalLiterals(t *testing.T) {
	for _, v := range []string{"NaN", "Inf", "0x1F", "1,000", "1.2.3", "12%", "-"} {
		_, ok := parseNumber(v)
		assert.False(t, ok, v)
	}
	for _, v := range []string{"0", "-3", "+2.", "3.14", ".5", "1e9", "6.02E-23"} {
		_, ok := parseNumber(v)
		assert.True(t, ok, v)
	}
}

func TestCustomDateLayout(t *testing.T) {
	opts := DefaultOptions()
	opts.DateLayout = "Jan 2006"

	tbl, err := Coerce(parse(t, "| M | Released |\n|---|---|\n| a | Mar 2023 |\n| b | Feb 2023 |\n"), opts)
	require.NoError(t, err)

	typ, _ := tbl.Type("Released")
	assert.Equal(t, schema.ColumnTypeDate, typ)
	assert.Equal(t, time.February, tbl.Value("b", "Released").Date().Month())
}

func TestLenientFallbackIsObservable(t *testing.T) {
	tbl, infs, err := CoerceWithReport(parse(t, leaderboard), DefaultOptions())
	require.NoError(t, err)

	var elo Inference
	for _, inf := range infs {
		if inf.Column == "Elo" {
			elo = inf
		}
	}
	assert.True(t, elo.FellBack())
	assert.Equal(t, schema.ColumnTypeCategorical, elo.Type)
	assert.Equal(t, schema.ColumnTypeNumeric, elo.Candidate)
	assert.Equal(t, "n/a", elo.Offending)
	assert.Equal(t, 4, elo.Matched)
	assert.Equal(t, 5, elo.NonNull)

	typ, _ := tbl.Type("Elo")
	assert.Equal(t, schema.ColumnTypeCategorical, typ)
}

func TestStrictModeFailsOnNearMiss(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = Strict

	_, err := Coerce(parse(t, leaderboard), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrTypeCoercion))

	var tce *domainerrors.TypeCoercionError
	require.True(t, errors.As(err, &tce))
	assert.Equal(t, "Elo", tce.Column)
	assert.Equal(t, "n/a", tce.Value)
	assert.Equal(t, "NUMERIC", tce.Expected)
}

func TestStrictModeAcceptsCleanTables(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = Strict

	tbl, err := Coerce(parse(t, "| Model | Score | Org |\n|---|---|---|\n| A | 1 | x |\n| B | 2 | y |\n"), opts)
	require.NoError(t, err)
	typ, _ := tbl.Type("Org")
	assert.Equal(t, schema.ColumnTypeCategorical, typ, "plainly textual columns are not errors")
}

func TestInferBelowRatioIsPlainCategorical(t *testing.T) {
	infs, err := Infer(parse(t, "| M | Mixed |\n|---|---|\n| a | 1 |\n| b | two |\n"), Options{Mode: Strict})
	require.NoError(t, err)
	require.Len(t, infs, 1)
	assert.False(t, infs[0].FellBack())
	assert.Equal(t, schema.ColumnTypeCategorical, infs[0].Type)
}

func TestStrictModeUsesNearMissRatio(t *testing.T) {
	tbl := parse(t, "| M | Elo |\n|---|---|\n| a | 1 |\n| b | 2 |\n| c | n/a |\n")

	opts := DefaultOptions()
	opts.Mode = Strict
	typed, err := Coerce(tbl, opts)
	require.NoError(t, err, "two of three values is below 0.8")
	typ, _ := typed.Type("Elo")
	assert.Equal(t, schema.ColumnTypeCategorical, typ)

	opts.NearMissRatio = 0.6
	_, err = Coerce(tbl, opts)
	require.Error(t, err)
	var tce *domainerrors.TypeCoercionError
	require.True(t, errors.As(err, &tce))
	assert.Equal(t, "n/a", tce.Value)
}

func TestRecoerceTypedTable(t *testing.T) {
	first, err := Coerce(parse(t, leaderboard), DefaultOptions())
	require.NoError(t, err)

	second, err := Coerce(first, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("strict")
	require.NoError(t, err)
	assert.Equal(t, Strict, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Lenient, m)

	_, err = ParseMode("loose")
	assert.Error(t, err)
}
