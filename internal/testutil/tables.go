package testutil

import (
	"time"

	"github.com/leengari/mdtable/internal/domain/data"
	"github.com/leengari/mdtable/internal/domain/schema"
)

// LeaderboardReadme is a README holding a leaderboard section between two other sections
const LeaderboardReadme = `# Open LLM Leaderboard

Models benchmarked on a shared suite.

## Leaderboard

| Model | Score | Commercial? | Released | Org |
|---|---|---|---|---|
| [A](https://example.com/a) | 3.5 | yes | 2023-03-14 | OpenAI |
| B | | no | 2023-02-24 | Meta |
| C | 3.0 | No | 2022-11-30 | |
| D | 4.0 | YES | 2023-05-01 | [Google](https://ai.google) |
| E | 1.2 | no | | Meta |

## Benchmarks

| Benchmark | Description |
|---|---|
| Elo | pairwise preference rating |
| MMLU | multitask accuracy |

## How to Contribute

Open a pull request.
`

// BoardKeys are the index keys of the leaderboard, in table order
var BoardKeys = []string{"A", "B", "C", "D", "E"}

// BoardColumns are the data columns of the leaderboard, in table order
var BoardColumns = []string{"Score", "Commercial?", "Released", "Org"}

// CreateBoardTable creates the typed leaderboard found in LeaderboardReadme
func CreateBoardTable() *schema.Table {
	day := func(s string) data.Value {
		d, err := time.Parse(data.DateLayout, s)
		if err != nil {
			panic(err)
		}
		return data.Date(d)
	}
	row := func(score data.Value, commercial bool, released data.Value, org data.Value) data.Row {
		return data.Row{
			"Score":       score,
			"Commercial?": data.Bool(commercial),
			"Released":    released,
			"Org":         org,
		}
	}

	table, err := schema.New("Model",
		[]schema.Column{
			{Name: "Score", Type: schema.ColumnTypeNumeric},
			{Name: "Commercial?", Type: schema.ColumnTypeBoolean},
			{Name: "Released", Type: schema.ColumnTypeDate},
			{Name: "Org", Type: schema.ColumnTypeCategorical},
		},
		BoardKeys,
		map[string]data.Row{
			"A": row(data.Number(3.5), true, day("2023-03-14"), data.Text("OpenAI")),
			"B": row(data.Null(), false, day("2023-02-24"), data.Text("Meta")),
			"C": row(data.Number(3.0), false, day("2022-11-30"), data.Null()),
			"D": row(data.Number(4.0), true, day("2023-05-01"), data.Text("Google")),
			"E": row(data.Number(1.2), false, data.Null(), data.Text("Meta")),
		},
	)
	if err != nil {
		panic(err)
	}
	return table
}
