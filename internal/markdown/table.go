package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/leengari/mdtable/internal/domain/data"
	domainerrors "github.com/leengari/mdtable/internal/domain/errors"
	"github.com/leengari/mdtable/internal/domain/schema"
)

// separatorCell matches one cell of the dash row under a table header,
// with optional alignment colons.
var separatorCell = regexp.MustCompile(`^:?-+:?$`)

// tableLine is one non-blank line of a pipe table, already split into cells
type tableLine struct {
	number int // 1-based line number in the input
	cells  []string
}

// ParseTable converts a pipe-delimited markdown table into a Table.
//
// The first cell of the header names the index column and the first cell of
// every data row is that row's index key. Blank cells become Null and
// columns that are blank in every data row are dropped. All columns are
// CATEGORICAL; type inference happens later.
func ParseTable(text string) (*schema.Table, error) {
	var lines []tableLine
	for i, raw := range strings.Split(text, "\n") {
		raw = strings.TrimRight(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		lines = append(lines, tableLine{number: i + 1, cells: splitRow(raw)})
	}

	// 1. Header is the first row that is not a separator
	start := 0
	for start < len(lines) && isSeparator(lines[start].cells) {
		start++
	}
	if start >= len(lines) {
		return nil, domainerrors.NewTooFewRows(0)
	}
	header := lines[start]

	// 2. Drop the separator directly under the header
	body := lines[start+1:]
	if len(body) > 0 && isSeparator(body[0].cells) {
		body = body[1:]
	}

	if len(body) == 0 {
		return nil, domainerrors.NewTooFewRows(1)
	}

	index, names, err := headerNames(header.cells)
	if err != nil {
		return nil, err
	}

	// 3. Data rows
	keys := make([]string, 0, len(body))
	cells := make(map[string][]string, len(body))
	for i, line := range body {
		rowNum := i + 1
		key := ""
		if len(line.cells) > 0 {
			key = strings.TrimSpace(line.cells[0])
		}

		if len(line.cells) != len(header.cells) {
			return nil, domainerrors.NewCountMismatch(rowNum, line.number, key, len(header.cells), len(line.cells))
		}
		if key == "" {
			return nil, &domainerrors.MalformedTableError{Row: rowNum, Line: line.number, Reason: "empty index key"}
		}
		if _, dup := cells[key]; dup {
			return nil, &domainerrors.MalformedTableError{Row: rowNum, Line: line.number, Key: key, Reason: "duplicate index key"}
		}

		values := make([]string, len(names))
		for c := range names {
			values[c] = strings.TrimSpace(line.cells[c+1])
		}
		keys = append(keys, key)
		cells[key] = values
	}

	// 4. Keep only columns with at least one non-blank cell
	var columns []schema.Column
	var positions []int
	for c, name := range names {
		for _, key := range keys {
			if cells[key][c] != "" {
				columns = append(columns, schema.Column{Name: name, Type: schema.ColumnTypeCategorical})
				positions = append(positions, c)
				break
			}
		}
	}

	rows := make(map[string]data.Row, len(keys))
	for _, key := range keys {
		row := data.NewRow(len(columns))
		for i, col := range columns {
			if v := cells[key][positions[i]]; v != "" {
				row[col.Name] = data.Text(v)
			} else {
				row[col.Name] = data.Null()
			}
		}
		rows[key] = row
	}

	return schema.New(index, columns, keys, rows)
}

// headerNames trims the header cells and names blank ones after their position
func headerNames(cells []string) (string, []string, error) {
	seen := make(map[string]bool, len(cells))
	names := make([]string, len(cells))
	for i, cell := range cells {
		name := strings.TrimSpace(cell)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if seen[name] {
			return "", nil, &domainerrors.MalformedTableError{Row: -1, Reason: fmt.Sprintf("duplicate column name %q", name)}
		}
		seen[name] = true
		names[i] = name
	}
	return names[0], names[1:], nil
}

// splitRow splits a table line on unescaped pipes, dropping the empty
// fields produced by a leading or trailing pipe. `\|` yields a literal pipe.
func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	if strings.HasSuffix(line, "|") && !strings.HasSuffix(line, `\|`) {
		line = line[:len(line)-1]
	}

	var cells []string
	var cur strings.Builder
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '\\' && i+1 < len(line) && line[i+1] == '|':
			cur.WriteByte('|')
			i++
		case line[i] == '|':
			cells = append(cells, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(line[i])
		}
	}
	return append(cells, cur.String())
}

func isSeparator(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, cell := range cells {
		if !separatorCell.MatchString(strings.TrimSpace(cell)) {
			return false
		}
	}
	return true
}
