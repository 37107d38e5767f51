package repl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/leengari/mdtable/internal/coerce"
	"github.com/leengari/mdtable/internal/domain/schema"
	"github.com/leengari/mdtable/internal/engine"
	"github.com/leengari/mdtable/internal/markdown"
	"github.com/leengari/mdtable/internal/render"
)

var commands = []string{
	"help", "show", "sections", "use", "describe", "record",
	"markdown", "html", "json", "reset", "exit", "FILTER",
}

// Session holds one loaded document and the current view of its table
type Session struct {
	eng      *engine.Engine
	document string
	table    *schema.Table
	report   []coerce.Inference
	// current is the last filter result, or table
	current *schema.Table
}

// NewSession loads the engine's section of document
func NewSession(eng *engine.Engine, document string) (*Session, error) {
	s := &Session{eng: eng, document: document}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) load() error {
	t, report, err := s.eng.LoadWithReport(s.document)
	if err != nil {
		return err
	}
	s.table, s.report, s.current = t, report, t
	return nil
}

// Table returns the loaded, unfiltered table
func (s *Session) Table() *schema.Table { return s.table }

// Current returns the table the last filter produced
func (s *Session) Current() *schema.Table { return s.current }

// Execute runs one line of input, writing output to w.
// It returns false when the session should end.
func (s *Session) Execute(line string, w io.Writer) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	if line == "exit" || line == "\\q" {
		return false
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch strings.ToLower(cmd) {
	case "help":
		printHelp(w)
	case "show":
		render.Table(w, s.current)
	case "sections", "ls":
		s.printSections(w)
	case "use":
		err = s.use(arg)
		if err == nil {
			fmt.Fprintf(w, "Loaded %q: %d rows\n", arg, s.table.Len())
		}
	case "describe":
		render.Report(w, s.report)
	case "record":
		if arg == "" {
			err = errors.New("usage: record <key>")
			break
		}
		err = render.Record(w, s.current, arg)
	case "markdown":
		fmt.Fprint(w, render.Markdown(s.current))
	case "html":
		err = render.HTML(w, s.current)
	case "json":
		err = printJSON(w, s.current)
	case "reset":
		s.current = s.table
		fmt.Fprintf(w, "%d rows\n", s.table.Len())
	case "filter":
		var out *schema.Table
		out, err = s.eng.Run(s.table, line)
		if err == nil {
			s.current = out
			fmt.Fprintf(w, "%d of %d rows\n", out.Len(), s.table.Len())
			render.Table(w, out)
		}
	default:
		err = fmt.Errorf("unknown command %q, type 'help'", cmd)
	}

	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return true
}

// use switches the session to another section of the same document
func (s *Session) use(headline string) error {
	if headline == "" {
		return errors.New("usage: use <headline>")
	}
	opts := s.eng.Options()
	opts.Headline = headline
	prev := s.eng
	s.eng = s.eng.WithOptions(opts)
	if err := s.load(); err != nil {
		s.eng = prev
		return err
	}
	return nil
}

func (s *Session) printSections(w io.Writer) {
	fmt.Fprintln(w, "Sections:")
	for _, h := range markdown.Headlines(s.document) {
		mark := ""
		if h.Table {
			mark = " [table]"
		}
		fmt.Fprintf(w, "  %s%s\n", h.Prefix(), mark)
	}
}

func printJSON(w io.Writer, t *schema.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, `Commands:
  FILTER [ROWS k, ...] [COLUMNS c, ... | *] [WHERE cond AND ...]
  show               print the current table
  reset              drop the last filter
  record <key>       print one row
  markdown | html | json
                     print the current table in another format
  sections           list the document's headings
  use <headline>     load another section, e.g. use ## Benchmarks
  describe           show inferred column types
  exit | \q          quit`)
}

// Start runs an interactive shell on the terminal. History is kept in
// historyPath when it is not empty.
func Start(s *Session, historyPath string) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(input string) []string {
		var out []string
		for _, c := range commands {
			if strings.HasPrefix(strings.ToLower(c), strings.ToLower(input)) {
				out = append(out, c)
			}
		}
		return out
	})

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				_, _ = line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	fmt.Println("Welcome to mdtable")
	fmt.Printf("Loaded %d rows. Type 'help' for commands, 'exit' or '\\q' to quit.\n", s.table.Len())

	for {
		input, err := line.Prompt("mdtable> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if !s.Execute(input, os.Stdout) {
			return nil
		}
	}
}
