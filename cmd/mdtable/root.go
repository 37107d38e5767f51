package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leengari/mdtable/internal/config"
	"github.com/leengari/mdtable/internal/engine"
	"github.com/leengari/mdtable/internal/logging"
	"github.com/leengari/mdtable/internal/source"
)

// cli carries the resolved configuration from the root command to its children
type cli struct {
	cfg config.Config

	repo   string
	branch string
	file   string

	closeLog func()
}

func newRootCmd() *cobra.Command {
	c := &cli{cfg: config.Default(), closeLog: func() {}}
	d := c.cfg

	root := &cobra.Command{
		Use:   "mdtable",
		Short: "Extract, type and filter tables embedded in markdown documents",
		Long: `mdtable pulls one pipe table out of a markdown document (a local file,
an http(s) URL, an s3://bucket/key object or a GitHub repository), infers
BOOLEAN, NUMERIC, DATE or CATEGORICAL column types and filters it with
FILTER ROWS ... COLUMNS ... WHERE ... queries.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) { c.closeLog() },
	}

	flags := root.PersistentFlags()
	flags.String("headline", d.Headline, "heading line that starts the table section")
	flags.String("heading-marker", d.HeadingMarker, "character that marks heading lines")
	flags.Bool("keep-links", d.KeepLinks, "keep [text](url) markup in cells")
	flags.StringSlice("always-keep", d.AlwaysKeep, "columns kept by every column selection")
	flags.String("sort", "none", "order rows by index key: asc, desc or none")
	flags.Bool("strict", d.Strict, "fail on columns that almost match a type")
	flags.String("date-layout", d.DateLayout, "Go time layout of DATE cells")
	flags.Float64("near-miss-ratio", d.NearMissRatio, "share of values that makes a column a near miss")
	flags.String("log-level", d.LogLevel, "debug, info, warn or error")
	flags.String("seq-url", d.SeqURL, "Seq server receiving structured logs")
	flags.Duration("timeout", d.Timeout, "fetch timeout")
	flags.StringVar(&c.repo, "repo", "", "GitHub repository URL to read the document from")
	flags.StringVar(&c.branch, "branch", source.DefaultBranch, "branch used with --repo")
	flags.StringVar(&c.file, "file", "README.md", "file used with --repo")

	root.AddCommand(
		c.extractCmd(),
		c.filterCmd(),
		c.sectionsCmd(),
		c.describeCmd(),
		c.recordCmd(),
		c.shellCmd(),
		c.serveCmd(),
	)
	return root
}

// setup resolves defaults, MDTABLE_* variables and flags into c.cfg,
// validates the result and installs the logger
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	c.cfg = cfg

	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	_, closeFn := logging.SetupLogger(logging.Options{
		SeqURL: c.cfg.SeqURL,
		Level:  c.cfg.Level(),
		Output: cmd.ErrOrStderr(),
	})
	c.closeLog = closeFn
	return nil
}

// location picks the document from the first argument or --repo
func (c *cli) location(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if c.repo != "" {
		return source.RawURL(c.repo, c.branch, c.file)
	}
	return "", fmt.Errorf("no document given: pass a file, URL or s3:// location, or use --repo")
}

// document fetches the markdown text named by args or --repo
func (c *cli) document(ctx context.Context, args []string) (string, error) {
	loc, err := c.location(args)
	if err != nil {
		return "", err
	}
	fetcher, err := source.New(c.cfg.SourceOptions())
	if err != nil {
		return "", err
	}
	slog.Debug("fetching document", "location", loc)
	return fetcher.Fetch(ctx, loc)
}

func (c *cli) engine() *engine.Engine {
	eng := engine.New(c.cfg.EngineOptions())
	eng.AddObserver(engine.NewLoggingObserver())
	return eng
}

// rest returns args from i on, nil when there are fewer
func rest(args []string, i int) []string {
	if len(args) > i {
		return args[i:]
	}
	return nil
}
