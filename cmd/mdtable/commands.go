package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leengari/mdtable/internal/config"
	"github.com/leengari/mdtable/internal/domain/schema"
	"github.com/leengari/mdtable/internal/engine"
	"github.com/leengari/mdtable/internal/httpapi"
	"github.com/leengari/mdtable/internal/markdown"
	"github.com/leengari/mdtable/internal/metrics"
	"github.com/leengari/mdtable/internal/network"
	"github.com/leengari/mdtable/internal/render"
	"github.com/leengari/mdtable/internal/repl"
)

const formatHelp = "output format: text, markdown, json or html"

func (c *cli) extractCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "extract [location]",
		Short: "Print the typed table of a document section",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.document(cmd.Context(), args)
			if err != nil {
				return err
			}
			t, err := c.engine().Load(doc)
			if err != nil {
				return err
			}
			return writeTable(cmd.OutOrStdout(), t, engine.NewResult(t), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "text", formatHelp)
	return cmd
}

func (c *cli) filterCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "filter <query> [location]",
		Short: "Run a FILTER query against a document's table",
		Example: `  mdtable filter "FILTER COLUMNS Score WHERE Score >= 3" README.md
  mdtable filter "FILTER ROWS gpt-4" --repo https://github.com/owner/repo`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.document(cmd.Context(), rest(args, 1))
			if err != nil {
				return err
			}
			eng := c.engine()
			t, err := eng.Load(doc)
			if err != nil {
				return err
			}
			out, err := eng.Run(t, args[0])
			if err != nil {
				return err
			}
			res := engine.NewResult(out)
			res.Message = fmt.Sprintf("%d of %d rows", out.Len(), t.Len())
			return writeTable(cmd.OutOrStdout(), out, res, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "text", formatHelp)
	return cmd
}

func (c *cli) sectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sections [location]",
		Short: "List the headings of a document, marking those followed by a table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.document(cmd.Context(), args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, h := range markdown.Headlines(doc) {
				if h.Table {
					fmt.Fprintf(w, "%s\t[table]\n", h.Prefix())
				} else {
					fmt.Fprintln(w, h.Prefix())
				}
			}
			return nil
		},
	}
}

func (c *cli) describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [location]",
		Short: "Show the inferred type of every column",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.document(cmd.Context(), args)
			if err != nil {
				return err
			}
			t, report, err := c.engine().LoadWithReport(doc)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "index: %s, %d rows\n", t.IndexColumn(), t.Len())
			render.Report(w, report)
			return nil
		},
	}
}

func (c *cli) recordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record <key> [location]",
		Short: "Print one row as name/value lines",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.document(cmd.Context(), rest(args, 1))
			if err != nil {
				return err
			}
			t, err := c.engine().Load(doc)
			if err != nil {
				return err
			}
			return render.Record(cmd.OutOrStdout(), t, args[0])
		},
	}
}

func (c *cli) shellCmd() *cobra.Command {
	var history string
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, ".mdtable_history")
	}

	cmd := &cobra.Command{
		Use:   "shell [location]",
		Short: "Open an interactive shell on a document's table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.document(cmd.Context(), args)
			if err != nil {
				return err
			}
			session, err := repl.NewSession(c.engine(), doc)
			if err != nil {
				return err
			}
			return repl.Start(session, history)
		},
	}
	cmd.Flags().StringVar(&history, "history", history, "history file, empty to disable")
	return cmd
}

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [location]",
		Short: "Serve FILTER queries over TCP (JSON lines) and HTTP",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			doc, err := c.document(ctx, args)
			if err != nil {
				return err
			}

			eng := engine.New(c.cfg.EngineOptions())
			eng.AddObserver(metrics.New(nil))
			t, report, err := eng.LoadWithReport(doc)
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(ctx)

			if c.cfg.Addr != "" {
				srv, err := network.NewServer(eng, t, network.Options{
					Addr:           c.cfg.Addr,
					MaxConnections: c.cfg.MaxConnections,
					RateLimit:      c.cfg.RateLimit,
				})
				if err != nil {
					return err
				}
				g.Go(func() error { return srv.ListenAndServe(ctx) })
			}

			if c.cfg.HTTPAddr != "" {
				router := httpapi.NewRouter(
					httpapi.NewHandler(eng, doc, t, report),
					httpapi.Options{RateLimit: c.cfg.RateLimit, Metrics: metrics.Handler()},
				)
				g.Go(func() error { return httpapi.ListenAndServe(ctx, c.cfg.HTTPAddr, router) })
			}

			return g.Wait()
		},
	}

	d := config.Default()
	flags := cmd.Flags()
	flags.String("addr", d.Addr, "TCP listen address, empty to disable")
	flags.String("http-addr", d.HTTPAddr, "HTTP listen address, empty to disable")
	flags.Int("max-connections", d.MaxConnections, "concurrent TCP clients, 0 for unlimited")
	flags.Float64("rate-limit", d.RateLimit, "queries per second per client, 0 for unlimited")
	return cmd
}

// writeTable prints t in format; res carries the text and json forms
func writeTable(w io.Writer, t *schema.Table, res *engine.Result, format string) error {
	switch format {
	case "text":
		render.Result(w, res)
		return nil
	case "markdown":
		_, err := io.WriteString(w, render.Markdown(t))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "html":
		return render.HTML(w, t)
	}
	return fmt.Errorf("unknown format %q (want text, markdown, json or html)", format)
}
