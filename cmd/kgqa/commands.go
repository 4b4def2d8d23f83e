package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bbiangul/kgqa"
	"github.com/bbiangul/kgqa/store"
)

type cli struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "kgqa",
		Short: "Heuristic knowledge graph construction and question answering",
		Long: `Build a knowledge graph from text files with lexical heuristics and
ask it questions.

Every command reads the given files (txt, md, pdf, xlsx), builds one graph
from them in memory and discards it on exit.

Examples:
  kgqa ingest notes.txt report.pdf
  kgqa ask notes.txt --question "Who is Ada Lovelace?"
  kgqa summary notes.txt`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to config file (YAML or JSON)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log build details to stderr")

	root.AddCommand(c.ingestCmd(), c.askCmd(), c.statsCmd(), c.summaryCmd())
	return root
}

// session is one command's engine, the graph it built and the log sink,
// all released by Close.
type session struct {
	engine kgqa.Engine
	rec    *store.Record
	logs   io.Closer
}

func (s *session) Close() error {
	err := s.engine.Close()
	if cerr := s.logs.Close(); err == nil {
		err = cerr
	}
	return err
}

// build loads the configuration, ingests files into an in-memory engine
// and returns the session holding the new graph.
func (c *cli) build(cmd *cobra.Command, files []string) (*session, error) {
	cfg := kgqa.DefaultConfig()
	if c.configPath != "" {
		loaded, err := kgqa.LoadConfig(c.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	// The CLI never persists graphs.
	cfg.StoreBackend = store.BackendMemory
	cfg.StorePath = ""
	if c.verbose {
		cfg.LogLevel = "debug"
	} else {
		cfg.LogLevel = "warn"
	}

	logger, logs, err := kgqa.NewLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	engine, err := kgqa.New(cfg)
	if err != nil {
		logs.Close()
		return nil, err
	}
	s := &session{engine: engine, logs: logs}
	s.rec, err = engine.IngestFiles(cmd.Context(), files)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (c *cli) ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest FILE...",
		Short: "Build a graph and print its statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.build(cmd, args)
			if err != nil {
				return err
			}
			defer s.Close()

			fmt.Fprintf(cmd.OutOrStdout(),
				"Successfully created knowledge graph with %d entities and %d relationships\n",
				s.rec.Stats.Nodes, s.rec.Stats.Edges)
			return printJSON(cmd.OutOrStdout(), s.rec)
		},
	}
}

func (c *cli) askCmd() *cobra.Command {
	var question string
	cmd := &cobra.Command{
		Use:   "ask FILE...",
		Short: "Answer a question against the graph built from the files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if question == "" {
				return fmt.Errorf("--question is required")
			}
			s, err := c.build(cmd, args)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.engine.Query(cmd.Context(), s.rec.ID, question)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Answer)
			return nil
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "Question to answer")
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats FILE...",
		Short: "Print graph statistics as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.build(cmd, args)
			if err != nil {
				return err
			}
			defer s.Close()
			return printJSON(cmd.OutOrStdout(), s.rec.Stats)
		},
	}
}

func (c *cli) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary FILE...",
		Short: "Print the text summary of the graph",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.build(cmd, args)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.engine.Summary(cmd.Context(), s.rec.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Summary)
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
