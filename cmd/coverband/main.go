package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/harm-matthias-harms/coverband"
	"github.com/harm-matthias-harms/coverband/internal/config"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags override the matching COVERBAND_* variables when set.
type globalFlags struct {
	backend   string
	namespace string
	codec     string
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "coverband",
		Short: "Inspect and maintain stored line coverage",
		Long: `coverband reads, merges and clears the per-file line coverage kept in a
coverage store. The backend is chosen with COVERBAND_BACKEND and the related
COVERBAND_* variables; output is JSON.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.backend, "backend", "", "storage backend (overrides COVERBAND_BACKEND)")
	root.PersistentFlags().StringVar(&g.namespace, "namespace", "", "key namespace (overrides COVERBAND_NAMESPACE)")
	root.PersistentFlags().StringVar(&g.codec, "codec", "", "blob codec (overrides COVERBAND_CODEC)")

	root.AddCommand(
		newCoverageCmd(&g),
		newMergedCmd(&g),
		newSaveCmd(&g),
		newClearCmd(&g),
		newClearFileCmd(&g),
		newSizeCmd(&g),
		newFileCountCmd(&g),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "coverband %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}

// withStore loads configuration, opens the store for the duration of fn and closes it.
func withStore(cmd *cobra.Command, g *globalFlags, fn func(ctx context.Context, store coverband.Store) error) error {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		os.Setenv("COVERBAND_BACKEND", g.backend)
	}
	if flags.Changed("namespace") {
		os.Setenv("COVERBAND_NAMESPACE", g.namespace)
	}
	if flags.Changed("codec") {
		os.Setenv("COVERBAND_CODEC", g.codec)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := config.Open(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer svc.Close(ctx)
	return fn(ctx, svc.Store)
}

func partitionFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "partition", "p", string(coverband.Runtime), "partition: runtime, eager_loading or merged")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newCoverageCmd(g *globalFlags) *cobra.Command {
	var partition string
	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Print the stored coverage of a partition, stale files removed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := coverband.ParsePartition(partition)
			if err != nil {
				return err
			}
			return withStore(cmd, g, func(ctx context.Context, store coverband.Store) error {
				rep, err := store.Coverage(ctx, p)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), rep)
			})
		},
	}
	partitionFlag(cmd, &partition)
	return cmd
}

func newMergedCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "merged",
		Short: "Print runtime and eager-loading coverage combined",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, g, func(ctx context.Context, store coverband.Store) error {
				rep, err := store.MergedCoverage(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), rep)
			})
		},
	}
}

func newSaveCmd(g *globalFlags) *cobra.Command {
	var partition string
	cmd := &cobra.Command{
		Use:   "save FILE",
		Short: "Merge a raw report into a partition",
		Long: `save reads a JSON object mapping file paths to per-line hit counts, with null
for lines that are not executable, and merges it into the stored partition.
Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := coverband.ParsePartition(partition)
			if err != nil {
				return err
			}
			raw, err := readRawReport(cmd, args[0])
			if err != nil {
				return err
			}
			return withStore(cmd, g, func(ctx context.Context, store coverband.Store) error {
				if err := store.SaveReport(ctx, raw, p); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"partition": p, "files": len(raw)})
			})
		},
	}
	partitionFlag(cmd, &partition)
	return cmd
}

func readRawReport(cmd *cobra.Command, name string) (coverband.RawReport, error) {
	var r io.Reader = cmd.InOrStdin()
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("failed to open report: %w", err)
		}
		defer f.Close()
		r = f
	}
	var raw coverband.RawReport
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return raw, nil
}

func newClearCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the coverage of every partition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, g, func(ctx context.Context, store coverband.Store) error {
				return store.ClearAll(ctx)
			})
		},
	}
}

func newClearFileCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-file PATH",
		Short: "Remove one file's coverage from every partition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, g, func(ctx context.Context, store coverband.Store) error {
				return store.ClearFile(ctx, args[0])
			})
		},
	}
}

func newSizeCmd(g *globalFlags) *cobra.Command {
	var partition string
	cmd := &cobra.Command{
		Use:   "size",
		Short: "Print the stored blob size of a partition in bytes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := coverband.ParsePartition(partition)
			if err != nil {
				return err
			}
			return withStore(cmd, g, func(ctx context.Context, store coverband.Store) error {
				size := "N/A"
				if n, ok := store.Size(ctx, p); ok {
					size = strconv.Itoa(n)
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"partition": p, "size": size})
			})
		},
	}
	partitionFlag(cmd, &partition)
	return cmd
}

func newFileCountCmd(g *globalFlags) *cobra.Command {
	var partition string
	cmd := &cobra.Command{
		Use:   "file-count",
		Short: "Print how many files a partition holds, stale ones included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := coverband.ParsePartition(partition)
			if err != nil {
				return err
			}
			return withStore(cmd, g, func(ctx context.Context, store coverband.Store) error {
				n, err := store.FileCount(ctx, p)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"partition": p, "files": n})
			})
		},
	}
	partitionFlag(cmd, &partition)
	return cmd
}
