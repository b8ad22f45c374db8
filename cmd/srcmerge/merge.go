package main

import (
	"context"
	"fmt"

	"srcmerge/internal/config"
	"srcmerge/internal/output"
	"srcmerge/internal/pipeline"
	"srcmerge/internal/selection"
	"srcmerge/internal/source"
	"srcmerge/internal/tokens"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// newMergeCmd merges without the interface. Every loaded file is selected
// unless --only narrows the selection.
func newMergeCmd(a *app) *cobra.Command {
	var (
		only       []string
		withTokens bool
	)

	cmd := &cobra.Command{
		Use:   "merge [path]",
		Short: "Merge the source files without the interface",
		Long: `Load the source, select every file (or only the given extensions) and
write the merged document to the configured destination.

A failed clipboard copy after a successful file write is reported as a
warning; the command still succeeds.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := a.cfg

			loaded, err := load(ctx, cfg)
			if err != nil {
				return err
			}

			sel := selection.New()
			sel.Rebuild(loaded.Files)
			if len(only) > 0 {
				sel.SelectOnly(only)
			}

			var counts map[string]int
			if withTokens {
				counts, err = countAll(ctx, cfg, loaded, sel.Paths())
				if err != nil {
					return err
				}
			}

			clip := a.clip()
			res, err := pipeline.Merge(ctx, loaded.Source, output.NewWriter(clip), clip, pipeline.MergeRequest{
				Selected:    sel.Paths(),
				Loaded:      source.Index(loaded.Files),
				Destination: cfg.Destination(),
				OutputPath:  cfg.Output.Path,
				Tokens:      counts,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			msg := fmt.Sprintf("Merged %d files (%s)", res.Files, humanize.Bytes(uint64(res.Bytes)))
			if res.Path != "" {
				msg += " to " + res.Path
			}
			if res.Copied {
				msg += ", copied to clipboard"
			}
			fmt.Fprintln(out, successText(msg))
			if res.ClipboardErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), warningText("clipboard copy failed: "+res.ClipboardErr.Error()))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "select only files with these extensions")
	cmd.Flags().BoolVarP(&withTokens, "tokens", "t", false, "count tokens and record them in the merged document")

	return cmd
}

// load runs the reload pipeline. Unlike the interface, headless commands
// treat an unavailable source as an error.
func load(ctx context.Context, cfg *config.Config) (pipeline.ReloadResult, error) {
	res := pipeline.Reload(ctx, nil, cfg.Source.Path, cfg.Filter())
	return res, res.Err
}

// countAll counts every path and returns the successful counts.
func countAll(ctx context.Context, cfg *config.Config, loaded pipeline.ReloadResult, paths []string) (map[string]int, error) {
	tr, err := awaitCounts(ctx, cfg, loaded, paths)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(paths))
	for _, p := range paths {
		if st := tr.Status(p); st.State == tokens.Counted {
			counts[p] = st.Count
		}
	}
	return counts, nil
}

func awaitCounts(ctx context.Context, cfg *config.Config, loaded pipeline.ReloadResult, paths []string) (*tokens.Tracker, error) {
	tr := tokens.NewTracker(tokens.NewCounter(cfg.Tokens.Encoding), len(paths))
	tr.Reset(loaded.Files)
	tr.Dispatch(ctx, paths, source.Index(loaded.Files), loaded.Source)
	if err := tr.Await(ctx); err != nil {
		return nil, err
	}
	return tr, nil
}
