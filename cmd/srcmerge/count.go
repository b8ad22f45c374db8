package main

import (
	"fmt"

	"srcmerge/internal/tokens"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count [path]",
		Short: "Print the token count of every source file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			loaded, err := load(ctx, a.cfg)
			if err != nil {
				return err
			}

			paths := make([]string, len(loaded.Files))
			for i, f := range loaded.Files {
				paths[i] = f.Path
			}
			tr, err := awaitCounts(ctx, a.cfg, loaded, paths)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range paths {
				st := tr.Status(p)
				switch st.State {
				case tokens.Counted:
					fmt.Fprintf(out, "%10s  %s\n", humanize.Comma(int64(st.Count)), p)
				case tokens.Failed:
					fmt.Fprintf(out, "%10s  %s  %s\n", "failed", p, st.Err)
				default:
					fmt.Fprintf(out, "%10s  %s\n", st.State, p)
				}
			}
			fmt.Fprintln(out, infoText(tr.Summary(paths).String()))
			return nil
		},
	}
}
