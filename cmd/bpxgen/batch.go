package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"bpxgen/internal/export"

	"github.com/spf13/cobra"
)

func newBatchCmd(root *rootFlags) *cobra.Command {
	var (
		parallel int
		format   string
		outDir   string
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Derive every parameter set of a BPX Parent document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := root.session()
			if err != nil {
				return err
			}
			defer cleanup()
			if format == "" {
				format = a.Config().Output.Format
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			items, err := a.Batch(cmd.Context(), parallel)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SET\tSTATUS\tSOC\tELAPSED\tOUTPUT")
			failed := 0
			for _, it := range items {
				if it.Err != nil {
					failed++
					fmt.Fprintf(tw, "%s\tfailed\t-\t%s\t%v\n", it.Set, it.Elapsed.Round(time.Millisecond), it.Err)
					continue
				}
				path := "-"
				if outDir != "" {
					path = filepath.Join(outDir, it.Set+"."+string(f))
					if err := writeResult(it.Result, f, path, false); err != nil {
						return err
					}
				}
				fmt.Fprintf(tw, "%s\tok\t%s\t%s\t%s\n", it.Set, export.Significant(it.Result.SOC, 4), it.Elapsed.Round(time.Millisecond), path)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d parameter sets failed", failed, len(items))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "concurrent derivations (default GOMAXPROCS)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format, json or yaml (default output.format)")
	cmd.Flags().StringVarP(&outDir, "output-dir", "d", "", "write one file per set into this directory")
	return cmd
}
