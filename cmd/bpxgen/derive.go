package main

import (
	"fmt"
	"os"

	"bpxgen/internal/export"
	"bpxgen/internal/logger"
	"bpxgen/internal/pipeline"

	"github.com/spf13/cobra"
)

type outputFlags struct {
	format  string
	output  string
	summary bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "output format, json or yaml (default output.format)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file, - for stdout (default output.path)")
	cmd.Flags().BoolVar(&o.summary, "summary", false, "print a short summary to stderr")
}

// resolve fills unset flags from the configuration.
func (o *outputFlags) resolve(format, path string) (export.Format, string, error) {
	if o.format != "" {
		format = o.format
	}
	if o.output != "" {
		path = o.output
	}
	f, err := export.ParseFormat(format)
	return f, path, err
}

func newDeriveCmd(root *rootFlags) *cobra.Command {
	out := &outputFlags{}
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive one parameter set and write it out",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := root.session()
			if err != nil {
				return err
			}
			defer cleanup()
			cfg := a.Config()
			format, path, err := out.resolve(cfg.Output.Format, cfg.Resolve(cfg.Output.Path))
			if err != nil {
				return err
			}
			res, err := a.Derive(cmd.Context())
			if err != nil {
				return err
			}
			return writeResult(res, format, path, out.summary)
		},
	}
	out.register(cmd)
	return cmd
}

func writeResult(res *pipeline.Result, format export.Format, path string, summary bool) error {
	w, err := openOutput(path)
	if err != nil {
		return err
	}
	if err := export.Write(w, res, format); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	for _, warn := range res.Warnings {
		logger.Warnf("%s", warn)
	}
	if summary {
		fmt.Fprint(os.Stderr, export.FormatSummary(export.Summary(res)))
	}
	return nil
}
