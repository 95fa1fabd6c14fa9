package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bpxgen/internal/logger"
	"bpxgen/internal/visual"

	"github.com/spf13/cobra"
)

func newPlotCmd(root *rootFlags) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Chart the OCV-SOC curve of the derived set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := root.session()
			if err != nil {
				return err
			}
			defer cleanup()
			chart, err := a.OCVChart(cmd.Context())
			if err != nil {
				return err
			}
			switch strings.ToLower(format) {
			case "html":
				if output == "" {
					output = "ocv.html"
				}
				w, err := openOutput(output)
				if err != nil {
					return err
				}
				if err := visual.RenderHTML(w, chart); err != nil {
					w.Close()
					return err
				}
				if err := w.Close(); err != nil {
					return err
				}
			case "png":
				img, err := visual.RenderPNG(chart)
				if err != nil {
					return err
				}
				if output == "" {
					output = img.Filename
				}
				if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
					return err
				}
				if err := os.WriteFile(output, img.Bytes, 0o644); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported plot format %q (supported: html, png)", format)
			}
			logger.Infof("chart written to %s", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "html", "html or png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	return cmd
}
