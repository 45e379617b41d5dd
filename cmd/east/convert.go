package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] in...",
	Short: "Convert payloads between formats in parallel",
	Long:  `Convert decodes each input in the source format and re-encodes it in the target format, one worker per file`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConvert,
}

var formatExt = map[string]string{
	"beast2": ".b2",
	"beast":  ".b1",
	"json":   ".json",
	"csv":    ".csv",
	"text":   ".east",
}

func init() {
	convertCmd.Flags().StringP("type", "t", "", "schema file (required)")
	convertCmd.Flags().String("from", "", "source format (required)")
	convertCmd.Flags().String("to", "", "target format (required)")
	convertCmd.Flags().StringP("output-dir", "o", ".", "directory for converted files")
	convertCmd.Flags().Int("jobs", runtime.NumCPU(), "maximum parallel conversions")
	convertCmd.Flags().Bool("full", false, "source and target use the self-describing full format")
	_ = convertCmd.MarkFlagRequired("type")
	_ = convertCmd.MarkFlagRequired("from")
	_ = convertCmd.MarkFlagRequired("to")
}

func runConvert(cmd *cobra.Command, args []string) error {
	schemaPath, _ := cmd.Flags().GetString("type")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	outDir, _ := cmd.Flags().GetString("output-dir")
	jobs, _ := cmd.Flags().GetInt("jobs")
	full, _ := cmd.Flags().GetBool("full")

	ext, ok := formatExt[to]
	if !ok {
		return fmt.Errorf("unknown format: %s", to)
	}
	if _, ok := formatExt[from]; !ok {
		return fmt.Errorf("unknown format: %s", from)
	}
	t, err := loadSchema(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	g, _ := errgroup.WithContext(cmd.Context())
	if jobs < 1 {
		jobs = 1
	}
	g.SetLimit(jobs)

	for _, in := range args {
		in := in
		g.Go(func() error {
			data, err := os.ReadFile(in)
			if err != nil {
				return err
			}
			v, err := decodeAs(from, data, t, full)
			if err != nil {
				return fmt.Errorf("%s: decode failed: %w", in, err)
			}
			out, err := encodeAs(to, v, t, full)
			if err != nil {
				return fmt.Errorf("%s: encode failed: %w", in, err)
			}
			base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
			dst := filepath.Join(outDir, base+ext)
			if err := os.WriteFile(dst, out, 0o644); err != nil {
				return err
			}
			if !quiet(cmd) {
				fmt.Fprintf(os.Stderr, "%s -> %s\n", in, dst)
			}
			return nil
		})
	}
	return g.Wait()
}
