package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"east/internal/etext"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [flags] in.east",
	Short: "Encode a text value into a wire format",
	Long:  `Encode parses an East text value and serializes it against a schema`,
	Args:  cobra.ExactArgs(1),
	RunE:  runEncode,
}

func init() {
	encodeCmd.Flags().StringP("type", "t", "", "schema file (required)")
	encodeCmd.Flags().StringP("format", "f", "", "output format (beast2|beast|json|csv|text)")
	encodeCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	encodeCmd.Flags().Bool("full", false, "write the self-describing full format (beast2 only)")
	_ = encodeCmd.MarkFlagRequired("type")
}

func runEncode(cmd *cobra.Command, args []string) error {
	schemaPath, _ := cmd.Flags().GetString("type")
	formatFlag, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("output")
	full, _ := cmd.Flags().GetBool("full")

	format, err := resolveFormat(formatFlag)
	if err != nil {
		return err
	}
	t, err := loadSchema(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}
	src, err := readInput(args[0])
	if err != nil {
		return err
	}
	v, err := etext.Parse(string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	out, err := encodeAs(format, v, t, full)
	if err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}
	if err := writeOutput(outPath, out); err != nil {
		return err
	}
	if !quiet(cmd) && outPath != "" && outPath != "-" {
		fmt.Fprintf(os.Stderr, "wrote %d bytes to %s\n", len(out), outPath)
	}
	return nil
}
