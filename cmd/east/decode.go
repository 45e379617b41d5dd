package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"east/internal/etext"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [flags] in",
	Short: "Decode a wire-format payload into text",
	Long:  `Decode reads a serialized payload against a schema and prints the value in East text syntax`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDecode,
}

func init() {
	decodeCmd.Flags().StringP("type", "t", "", "schema file (required)")
	decodeCmd.Flags().StringP("format", "f", "", "input format (beast2|beast|json|csv|text)")
	decodeCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	decodeCmd.Flags().Bool("full", false, "input carries the self-describing header (beast2 only)")
	_ = decodeCmd.MarkFlagRequired("type")
}

func runDecode(cmd *cobra.Command, args []string) error {
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
	data, err := readInput(args[0])
	if err != nil {
		return err
	}
	v, err := decodeAs(format, data, t, full)
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	text, err := etext.Emit(v)
	if err != nil {
		return fmt.Errorf("value has no text form: %w", err)
	}
	return writeOutput(outPath, []byte(text+"\n"))
}
