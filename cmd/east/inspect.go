package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"east/internal/beast2"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] in",
	Short: "Inspect a self-describing Beast2 stream",
	Long:  `Inspect checks the magic of a full-format stream and prints its embedded schema without needing one supplied`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := readInput(args[0])
	if err != nil {
		return err
	}

	colored := useColor(cmd, os.Stdout)
	label := color.New(color.FgCyan, color.Bold)
	ok := color.New(color.FgGreen)
	if !colored {
		label.DisableColor()
		ok.DisableColor()
	}

	t, payloadOff, err := beast2.DecodeSchema(data)
	if err != nil {
		return fmt.Errorf("inspect failed: %w", err)
	}

	rows := [][2]string{
		{"magic", ok.Sprintf("%q", string(beast2.Magic[:]))},
		{"schema", t.String()},
		{"schema bytes", fmt.Sprintf("%d", payloadOff-len(beast2.Magic))},
		{"payload bytes", fmt.Sprintf("%d", len(data)-payloadOff)},
		{"total bytes", fmt.Sprintf("%d", len(data))},
	}
	width := 0
	for _, r := range rows {
		if w := runewidth.StringWidth(r[0]); w > width {
			width = w
		}
	}
	for _, r := range rows {
		pad := strings.Repeat(" ", width-runewidth.StringWidth(r[0]))
		fmt.Printf("%s%s  %s\n", label.Sprint(r[0]), pad, r[1])
	}
	return nil
}
