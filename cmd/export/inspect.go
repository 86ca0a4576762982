package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aiResume/internal/export"
)

var inspectShowText bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the page count and text of an exported PDF or DOCX",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectShowText, "text", false, "Print the extracted text")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	path := args[0]
	format, ok := export.FormatOf(path)
	if !ok {
		return fmt.Errorf("unsupported file type: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	summary, err := export.Inspect(data, format)
	if err != nil {
		return err
	}
	fmt.Printf("format: %s\npages:  %d\nbytes:  %d\n", summary.Format, summary.Pages, len(data))
	if inspectShowText {
		fmt.Println()
		fmt.Println(summary.Text)
	}
	return nil
}
