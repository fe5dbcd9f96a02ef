package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/bookpurr/documentloaders"
	"github.com/sevigo/bookpurr/parsers/text"
	"github.com/sevigo/bookpurr/textsplitter"
)

func newChunkCmd(a *app) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "chunk <file|->",
		Short: "Print the chunks a text would be narrated in",
		Long: `Split a plain text file (or stdin with "-") into speakable chunks of at most
--maxUnits units and print each chunk with its unit count.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			content, err := text.Decode(data)
			if err != nil {
				return fmt.Errorf("failed to decode input: %w", err)
			}
			if !raw {
				content = documentloaders.DefaultNormalizer(content)
			}

			splitter, err := textsplitter.NewUnitSplitter(a.cfg.MaxUnitsOrDefault(), textsplitter.WithLogger(a.logger))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			count := 0
			for chunk := range splitter.Chunks(content) {
				count++
				printChunk(out, count, chunk, splitter.MaxUnits())
			}
			fmt.Fprintln(out, dimStyle.Sprintf("%d chunks, max %d units", count, splitter.MaxUnits()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "skip encoding repair and normalisation")
	return cmd
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func printChunk(out io.Writer, index int, chunk string, maxUnits int) {
	units := textsplitter.CountUnits(chunk)
	style := okStyle
	if units == maxUnits {
		style = warnStyle
	}
	fmt.Fprintf(out, "%s %s %s\n",
		dimStyle.Sprintf("%4d", index),
		style.Sprintf("[%2d]", units),
		chunk)
}
