package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sevigo/bookpurr/chains"
	"github.com/sevigo/bookpurr/textsplitter"
)

func newChaptersCmd(a *app) *cobra.Command {
	var converter string

	cmd := &cobra.Command{
		Use:   "chapters <book>",
		Short: "List the chapters detected in a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := a.bookSource(args[0], converter)
			if err != nil {
				return err
			}
			book, err := source.Book(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			header := book.Title
			if book.Author != "" {
				header += " by " + book.Author
			}
			fmt.Fprintln(out, headingStyle.Sprint(header))

			totalUnits := 0
			for _, ch := range book.Chapters {
				units := textsplitter.CountUnits(ch.Text)
				totalUnits += units

				title := ch.Title
				if title == "" {
					title = dimStyle.Sprint("(untitled)")
				}
				fmt.Fprintf(out, "%s  %-40s %s  %s\n",
					dimStyle.Sprintf("%3d", ch.Index),
					title,
					okStyle.Sprintf("%6d units", units),
					dimStyle.Sprint(chains.ChapterFileName(ch.Index, ch.Title)))
			}

			fmt.Fprintln(out, strings.Repeat("-", 20))
			fmt.Fprintf(out, "%d chapters, %d units\n", len(book.Chapters), totalUnits)
			return nil
		},
	}

	cmd.Flags().StringVar(&converter, "exec", "", "converter command whose stdout is the book, e.g. \"pandoc -t plain\"")
	return cmd
}
