package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sevigo/bookpurr/chains"
	"github.com/sevigo/bookpurr/textsplitter"
)

func newNarrateCmd(a *app) *cobra.Command {
	var (
		converter string
		useTUI    bool
	)

	cmd := &cobra.Command{
		Use:   "narrate <book> <outdir>",
		Short: "Narrate a book into one WAV file per chapter",
		Long: `Parse the book (epub, pdf, markdown or text), chunk every chapter, synthesise the
chunks with the configured backend and write NNN_<title>.wav files into outdir.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			source, err := a.bookSource(args[0], converter)
			if err != nil {
				return err
			}
			book, err := source.Book(ctx)
			if err != nil {
				return err
			}
			docs := book.Documents()

			synthesizer, err := a.newSynthesizer(ctx)
			if err != nil {
				return err
			}
			splitter, err := textsplitter.NewUnitSplitter(a.cfg.MaxUnitsOrDefault(), textsplitter.WithLogger(a.logger))
			if err != nil {
				return err
			}

			opts, closeCache, err := a.narrationOptions(ctx)
			if err != nil {
				return err
			}
			defer func() { err = joinClose(err, closeCache) }()

			narrate := func(ctx context.Context, progress chains.Progress) ([]string, error) {
				narration, err := chains.NewNarration(splitter, synthesizer, append(opts, chains.WithProgress(progress))...)
				if err != nil {
					return nil, err
				}
				return narration.NarrateBook(ctx, docs, args[1])
			}

			var paths []string
			if useTUI {
				paths, err = runWithTUI(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), book.Title, len(docs), narrate)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), headingStyle.Sprintf("%s (%d chapters)", book.Title, len(docs)))
				paths, err = narrate(ctx, newConsoleProgress(cmd.OutOrStdout(), len(docs)))
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Sprintf("%d files written to %s", len(paths), args[1]))
			return nil
		},
	}

	cmd.Flags().StringVar(&converter, "exec", "", "converter command whose stdout is the book, e.g. \"pandoc -t plain\"")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "show a live progress view")
	cmd.Flags().Bool("skip-existing", false, "keep chapters whose WAV file already exists")
	_ = a.v.BindPFlag("skipExisting", cmd.Flags().Lookup("skip-existing"))
	return cmd
}
