package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"caselaw/internal/adapter/analyzer"
	"caselaw/internal/adapter/corpus"
	"caselaw/internal/usecase"
)

var (
	stopwordsSample int
	stopwordsTop    int
	stopwordsOut    string
)

var stopwordsCmd = &cobra.Command{
	Use:   "stopwords [raw_dir]",
	Short: "Survey frequent terms that are not stopwords yet",
	Long: `Segment a sample of every corpus entry and write the most frequent terms that
are not already stopwords. Metadata and full text are counted separately into
meta.txt and fulltext.txt, one "term<TAB>count" per line.

Review the output by hand before adding anything to the stopword list.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStopwords,
}

func init() {
	rootCmd.AddCommand(stopwordsCmd)
	stopwordsCmd.Flags().IntVar(&stopwordsSample, "sample", usecase.DefaultSurveySample, "rows read from each corpus entry")
	stopwordsCmd.Flags().IntVar(&stopwordsTop, "top", 500, "terms kept per list (0 keeps all)")
	stopwordsCmd.Flags().StringVarP(&stopwordsOut, "out", "o", ".", "output directory")
}

func runStopwords(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	raw := cfg.Ingest.RawDataPath
	if len(args) > 0 {
		raw = args[0]
	}

	seg, err := analyzer.Default()
	if err != nil {
		return err
	}
	stop, err := analyzer.LoadStopwords(cfg.Index.StopwordsFile)
	if err != nil {
		return err
	}

	survey := usecase.NewStopwordSurvey(
		corpus.NewReader(cfg.Ingest.ArchivePattern, cfg.Ingest.EntryPattern),
		seg, stop, stopwordsSample,
	)
	progress, finish := newProgress("Surveying")
	result, err := survey.Run(ctx, raw, stopwordsTop, progress)
	finish()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(stopwordsOut, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	outputs := []struct {
		name   string
		counts []analyzer.TermCount
	}{
		{"meta.txt", result.Meta},
		{"fulltext.txt", result.FullText},
	}
	for _, o := range outputs {
		if err := writeCountsFile(filepath.Join(stopwordsOut, o.name), o.counts); err != nil {
			return err
		}
	}

	fmt.Printf("\nSurvey complete:\n")
	fmt.Printf("  Entries:        %d\n", result.Entries)
	fmt.Printf("  Rows sampled:   %d\n", result.Rows)
	fmt.Printf("  Meta terms:     %d\n", len(result.Meta))
	fmt.Printf("  Full text terms: %d\n", len(result.FullText))
	fmt.Printf("\nWrote meta.txt and fulltext.txt to %s\n", stopwordsOut)
	return nil
}

func writeCountsFile(path string, counts []analyzer.TermCount) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := analyzer.WriteCounts(f, counts); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
