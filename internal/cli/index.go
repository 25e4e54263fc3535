package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"caselaw/internal/usecase"
)

var (
	indexRebuild bool
	indexResume  bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the search index from the document store",
	Long: `Build the full-text index over every stored case.
The index records the schema and analyzer settings it was built with; when
they change, run with --rebuild to start over. --resume continues after the
last committed record instead of re-indexing everything.

Examples:
  caselaw index              # Index all stored cases
  caselaw index --resume     # Continue an interrupted run
  caselaw index --rebuild    # Drop the index and build it again`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&indexRebuild, "rebuild", false, "discard the existing index first")
	indexCmd.Flags().BoolVar(&indexResume, "resume", false, "continue after the last committed record")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	if indexRebuild && indexResume {
		return fmt.Errorf("--rebuild and --resume cannot be combined")
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if indexRebuild {
		fmt.Println("Clearing existing index...")
	}
	idx, err := openIndex(cfg, indexRebuild, false)
	if err != nil {
		return err
	}
	defer idx.Close()

	// A shared cache must not serve pages from before this run.
	pageCache, closeCache, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	indexUC := usecase.NewIndexUseCase(st, idx, cfg.Index.CommitEvery, pageCache, nil)
	progress, finish := newProgress("Indexing")
	result, err := indexUC.Index(ctx, indexResume, progress)
	finish()
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("\nIndexing complete:\n")
	if indexResume {
		fmt.Printf("  Resumed after:  %d\n", result.ResumedAfter)
	}
	fmt.Printf("  Documents:      %d indexed\n", result.Indexed)
	fmt.Printf("  Commits:        %d\n", result.Commits)
	fmt.Printf("  Index size:     %d documents\n", result.DocCount)
	fmt.Printf("  Elapsed:        %s\n", formatDuration(result.Duration))
	fmt.Printf("\nIndex stored at: %s\n", cfg.Index.Path)
	return nil
}
