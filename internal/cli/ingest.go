package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"caselaw/internal/adapter/corpus"
	"caselaw/internal/usecase"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [raw_dir]",
	Short: "Load archived CSV cases into the document store",
	Long: `Load every zip archive under the raw data directory into the document store.
Archives are read in lexical path order and rows receive consecutive ids in
that order. Ids already present in the store are skipped, so an interrupted
run can simply be started again over the same, unchanged corpus.

Examples:
  caselaw ingest                # Use ingest.raw_data_path from the config
  caselaw ingest /data/raw      # Ingest a specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	raw := cfg.Ingest.RawDataPath
	if len(args) > 0 {
		var err error
		raw, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}
	info, err := os.Stat(raw)
	if err != nil {
		return fmt.Errorf("raw data directory does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", raw)
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	reader := corpus.NewReader(cfg.Ingest.ArchivePattern, cfg.Ingest.EntryPattern)
	archives, err := reader.Archives(raw)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d archives in %s\n", len(archives), raw)

	ingestUC := usecase.NewIngestUseCase(st, reader, cfg.Ingest.BatchSize, nil)
	progress, finish := newProgress("Ingesting")
	result, err := ingestUC.Ingest(ctx, raw, progress)
	finish()
	if err != nil {
		return err
	}

	total, err := st.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	fmt.Printf("\nIngestion complete (run %s):\n", result.RunID)
	fmt.Printf("  Rows read:      %d\n", result.Rows)
	fmt.Printf("  Inserted:       %d\n", result.Inserted)
	fmt.Printf("  Skipped:        %d (already stored)\n", result.Skipped)
	fmt.Printf("  Batches:        %d\n", result.Batches)
	fmt.Printf("  Records stored: %d\n", total)
	fmt.Printf("  Elapsed:        %s\n", formatDuration(result.Duration))
	fmt.Printf("\nDocument store at: %s\n", cfg.Store.Path)
	return nil
}
