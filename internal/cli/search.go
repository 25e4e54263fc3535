package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"caselaw/internal/domain"
	"caselaw/internal/usecase"
)

var (
	searchText   string
	searchOffset int
	searchExport bool
	searchOut    string
	searchJSON   bool
	searchMode   string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search indexed cases",
	Long: `Search the index. Clauses are combined with AND; prefix a clause with - to
exclude it, with field: to restrict it to one field, and quote phrases.

Examples:
  caselaw search -q "买卖合同纠纷"
  caselaw search -q "court:最高人民法院 year:[2018 TO 2020]" --offset 20
  caselaw search -q "民间借贷" --export --out ./exports`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchText, "query", "q", "", "search query (required)")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "number of results to skip")
	searchCmd.Flags().BoolVar(&searchExport, "export", false, "export up to query.export_limit results as CSV")
	searchCmd.Flags().StringVar(&searchOut, "out", "", "export directory or file (default stdout)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.Flags().StringVar(&searchMode, "mode", "keyword", "query mode: keyword or vector")
	searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	mode, err := domain.ParseQueryMode(searchMode)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	idx, err := openIndex(cfg, false, true)
	if err != nil {
		return err
	}
	defer idx.Close()

	engine := usecase.NewQueryEngine(idx, cfg.Query)
	page, err := engine.Search(ctx, usecase.SearchRequest{
		Text:   searchText,
		Offset: searchOffset,
		Export: searchExport,
		Mode:   mode,
	})
	if err != nil {
		return err
	}
	results, err := usecase.NewAssembler(st, cfg.Query.PreviewChars).Assemble(ctx, page.Hits)
	if err != nil {
		return err
	}

	if searchExport {
		return writeExport(page, results)
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"query":   page.Query,
			"total":   page.Total,
			"offset":  page.Offset,
			"limit":   page.Limit,
			"results": results,
		})
	}

	if len(results) == 0 {
		fmt.Printf("No results for %q (total %d, offset %d)\n", page.Query, page.Total, page.Offset)
		return nil
	}

	fmt.Printf("Found %d cases for %q, showing %d-%d:\n\n",
		page.Total, page.Query, page.Offset+1, page.Offset+len(results))
	for i, r := range results {
		fmt.Printf("%d. [%d] %s (score: %.4f)\n", page.Offset+i+1, r.ID, r.Case.CaseName, r.Score)
		fmt.Printf("   %s | %s | %s\n", r.Case.CaseID, r.Case.Court, r.Case.JudgmentDate)
		if r.Preview != "" {
			fmt.Printf("   %s\n", r.Preview)
		}
		fmt.Println()
	}
	return nil
}

func writeExport(page *domain.SearchPage, results []domain.CaseResult) error {
	if searchOut == "" {
		return usecase.Export(os.Stdout, results)
	}

	path := searchOut
	if info, err := os.Stat(searchOut); err == nil && info.IsDir() {
		path = filepath.Join(searchOut, usecase.ExportFilename(page.Query, page.Total, page.Limit, page.Offset))
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	var w io.Writer = f
	if err := usecase.Export(w, results); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Exported %d of %d cases to %s\n", len(results), page.Total, path)
	return nil
}
