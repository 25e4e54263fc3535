package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"caselaw/internal/domain"
	"caselaw/internal/usecase"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print one stored case",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output as JSON")
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidID, args[0])
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := usecase.NewAssembler(st, cfg.Query.PreviewChars).Case(ctx, uint32(id))
	if err != nil {
		return err
	}

	if showJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}

	for i, name := range domain.FieldNames {
		if name == "full_text" {
			continue
		}
		fmt.Printf("%-14s %s\n", name+":", *c.Fields()[i])
	}
	fmt.Printf("\n%s\n", c.FullText)
	return nil
}
