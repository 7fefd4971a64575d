package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ortelius/advisor-backend/internal/services"
	"github.com/ortelius/advisor-backend/model"
)

// assessCmd runs the pipeline over a JSON component inventory without
// starting the server. Reads stdin when no input file is given.
var assessCmd = &cobra.Command{
	Use:   "assess [inventory.json]",
	Short: "Standardize a component inventory and recommend container images",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		var req model.AssessRequest
		if err := json.NewDecoder(in).Decode(&req); err != nil {
			return fmt.Errorf("decode inventory: %w", err)
		}

		_, assessor, err := buildAssessor()
		if err != nil {
			return err
		}

		opts := services.BatchOptions{
			Catalog: viper.GetString("assess.catalog"),
			Workers: viper.GetInt("assess.workers"),
		}
		comps, err := assessor.AssessAll(req.Components, opts)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(model.AssessResponse{Components: comps})
	},
}

func init() {
	assessCmd.Flags().String("catalog", "", "image catalog to plan against (skips planning when empty)")
	assessCmd.Flags().Int("workers", 0, "worker pool size for batch assessment (sequential when <= 1)")
	viper.BindPFlag("assess.catalog", assessCmd.Flags().Lookup("catalog"))
	viper.BindPFlag("assess.workers", assessCmd.Flags().Lookup("workers"))

	rootCmd.AddCommand(assessCmd)
}
