// Package cmd implements the advisor-backend command line interface.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "advisor-backend",
	Short: "Technology standardization and container recommendation service",
	Long: `advisor-backend standardizes free-text technology stack descriptions
against a technology knowledge graph, resolves versions, infers missing
stack layers, and recommends container images for modernization planning.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("kg-dir", "data", "directory holding the knowledge graph artifacts")
	rootCmd.PersistentFlags().String("kg-url", "", "remote mirror to fetch artifacts from before loading (optional)")
	rootCmd.PersistentFlags().String("profile", "", "scoring profile YAML (defaults built in when empty)")

	viper.BindPFlag("kg.dir", rootCmd.PersistentFlags().Lookup("kg-dir"))
	viper.BindPFlag("kg.url", rootCmd.PersistentFlags().Lookup("kg-url"))
	viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))

	viper.SetEnvPrefix("ADVISOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}
