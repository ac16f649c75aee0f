// Package cli wires the archmap commands: project analysis, model export,
// and version reporting.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "archmap",
		Short: "Visualize the architecture of a codebase as a treemap",
		Long: `Archmap analyzes a source project and produces a visual architecture
model: a hierarchy of folders, files, and symbols with dependency edges,
per-node metrics, and a deterministic treemap layout.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			loadConfig()
		},
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Analyze a project and print its architecture model",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().StringSliceP("endings", "e", nil, "Code file endings to include (default: all supported)")
	analyzeCmd.Flags().String("lang", "go", "Primary language id, used for language-server selection")
	analyzeCmd.Flags().Bool("lsp", false, "Resolve references through a language server when available")
	analyzeCmd.Flags().String("focus", "", "Only lay out artifacts whose name contains this substring")
	analyzeCmd.Flags().String("format", "text", "Output format: text|json|yaml")
	analyzeCmd.Flags().StringP("out", "o", "", "Write the model to a file instead of stdout")
	analyzeCmd.Flags().Float64("width", viper.GetFloat64(viewWidthKey), "Root rectangle width")
	analyzeCmd.Flags().Float64("height", viper.GetFloat64(viewHeightKey), "Root rectangle height")
	bindFlagToConfig(analyzeCmd.Flags().Lookup("width"), viewWidthKey)
	bindFlagToConfig(analyzeCmd.Flags().Lookup("height"), viewHeightKey)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the archmap version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)
	return rootCmd
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}
