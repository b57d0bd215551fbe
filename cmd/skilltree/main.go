package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skilltree/pkg/builder"
	"github.com/jingkaihe/skilltree/pkg/logger"
	"github.com/jingkaihe/skilltree/pkg/presenter"
	"github.com/jingkaihe/skilltree/pkg/validator"
)

// Exit codes let CI distinguish "the tree is wrong" from "the tool
// could not run".
const (
	exitOK      = 0
	exitInvalid = 1
	exitIO      = 2
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("SKILLTREE")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("skilltree-config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/skilltree")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()

	viper.SetDefault("category_warn_threshold", validator.DefaultCategoryWarnThreshold)
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("log_format", "fmt")
}

var rootCmd = &cobra.Command{
	Use:   "skilltree [skills-root]",
	Short: "Build and validate the skill tree sitemap",
	Long: `skilltree scans a directory of skill documents (SKILL.md files with YAML
frontmatter), validates the declared hierarchy of routers, categories, and
parent links, and regenerates the canonical SKILLS.md sitemap.

Without flags the sitemap is rewritten in place. With --check the rendered
output is compared against the committed sitemap instead, which is the mode
CI should run.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			presenter.Error(err, "invalid log level")
			os.Exit(exitIO)
		}
		logger.SetLogFormat(viper.GetString("log_format"))

		quiet, _ := cmd.Flags().GetBool("quiet")
		presenter.SetQuiet(quiet)

		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		cfg := builder.Config{
			Root:                  root,
			CategoryWarnThreshold: viper.GetInt("category_warn_threshold"),
		}

		check, _ := cmd.Flags().GetBool("check")
		watch, _ := cmd.Flags().GetBool("watch")
		switch {
		case check:
			os.Exit(runCheck(ctx, cfg))
		case watch:
			os.Exit(runWatch(ctx, cfg))
		default:
			os.Exit(runGenerate(ctx, cfg))
		}
	},
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, json)")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.Flags().Bool("check", false, "Verify the committed sitemap is current instead of rewriting it")
	rootCmd.Flags().Bool("watch", false, "Regenerate the sitemap whenever a skill document changes")
	rootCmd.Flags().Bool("quiet", false, "Suppress status output; diagnostics still print to stderr")
	rootCmd.Flags().Int("category-warn-threshold", validator.DefaultCategoryWarnThreshold,
		"Warn when a category holds more than this many skills")
	viper.BindPFlag("category_warn_threshold", rootCmd.Flags().Lookup("category-warn-threshold"))

	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitIO)
	}
}
