package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/joescharf/junkyard/internal/git"
	"github.com/joescharf/junkyard/internal/output"
	"github.com/joescharf/junkyard/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "junkyard",
	Short: "JunkYard - a portfolio site for side projects",
	Long: `junkyard serves a small portfolio site: a home page listing side
projects from a JSON catalog, one page per project rendered from its GitHub
README, and a sitemap built from each repository's last commit.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/junkyard/config.yaml)")
	rootCmd.PersistentFlags().String("projects", "", "Projects catalog file (default projects.json)")
	_ = viper.BindPFlag("projects_file", rootCmd.PersistentFlags().Lookup("projects"))
}

func initConfig() {
	// .env in the working directory; existing environment wins.
	_ = gotenv.Load()

	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if dir, err := configDirFunc(); err == nil {
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("JUNKYARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Bare PORT and GITHUB_TOKEN are honored for platform compatibility.
	_ = viper.BindEnv("port", "JUNKYARD_PORT", "PORT")
	_ = viper.BindEnv("github.token", "JUNKYARD_GITHUB_TOKEN", "GITHUB_TOKEN")

	setDefaults()

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

// setDefaults registers every config key's default value.
func setDefaults() {
	viper.SetDefault("port", 3000)
	viper.SetDefault("projects_file", "projects.json")
	viper.SetDefault("public_dir", "")
	viper.SetDefault("site.title", "JunkYard")
	viper.SetDefault("site.description", "Side projects, experiments and other junk.")
	viper.SetDefault("site.base_url", "")
	viper.SetDefault("github.owner", "")
	viper.SetDefault("github.branch", "main")
	viper.SetDefault("github.token", "")
	viper.SetDefault("github.api_url", "https://api.github.com")
	viper.SetDefault("github.raw_url", "https://raw.githubusercontent.com")
	viper.SetDefault("github.timeout", "10s")
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// newStore returns the catalog store for the configured projects file.
func newStore() *store.FileStore {
	path := viper.GetString("projects_file")
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return store.NewFileStore(path)
}

// newGitHubClient builds the GitHub client from configuration.
func newGitHubClient() (*git.HTTPGitHubClient, error) {
	return git.NewGitHubClient(git.GitHubConfig{
		Owner:   viper.GetString("github.owner"),
		Branch:  viper.GetString("github.branch"),
		Token:   viper.GetString("github.token"),
		APIURL:  viper.GetString("github.api_url"),
		RawURL:  viper.GetString("github.raw_url"),
		Timeout: viper.GetDuration("github.timeout"),
	})
}
