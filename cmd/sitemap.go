package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/junkyard/internal/sitemap"
)

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Print sitemap.xml to stdout",
	Long:  "Build the sitemap the server would return for /sitemap.xml and print it.\nRequires site.base_url (or --base-url).",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sitemapRun()
	},
}

func init() {
	sitemapCmd.Flags().String("base-url", "", "Absolute site origin, e.g. https://example.com")
	_ = viper.BindPFlag("site.base_url", sitemapCmd.Flags().Lookup("base-url"))
	rootCmd.AddCommand(sitemapCmd)
}

func sitemapRun() error {
	baseURL := viper.GetString("site.base_url")
	if baseURL == "" {
		return fmt.Errorf("site.base_url is not set (use --base-url)")
	}

	ctx := context.Background()
	projects, err := newStore().ListProjects(ctx)
	if err != nil {
		return err
	}

	gh, err := newGitHubClient()
	if err != nil {
		return err
	}
	set := sitemap.Build(ctx, baseURL, projects, gh, time.Now)
	if err := set.Encode(ui.Out); err != nil {
		return err
	}
	fmt.Fprintln(ui.Out)
	return nil
}
