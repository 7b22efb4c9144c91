package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/junkyard/internal/git"
	"github.com/joescharf/junkyard/internal/output"
)

var projectReadme bool

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Inspect catalog projects",
	Long:  "List and show the projects in the catalog file.",
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List catalog projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectListRun()
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a project and its last commit date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectShowRun(args[0])
	},
}

func init() {
	projectShowCmd.Flags().BoolVar(&projectReadme, "readme", false, "Also print the README fetched from GitHub")

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	rootCmd.AddCommand(projectCmd)
}

func projectListRun() error {
	s := newStore()
	projects, err := s.ListProjects(context.Background())
	if err != nil {
		return err
	}

	if len(projects) == 0 {
		ui.Info("No projects in %s.", s.Path())
		return nil
	}

	table := ui.Table([]string{"Name", "Description"})
	for _, p := range projects {
		table.Append([]string{output.Cyan(p.Name), p.Description})
	}
	return table.Render()
}

func projectShowRun(name string) error {
	ctx := context.Background()

	p, err := newStore().GetProjectByName(ctx, name)
	if err != nil {
		return err
	}

	gh, err := newGitHubClient()
	if err != nil {
		return err
	}
	info := git.ResolveCommitDate(ctx, gh, p.Name, time.Now)

	fmt.Fprintf(ui.Out, "%s\n", output.Cyan(p.Name))
	if p.Description != "" {
		fmt.Fprintf(ui.Out, "  %s\n", p.Description)
	}
	if info.Fallback {
		fmt.Fprintf(ui.Out, "  Last commit: %s\n", output.Yellow("unknown ("+info.Err.Error()+")"))
	} else {
		fmt.Fprintf(ui.Out, "  Last commit: %s\n", info.LastCommitDate.Local().Format("2006-01-02 15:04"))
	}

	if !projectReadme {
		return nil
	}

	readme, err := gh.Readme(ctx, p.Name)
	if err != nil {
		return err
	}
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, readme)
	return nil
}
