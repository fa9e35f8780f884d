package cli

import (
	"strings"

	"github.com/spf13/cobra"

	configfile "githarvest/internal/adapters/driven/config/file"
	"githarvest/internal/adapters/driven/storage/sqlite"
	"githarvest/internal/core/domain"
)

var showCmd = &cobra.Command{
	Use:   "show [owner/name]",
	Short: "Show stored repository profiles",
	Long: `Prints a stored repository profile. Without an argument, lists every
stored repository with its headline numbers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	dir := dataDir
	if dir == "" {
		cfg, err := configfile.Load(configPath)
		if err != nil {
			return err
		}
		dir = cfg.Harvest.DataDir
	}
	store, err := sqlite.NewStore(dir)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if len(args) == 0 {
		profiles, err := store.ListRepositories(ctx)
		if err != nil {
			return err
		}
		if len(profiles) == 0 {
			cmd.Println("No repository profiles stored yet.")
			return nil
		}
		for _, p := range profiles {
			cmd.Printf("%-40s %-12s %6d stars  %4d deps  fetched %s\n",
				p.Ref(), p.Language, p.Stars, len(p.Dependencies), p.FetchedAt.Format("2006-01-02"))
		}
		return nil
	}

	ref, err := domain.ParseRepoRef(args[0])
	if err != nil {
		return err
	}
	p, err := store.GetRepository(ctx, ref)
	if err != nil {
		return err
	}

	cmd.Printf("%s\n", p.Ref())
	if p.Description != "" {
		cmd.Printf("  %s\n", p.Description)
	}
	cmd.Printf("  Language: %s  License: %s\n", orDash(p.Language), orDash(p.License))
	cmd.Printf("  Stars: %d  Forks: %d  Open issues: %d\n", p.Stars, p.Forks, p.OpenIssues)
	if len(p.Topics) > 0 {
		cmd.Printf("  Topics: %s\n", strings.Join(p.Topics, ", "))
	}
	cmd.Printf("  Issues: %d open / %d closed\n", p.Issues.Open, p.Issues.Closed)
	cmd.Printf("  Pulls: %d open / %d closed (%d merged)\n", p.Pulls.Open, p.Pulls.Closed, p.Pulls.Merged)
	cmd.Printf("  Commits: %d  Contributors: %d  Tags: %d\n", p.Commits, p.Contributors, len(p.Tags))
	if p.Classification.CITool != "" {
		cmd.Printf("  CI tool: %s\n", p.Classification.CITool)
	}
	printPaths(cmd, "Database files", p.Classification.DatabaseFiles)
	printPaths(cmd, "Documentation", p.Classification.DocumentationFiles)
	printPaths(cmd, "API specs", p.Classification.APISpecFiles)
	if len(p.Dependencies) > 0 {
		cmd.Println("  Dependencies:")
		for _, d := range p.Dependencies {
			cmd.Printf("    %s %s\n", d.Name, d.Version)
		}
	}
	if len(p.Missing) > 0 {
		cmd.Printf("  Unavailable: %s\n", strings.Join(p.Missing, ", "))
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
