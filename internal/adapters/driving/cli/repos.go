package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"githarvest/internal/core/domain"
)

var (
	reposOwner string
	reposQuery string
	reposLimit int
)

var reposCmd = &cobra.Command{
	Use:   "repos [owner/name...]",
	Short: "Harvest repository profiles",
	Long: `Harvests a profile for each repository and stores it in the local
database. Targets come from owner/name arguments, from --owner (every
public repository of that account), or from --query (repository search).`,
	RunE: runRepos,
}

func init() {
	reposCmd.Flags().StringVar(&reposOwner, "owner", "", "Harvest every public repository of this account")
	reposCmd.Flags().StringVar(&reposQuery, "query", "", "Harvest repositories matching a search query")
	reposCmd.Flags().IntVar(&reposLimit, "limit", 0, "Stop collecting targets after this many (0 = no limit)")
	rootCmd.AddCommand(reposCmd)
}

func runRepos(cmd *cobra.Command, args []string) error {
	refs, err := parseRefs(args)
	if err != nil {
		return err
	}
	if len(refs) == 0 && reposOwner == "" && reposQuery == "" {
		return fmt.Errorf("%w: name repositories, or pass --owner or --query", domain.ErrInvalidInput)
	}

	p, err := buildPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx := cmd.Context()
	if reposOwner != "" {
		for ref, err := range p.agg.ListUserRepositories(ctx, reposOwner) {
			if err != nil {
				return fmt.Errorf("listing repositories of %s: %w", reposOwner, err)
			}
			refs = append(refs, ref)
			if reposLimit > 0 && len(refs) >= reposLimit {
				break
			}
		}
	}
	if reposQuery != "" {
		for ref, err := range p.agg.SearchRepositories(ctx, reposQuery) {
			if err != nil {
				return fmt.Errorf("searching repositories: %w", err)
			}
			refs = append(refs, ref)
			if reposLimit > 0 && len(refs) >= reposLimit {
				break
			}
		}
	}
	if reposLimit > 0 && len(refs) > reposLimit {
		refs = refs[:reposLimit]
	}

	cmd.Printf("Harvesting %d repositories...\n", len(refs))
	report, err := p.harvester.HarvestRepositories(ctx, refs)
	if report != nil {
		printReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("harvest aborted: %w", err)
	}
	return nil
}

func parseRefs(args []string) ([]domain.RepoRef, error) {
	refs := make([]domain.RepoRef, 0, len(args))
	for _, arg := range args {
		ref, err := domain.ParseRepoRef(arg)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
