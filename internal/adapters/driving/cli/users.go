package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"githarvest/internal/core/domain"
)

var (
	usersQuery    string
	usersLocation string
	usersLimit    int
)

var usersCmd = &cobra.Command{
	Use:   "users [login...]",
	Short: "Harvest user profiles",
	Long: `Harvests a profile for each user account and stores it in the local
database. Targets come from login arguments or from --query (user
search). --location keeps only users whose profile location matches.`,
	RunE: runUsers,
}

func init() {
	usersCmd.Flags().StringVar(&usersQuery, "query", "", "Harvest users matching a search query")
	usersCmd.Flags().StringVar(&usersLocation, "location", "", "Keep only users with this profile location")
	usersCmd.Flags().IntVar(&usersLimit, "limit", 0, "Stop collecting targets after this many (0 = no limit)")
	rootCmd.AddCommand(usersCmd)
}

func runUsers(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && usersQuery == "" {
		return fmt.Errorf("%w: name users, or pass --query", domain.ErrInvalidInput)
	}

	p, err := buildPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx := cmd.Context()
	logins := args
	if usersQuery != "" {
		for login, err := range p.agg.SearchUsers(ctx, usersQuery) {
			if err != nil {
				return fmt.Errorf("searching users: %w", err)
			}
			logins = append(logins, login)
			if usersLimit > 0 && len(logins) >= usersLimit {
				break
			}
		}
	}
	if usersLimit > 0 && len(logins) > usersLimit {
		logins = logins[:usersLimit]
	}

	cmd.Printf("Harvesting %d users...\n", len(logins))
	report, err := p.harvester.HarvestUsers(ctx, logins, usersLocation)
	if report != nil {
		printReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("harvest aborted: %w", err)
	}
	return nil
}
