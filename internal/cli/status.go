package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harun/mnemo/pkg/archive"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show memory store status",
	Long:  `Show document counts, tier states and the latest archived day.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	count, err := a.store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Indexed documents: %d\n", count)

	latest, err := a.archive.LatestDailyDate()
	switch {
	case errors.Is(err, archive.ErrNotFound):
		fmt.Println("Latest daily summary: none")
	case err != nil:
		return err
	default:
		fmt.Printf("Latest daily summary: %s\n", latest.Format(archive.DateFormat))
	}

	profile, err := a.tiers.Profile()
	if err != nil {
		return err
	}
	fmt.Printf("Profile: v%d, %d words, %s\n", profile.Version, profile.WordCount, tierStatus(string(profile.Status)))

	digest, err := a.tiers.Digest()
	if err != nil {
		return err
	}
	fmt.Printf("Rolling digest: v%d, %d words, %s", digest.Version, digest.WordCount, tierStatus(string(digest.Status)))
	if digest.LastSourceDate != "" {
		fmt.Printf(" (through %s)", digest.LastSourceDate)
	}
	fmt.Println()

	return nil
}

func tierStatus(s string) string {
	if s == "" {
		return "empty"
	}
	return s
}
