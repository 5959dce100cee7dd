package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/harun/mnemo/pkg/archive"
)

var digestUpdateDate string

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Show the current rolling digest",
	RunE:  runDigestShow,
}

var digestSetCmd = &cobra.Command{
	Use:   "set <file>",
	Short: "Replace the rolling digest with the contents of a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDigestSet,
}

var digestUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Merge archived daily summaries into the rolling digest",
	Long: `Merge the daily summary for the given date into the rolling digest.
Without --date the update resumes from the most recent archived day.`,
	RunE: runDigestUpdate,
}

func init() {
	digestUpdateCmd.Flags().StringVar(&digestUpdateDate, "date", "", "daily summary date as YYYY-MM-DD")
	digestCmd.AddCommand(digestSetCmd)
	digestCmd.AddCommand(digestUpdateCmd)
	rootCmd.AddCommand(digestCmd)
}

func runDigestShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	digest, err := a.tiers.Digest()
	if err != nil {
		return err
	}

	if digest.Text == "" {
		fmt.Println("Rolling digest is empty.")
		return nil
	}

	fmt.Printf("Version %d, %d words, %s", digest.Version, digest.WordCount, digest.Status)
	if digest.LastSourceDate != "" {
		fmt.Printf(", through %s", digest.LastSourceDate)
	}
	fmt.Printf("\n\n%s\n", digest.Text)
	return nil
}

func runDigestSet(cmd *cobra.Command, args []string) error {
	text, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	digest, err := a.tiers.OverrideDigest(string(text))
	if err != nil {
		return err
	}

	fmt.Printf("Digest set: version %d, %d words\n", digest.Version, digest.WordCount)
	return nil
}

func runDigestUpdate(cmd *cobra.Command, args []string) error {
	var date time.Time
	if digestUpdateDate != "" {
		var err error
		date, err = time.Parse(archive.DateFormat, digestUpdateDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q, want YYYY-MM-DD: %w", digestUpdateDate, err)
		}
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*a.timeout)
	defer cancel()

	digest, err := a.tiers.UpdateRollingDigest(ctx, date)
	if err != nil {
		return err
	}

	fmt.Printf("Digest: version %d, %d words", digest.Version, digest.WordCount)
	if digest.LastSourceDate != "" {
		fmt.Printf(", through %s", digest.LastSourceDate)
	}
	fmt.Println()
	return nil
}
