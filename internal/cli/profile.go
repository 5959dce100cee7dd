package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the current profile",
	RunE:  runProfileShow,
}

var profileSetCmd = &cobra.Command{
	Use:   "set <file>",
	Short: "Replace the profile with the contents of a file",
	Long: `Replace the profile text directly, without an oracle call. The
word ceiling is enforced strictly on this path: oversized input is
rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileSet,
}

func init() {
	profileCmd.AddCommand(profileSetCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	profile, err := a.tiers.Profile()
	if err != nil {
		return err
	}

	if profile.Text == "" {
		fmt.Println("Profile is empty.")
		return nil
	}

	fmt.Printf("Version %d, %d words, %s, updated %s\n\n",
		profile.Version, profile.WordCount, profile.Status,
		profile.LastUpdated.Format("2006-01-02 15:04:05"))
	fmt.Println(profile.Text)
	return nil
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	text, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	profile, err := a.tiers.OverrideProfile(string(text))
	if err != nil {
		return err
	}

	fmt.Printf("Profile set: version %d, %d words\n", profile.Version, profile.WordCount)
	return nil
}
