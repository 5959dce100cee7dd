package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/harun/mnemo/pkg/archive"
)

var (
	ingestDate     string
	ingestLanguage string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <transcript-file>",
	Short: "Process one day's transcript into memory",
	Long: `Ingest a plain-text day transcript: archive a daily summary, chunk
and embed the transcript for retrieval, merge the profile and rolling
digest, and fire any due weekly/monthly rollups.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDate, "date", "", "transcript date as YYYY-MM-DD (default: today)")
	ingestCmd.Flags().StringVar(&ingestLanguage, "language", "English", "transcript language")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	date := time.Now()
	if ingestDate != "" {
		var err error
		date, err = time.Parse(archive.DateFormat, ingestDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q, want YYYY-MM-DD: %w", ingestDate, err)
		}
	}

	transcript, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	// One ingestion makes several oracle round-trips; give each day a
	// generous multiple of the single-call timeout.
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*a.timeout)
	defer cancel()

	report, err := a.pipeline.ProcessDay(ctx, date, string(transcript), ingestLanguage, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Processed %s\n", report.Date)
	fmt.Printf("Summary: %d words\n", report.SummaryWords)
	fmt.Printf("Chunks indexed: %d\n", report.ChunkCount)
	return nil
}
