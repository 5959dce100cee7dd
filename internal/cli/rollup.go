package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harun/mnemo/pkg/rollup"
)

var rollupOnce bool

var rollupCmd = &cobra.Command{
	Use:   "rollup",
	Short: "Run the weekly/monthly rollup service",
	Long: `Scan the archive for completed weeks and months that have no rollup
yet and create them. With --once the scan runs a single time; otherwise
it repeats on the configured cron schedule until interrupted.`,
	RunE: runRollup,
}

func init() {
	rollupCmd.Flags().BoolVar(&rollupOnce, "once", false, "run a single catch-up pass and exit")
	rootCmd.AddCommand(rollupCmd)
}

func runRollup(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	service, err := rollup.NewService(a.rollups, a.archive, a.cfg.Rollup.CronExpr, a.log.GetZerolog())
	if err != nil {
		return err
	}

	if rollupOnce {
		return service.CatchUp(cmd.Context())
	}

	if !a.cfg.Rollup.Enabled {
		return fmt.Errorf("rollup service is disabled in config")
	}

	// Catch up immediately, then follow the schedule
	if err := service.CatchUp(cmd.Context()); err != nil {
		return err
	}
	service.Start()
	defer service.Stop()

	fmt.Printf("Rollup service running (schedule %q), press Ctrl-C to stop\n", a.cfg.Rollup.CronExpr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	return nil
}
