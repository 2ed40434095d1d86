// Command papexctl runs administrative tasks against the Papiers Express database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"papex_backend/platform/config"
	"papex_backend/platform/db"
	"papex_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "papexctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "papexctl",
		Short: "Papiers Express administration CLI",
		Long: `papexctl applies database migrations, runs the lead lifecycle jobs on demand
and manages staff accounts and slot capacities.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newMigrateCmd(),
		newResendConfirmationsCmd(),
		newRunRemindersCmd(),
		newMarkAbsentCmd(),
		newCreateUserCmd(),
		newSlotCapacityCmd(),
	)
	return cmd
}

// runtime is what every database-backed command needs.
type runtime struct {
	cfg  *config.Config
	log  *logger.Logger
	pool *pgxpool.Pool
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Env)
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &runtime{cfg: cfg, log: log, pool: pool}, nil
}

func (r *runtime) Close() {
	r.pool.Close()
}
