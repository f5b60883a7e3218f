package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/signaldesk/signaldesk/internal/scheduler"
	"github.com/signaldesk/signaldesk/internal/scheduler/jobs"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the scheduler",
	Long: `Starts the scheduler daemon or manages its jobs.

Registered jobs:
- pipeline_run: full pipeline on CRON_SCHEDULE (default weekday 06:30)

Subcommands:
  start  - start the scheduler daemon
  list   - list registered jobs

Example:
  go run ./cmd/desk scheduler start
  go run ./cmd/desk scheduler list`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler daemon",
	Long: `Starts the scheduler and keeps it running until Ctrl+C.

The pipeline job retries on failure; a degraded run counts as success.`,
	RunE: runSchedulerDaemon,
}

var schedulerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered jobs",
	RunE:  listJobs,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
}

func newScheduler() (*scheduler.Scheduler, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewPipelineJob(cfg, log, buildPipeline(cfg, log))); err != nil {
		return nil, err
	}
	return sched, nil
}

func runSchedulerDaemon(cmd *cobra.Command, args []string) error {
	sched, err := newScheduler()
	if err != nil {
		return err
	}

	sched.Start()
	fmt.Println("Scheduler running, Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, err := newScheduler()
	if err != nil {
		return err
	}
	for _, name := range sched.GetAllJobs() {
		fmt.Println(name)
	}
	return nil
}
