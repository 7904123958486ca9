package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/career-copilot/internal/logger"
)

const defaultSchedule = "0 */6 * * *"

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the pipeline on a cron schedule",
	Run: func(_ *cobra.Command, _ []string) {
		watch()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func watch() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	schedule := defaultSchedule
	if config != nil && config.Watch != nil && config.Watch.Schedule != "" {
		schedule = config.Watch.Schedule
	}

	scheduler := cron.New()
	_, err = scheduler.AddFunc(schedule, func() {
		// Scheduled runs never prompt; there is nobody at the terminal.
		if err := runOnce(ctx, config, zlog, true); err != nil {
			zlog.Error("scheduled run failed", zap.Error(err))
		}
	})
	if err != nil {
		zlog.Fatal("invalid watch schedule", zap.String("schedule", schedule), zap.Error(err))
	}

	zlog.Info("watch started", zap.String("schedule", schedule))
	scheduler.Start()

	<-ctx.Done()
	zlog.Info("watch stopping", zap.String("reason", "signal received"))

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
}
