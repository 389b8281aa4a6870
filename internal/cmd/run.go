package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/monitor"
)

var (
	runMonitor bool
	runCamera  int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the live camera pipeline",
	Long: `Open the camera, track hands and dispatch gestures to the configured scene
until interrupted. With the monitor enabled, notices are streamed over a
websocket at /api/events and camera frames as MJPEG at /api/stream.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runMonitor, "monitor", false, "serve the debug monitor (overrides monitor.enabled)")
	runCmd.Flags().IntVar(&runCamera, "camera", 0, "camera device id (overrides tracking.camera_id)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("monitor") {
		settings.Monitor.Enabled = runMonitor
	}
	if cmd.Flags().Changed("camera") {
		settings.Tracking.CameraID = runCamera
	}

	log, err := newLogger(cmd, settings)
	if err != nil {
		return err
	}
	defer log.Close()

	cfg := app.Config{Settings: settings, Logger: log}
	if settings.Monitor.Enabled {
		cfg.Monitor = monitor.New(monitor.Config{
			Addr:      settings.Monitor.Addr,
			QueueSize: settings.Monitor.QueueSize,
			Logger:    log.With("component", "monitor"),
		})
		fmt.Fprintf(cmd.OutOrStdout(), "Monitor on http://%s\n", settings.Monitor.Addr)
	}

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		return err
	}

	counts := a.Counts()
	fmt.Fprintf(cmd.OutOrStdout(), "Stopped after %d steps\n", a.Steps())
	printCounts(cmd.OutOrStdout(), "Notices", counts)
	return nil
}
