package cmd

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/report"
	"github.com/ayusman/mudra/internal/script"
)

var (
	simQuiet bool
	simSeed  uint64
	simPlot  string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <script.yaml>",
	Short: "Replay a scripted hand against the scene",
	Long: `Play a hand script on a virtual clock against the configured scene. Each
dispatcher notice is printed with its offset into the script, followed by a
summary of the gestures and effects that were triggered.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().BoolVarP(&simQuiet, "quiet", "q", false, "print only the summary")
	simulateCmd.Flags().Uint64Var(&simSeed, "seed", 1, "seed for effect randomness")
	simulateCmd.Flags().StringVar(&simPlot, "plot", "", "write a timeline plot (.png, .svg or .pdf)")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	s, err := script.Load(args[0])
	if err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, settings)
	if err != nil {
		return err
	}
	defer log.Close()

	a, err := app.New(app.Config{Settings: settings, Logger: log, Seed: simSeed})
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	out := cmd.OutOrStdout()
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	if !simQuiet {
		a.Observe(func(n interaction.Notice) {
			printNotice(out, n, n.Time.Sub(start))
		})
	}

	var rec *report.Recorder
	if simPlot != "" {
		rec = report.NewRecorder(start)
		a.OnStep(rec.Sample)
		a.Observe(rec.Notice)
	}

	sum := a.Simulate(s, start)

	name := sum.Script
	if name == "" {
		name = args[0]
	}
	fmt.Fprintf(out, "\nScript: %s\n", name)
	fmt.Fprintf(out, "Frames: %d (%v at %d fps)\n", sum.Frames, sum.Duration, s.FPS)
	printCounts(out, "Gestures", sum.Gestures)
	printCounts(out, "Effects", sum.Effects)
	printCounts(out, "Notices", sum.Notices)

	if rec != nil {
		if err := rec.Save(simPlot, name); err != nil {
			return err
		}
		fmt.Fprintf(out, "Plot: %s\n", simPlot)
	}
	return nil
}

func printNotice(w io.Writer, n interaction.Notice, at time.Duration) {
	line := fmt.Sprintf("%8s  %-16s %-9s %-5s", at.Truncate(time.Millisecond), n.Type, n.Gesture, n.Hand)
	if n.Effect != "" {
		line += " " + n.Effect
	}
	if n.Node != "" {
		line += " on " + n.Node
	}
	if n.Reason != "" {
		line += " (" + n.Reason + ")"
	}
	fmt.Fprintln(w, line)
}

func printCounts[K ~string](w io.Writer, title string, counts map[K]int) {
	fmt.Fprintf(w, "%s:\n", title)
	if len(counts) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-18s %d\n", k, counts[K(k)])
	}
}
