// Command flaggallery runs the 3D flag gallery and its tooling.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	itemsPath  string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "flaggallery",
	Short: "3D portfolio gallery of waving flag panels",
	Long: `flaggallery presents a list of projects as cloth-like flag panels.

Scroll to travel along the linear path; scrolling past the last item opens
the gallery, where clicking a panel zooms in on it and Escape returns.

Run without a subcommand to open the gallery window.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config = zap.NewDevelopmentConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runGallery,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML file overlaid on the default tuning")
	rootCmd.PersistentFlags().StringVarP(&itemsPath, "items", "i", "", "YAML item list (default: built-in catalogue)")

	addRunFlags(rootCmd)
	addRunFlags(runCmd)
	replayCmd.Flags().IntVar(&replayTicks, "max-ticks", 60*60*5, "Give up after this many ticks")
	replayCmd.Flags().BoolVar(&replayWindow, "window", false, "Replay in a window instead of headless")
	replayCmd.Flags().StringVar(&imagesDir, "images", "", "Directory item image references resolve against")
	replayCmd.Flags().StringVar(&shotDir, "screenshot-dir", "screenshots", "Directory for screenshots")
	replayCmd.Flags().StringVar(&shotFormat, "screenshot-format", "png", "Screenshot format: png or webp")
	layoutCmd.Flags().StringVar(&layoutMode, "mode", "both", "Positions to print: linear, gallery or both")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(itemsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
