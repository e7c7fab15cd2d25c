package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cuixing158/panoview/common"
	"github.com/cuixing158/panoview/config"
	"github.com/cuixing158/panoview/viewer/app"
)

var (
	flagConfig    string
	flagExportOut string
	flagSize      string
	flagFPS       int
	flagProfile   bool
	flagFFmpeg    string
)

var rootCmd = &cobra.Command{
	Use:   "panoview <panorama>",
	Short: "Interactive 360 degree panorama viewer",
	Long: `panoview renders an equirectangular panorama image or video onto the inside
of a sphere and lets you look around interactively.

Controls:
  Mouse drag     look around
  Scroll wheel   zoom (field of view)
  W/A/S/D        nudge the view
  1 / 2 / 3      Perspective / Little Planet / Crystal Ball mode
  F1 / F2 / F3   Rotate / Swipe / SwipeRotate camera animation (images only)
  P              export the active animation to video (blocking)
  O              export the active animation in the background
  Esc            quit`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}

		cfg.Export.Output = common.Coalesce(flagExportOut, cfg.Export.Output)
		cfg.Export.FPS = common.Coalesce(flagFPS, cfg.Export.FPS)
		cfg.Profile = cfg.Profile || flagProfile
		if flagSize != "" {
			var w, h int
			if _, err := fmt.Sscanf(flagSize, "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
				return fmt.Errorf("invalid --export-size %q, expected WIDTHxHEIGHT", flagSize)
			}
			cfg.Export.Width = w
			cfg.Export.Height = h
		}

		var opts []app.AppOption
		if flagFFmpeg != "" {
			opts = append(opts, app.WithFFmpegPath(flagFFmpeg))
		}
		viewer, err := app.NewApp(cfg, args[0], opts...)
		if err != nil {
			return err
		}
		return viewer.Run()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to a YAML config file")
	rootCmd.Flags().StringVar(&flagExportOut, "export-out", "", "export output file (default out.mp4)")
	rootCmd.Flags().StringVar(&flagSize, "export-size", "", "export size as WIDTHxHEIGHT (default 1920x1080)")
	rootCmd.Flags().IntVar(&flagFPS, "export-fps", 0, "export frame rate (default 30)")
	rootCmd.Flags().BoolVar(&flagProfile, "profile", false, "log FPS and memory statistics")
	rootCmd.Flags().StringVar(&flagFFmpeg, "ffmpeg", "", "path to the ffmpeg executable")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
