package cmd

import (
	"fmt"

	"github.com/andresmejia3/attend/internal/camera"
	"github.com/andresmejia3/attend/internal/capture"
	"github.com/andresmejia3/attend/internal/utils"
	"github.com/spf13/cobra"
)

var brightnessCmd = &cobra.Command{
	Use:   "brightness",
	Short: "Measure the camera's current brightness",
	Long:  "Captures one frame and prints its average brightness (0-255), to help choose min_brightness.",
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := camera.Open(cmd.Context(), Cfg.Camera, Logger)
		if err != nil {
			utils.ShowError("Camera unavailable", err, camera.Process(err))
			return err
		}
		defer src.Close()

		frame, err := capture.New(src, capture.WithLogger(Logger)).Capture()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "💡 Brightness: %d (%dx%d)\n", frame.Brightness, frame.Width, frame.Height)
		switch {
		case Cfg.MinBrightness == 0:
			fmt.Fprintln(out, "   Enforcement is off (min_brightness = 0).")
		case frame.Brightness < Cfg.MinBrightness:
			fmt.Fprintf(out, "   ⚠️  Below min_brightness %d: captures would be rejected.\n", Cfg.MinBrightness)
		default:
			fmt.Fprintf(out, "   ✅ Meets min_brightness %d.\n", Cfg.MinBrightness)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(brightnessCmd)
}
