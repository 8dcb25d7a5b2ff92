package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresmejia3/attend/internal/camera"
	"github.com/andresmejia3/attend/internal/config"
	"github.com/andresmejia3/attend/internal/log"
	"github.com/andresmejia3/attend/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Options holds the persistent flags shared by every command. They override
// the config file and environment when set.
type Options struct {
	ConfigPath    string
	ServerURL     string
	CameraBackend string
	CameraDevice  string
	CameraImage   string
	MinBrightness int
	PreviewDir    string
	LogLevel      string
	LogFile       string
}

var (
	rootOpts Options

	// Cfg is the resolved configuration, loaded before any command runs
	Cfg config.Config
	// Logger is the shared diagnostic logger
	Logger *logrus.Logger
)

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "attend",
	Short:         "Face registration and attendance kiosk",
	Long:          "Captures a still from the webcam and submits it to the recognition backend for registration or attendance.",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(rootOpts.ConfigPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, &cfg, rootOpts)
		if err := cfg.Validate(); err != nil {
			return err
		}

		Cfg = cfg
		Logger = log.NewLogger(cfg.LogLevel, cfg.LogFile)
		Logger.WithFields(log.Fields{
			"server":  cfg.ServerURL,
			"backend": cfg.Camera.Backend,
		}).Debug("configuration loaded")
		return nil
	},
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts Options) {
	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.ServerURL = opts.ServerURL
	}
	if flags.Changed("camera-backend") {
		cfg.Camera.Backend = opts.CameraBackend
	}
	if flags.Changed("camera-device") {
		cfg.Camera.Device = opts.CameraDevice
	}
	if flags.Changed("image") {
		// A still image implies the file backend
		cfg.Camera.Backend = camera.BackendFile
		cfg.Camera.Image = opts.CameraImage
	}
	if flags.Changed("min-brightness") {
		cfg.MinBrightness = opts.MinBrightness
	}
	if flags.Changed("preview-dir") {
		cfg.PreviewDir = opts.PreviewDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.LogLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = opts.LogFile
	}
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		utils.Die("attend "+commandName(), err, nil)
	}
}

// commandName returns the subcommand named on the command line, for error headers.
func commandName() string {
	if cmd, _, err := rootCmd.Find(os.Args[1:]); err == nil && cmd != rootCmd {
		return cmd.Name()
	}
	return "failed"
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rootOpts.ConfigPath, "config", "c", "", "Path to a YAML config file (default: ./"+config.DefaultFile+" if present)")
	pf.StringVarP(&rootOpts.ServerURL, "server", "s", "", "Backend base URL, e.g. http://localhost:5000")
	pf.StringVar(&rootOpts.CameraBackend, "camera-backend", "", "Camera backend: ffmpeg, gocv or file")
	pf.StringVar(&rootOpts.CameraDevice, "camera-device", "", "Camera device (/dev/video0, 0, video=...)")
	pf.StringVar(&rootOpts.CameraImage, "image", "", "Use a still image instead of a webcam")
	pf.IntVar(&rootOpts.MinBrightness, "min-brightness", 0, "Reject captures darker than this (0-255, 0 disables)")
	pf.StringVar(&rootOpts.PreviewDir, "preview-dir", "", "Directory the annotated preview is written to")
	pf.StringVar(&rootOpts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&rootOpts.LogFile, "log-file", "", "Also write logs to this rotated file")
}
