package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andresmejia3/attend/internal/form"
	"github.com/andresmejia3/attend/internal/submit"
	"github.com/andresmejia3/attend/internal/types"
	"github.com/andresmejia3/attend/internal/utils"
	"github.com/andresmejia3/attend/internal/web"
	"github.com/spf13/cobra"
)

type kioskOptions struct {
	Mode          string
	Dashboard     bool
	DashboardAddr string
}

var kioskOpts kioskOptions

var kioskCmd = &cobra.Command{
	Use:   "kiosk",
	Short: "Run the interactive capture kiosk",
	Long: `Holds the camera for the whole session and captures on every Enter.
In register mode it prompts for ID, name and department first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := types.ParseMode(kioskOpts.Mode)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		fmt.Fprintf(os.Stderr, "📷 Starting %s kiosk (backend %s)...\n", mode, Cfg.ServerURL)
		s := newSession(ctx, Cfg, Logger, out)
		defer s.Close()

		if kioskOpts.Dashboard {
			addr := Cfg.DashboardAddr
			if cmd.Flags().Changed("dashboard-addr") {
				addr = kioskOpts.DashboardAddr
			}
			dash := web.NewServer(Logger)
			s.presenter.AddSink(dash)
			go func() {
				if err := dash.Listen(ctx, addr); err != nil {
					utils.ShowError("Dashboard stopped", err, nil)
				}
			}()
			fmt.Fprintf(os.Stderr, "🌐 Dashboard: http://%s\n", addr)
		}

		trigger := submit.NewSpinnerTrigger(os.Stderr, "📷 Capture")
		ctrl := s.controller(mode, trigger)
		return runKiosk(ctx, cmd.InOrStdin(), out, ctrl)
	},
}

func init() {
	kioskCmd.Flags().StringVarP(&kioskOpts.Mode, "mode", "m", "attendance", "Kiosk mode: register or attendance")
	kioskCmd.Flags().BoolVarP(&kioskOpts.Dashboard, "dashboard", "d", false, "Serve the web dashboard (toasts and preview)")
	kioskCmd.Flags().StringVar(&kioskOpts.DashboardAddr, "dashboard-addr", "", "Dashboard listen address (default from config)")
	rootCmd.AddCommand(kioskCmd)
}

// errQuit ends the kiosk loop without an error.
var errQuit = errors.New("quit")

// runKiosk reads commands from in until EOF, "q" or ctx is done. Each Enter
// at the capture prompt is one trigger of the controller.
func runKiosk(ctx context.Context, in io.Reader, out io.Writer, ctrl *submit.Controller) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	read := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		select {
		case <-ctx.Done():
			return "", errQuit
		case line, ok := <-lines:
			if !ok {
				return "", errQuit
			}
			return line, nil
		}
	}

	var fields form.Fields
	focus := form.FieldUserID
	editing := ctrl.Mode() == types.ModeRegister

	for {
		if editing {
			if err := promptFields(read, &fields, focus); err != nil {
				return nil
			}
			editing = false
		}

		hint := "Press Enter to capture, q to quit: "
		if ctrl.Mode() == types.ModeRegister {
			hint = "Press Enter to capture, e to edit, q to quit: "
		}
		line, err := read(hint)
		if err != nil {
			return nil
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "q", "quit", "exit":
			return nil
		case "e", "edit":
			if ctrl.Mode() == types.ModeRegister {
				editing, focus = true, form.FieldUserID
			}
			continue
		}

		res := ctrl.Submit(ctx, &fields)
		switch res.Outcome {
		case submit.OutcomeInvalid:
			// Re-prompt from the field that failed
			editing, focus = true, res.Focus
		case submit.OutcomeSuccess:
			if ctrl.Mode() == types.ModeRegister {
				editing, focus = true, form.FieldUserID
			}
		}
	}
}

// promptFields asks for each registration field starting at focus. An empty
// answer keeps the current value.
func promptFields(read func(string) (string, error), fields *form.Fields, focus form.Field) error {
	started := focus == form.FieldNone
	for _, f := range form.Order {
		if f == focus {
			started = true
		}
		if !started {
			continue
		}

		prompt := f.Label() + ": "
		if cur := fields.Get(f); cur != "" {
			prompt = fmt.Sprintf("%s [%s]: ", f.Label(), cur)
		}
		line, err := read(prompt)
		if err != nil {
			return err
		}
		if v := strings.TrimSpace(line); v != "" {
			fields.Set(f, v)
		}
	}
	return nil
}
