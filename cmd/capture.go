package cmd

import (
	"fmt"
	"os"

	"github.com/andresmejia3/attend/internal/form"
	"github.com/andresmejia3/attend/internal/submit"
	"github.com/andresmejia3/attend/internal/types"
	"github.com/spf13/cobra"
)

var registerFields form.Fields

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Capture once and register a new user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return captureOnce(cmd, types.ModeRegister, &registerFields)
	},
}

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Capture once and mark attendance",
	RunE: func(cmd *cobra.Command, args []string) error {
		return captureOnce(cmd, types.ModeAttendance, nil)
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerFields.UserID, "id", "", "User identifier")
	registerCmd.Flags().StringVar(&registerFields.Name, "name", "", "Full name")
	registerCmd.Flags().StringVar(&registerFields.Department, "department", "", "Department")
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(attendanceCmd)
}

// captureOnce runs a single submission and keeps the process alive until its
// toasts and preview have expired.
func captureOnce(cmd *cobra.Command, mode types.Mode, fields *form.Fields) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	s := newSession(ctx, Cfg, Logger, out)
	defer s.Close()

	trigger := submit.NewSpinnerTrigger(os.Stderr, "📷 Capture")
	res := s.controller(mode, trigger).Submit(ctx, fields)

	if err := s.presenter.Wait(ctx); err != nil {
		Logger.WithError(err).Debug("stopped before notifications expired")
	}

	if res.Outcome != submit.OutcomeSuccess {
		return fmt.Errorf("%s failed: %s", mode, res.Outcome)
	}
	return nil
}
