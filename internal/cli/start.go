package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sadopc/twpomo/internal/menu"
	"github.com/sadopc/twpomo/internal/notify"
	"github.com/sadopc/twpomo/internal/pomodoro"
)

const progressEvery = time.Minute

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <uuid>",
		Short: "Run one pomodoro on a task without the menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			a, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			sched := pomodoro.NewChannelScheduler()
			announce := notify.Func(func(n notify.Notification) error {
				_, err := fmt.Fprintf(out, "%s %s\n", n.Title, n.Body)
				return err
			})
			session := a.newSession(sched, notify.Multi{desktopNotifier(), announce}, func(err error) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runHeadless(ctx, session, sched.C, id, out, progressEvery)
		},
	}
}

func parseTaskID(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid task uuid %q: %w", s, err)
	}
	return id.String(), nil
}

// runHeadless starts id and runs the session's callbacks until the pomodoro
// ends or ctx is cancelled, in which case the task is stopped unrecorded.
func runHeadless(ctx context.Context, s *pomodoro.Session, expiries <-chan func(), id string, out io.Writer, every time.Duration) error {
	if err := s.Start(id); err != nil {
		if _, ok := s.Active(); !ok {
			return err
		}
		fmt.Fprintf(out, "warning: %v\n", err)
	}
	fmt.Fprintf(out, "Started %s, %s\n", s.ActiveDescription(), menu.StopTitle(s.Remaining()))

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case fire := <-expiries:
			fire()
			if _, ok := s.Active(); !ok {
				return nil
			}
		case <-ticker.C:
			fmt.Fprintln(out, menu.StopTitle(s.Remaining()))
		case <-ctx.Done():
			fmt.Fprintln(out, "Interrupted, stopping without recording.")
			return s.Stop()
		}
	}
}
