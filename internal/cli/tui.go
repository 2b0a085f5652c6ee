package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/twpomo/internal/config"
	"github.com/sadopc/twpomo/internal/notify"
	"github.com/sadopc/twpomo/internal/pomodoro"
	"github.com/sadopc/twpomo/internal/tui"
)

func runTUI(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	sched := pomodoro.NewChannelScheduler()
	inbox := &tui.Inbox{}
	session := a.newSession(sched, notify.Multi{desktopNotifier(), inbox}, inbox.Warn)

	home, _ := os.UserHomeDir()
	dataLocation, _ := a.settings.Settings().String(config.KeyDataLocation)

	return tui.Run(tui.Deps{
		Session:   session,
		Repo:      a.repo,
		Settings:  a.settings,
		Inbox:     inbox,
		Expiries:  sched.C,
		Logger:    a.logger,
		Now:       time.Now,
		ExportDir: home,
	}, dataLocation)
}
