// Package cli is the twpomo command tree.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rootCmd *cobra.Command
	opts    = viper.New()
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "twpomo",
		Short: "Pomodoro timer for Taskwarrior",
		Long: `twpomo runs pomodoros against your Taskwarrior tasks.

Pick a pending task to start it and a countdown. When the interval ends the
task is stopped, the pomodoro is recorded on the day's PomodoroLog task and a
break notification is shown.`,
		RunE:          runTUI, // Default action is the terminal menu
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.String("taskrc", "~/.taskrc", "Taskwarrior rc file")
	pf.StringArray("rc", nil, "Override passed to every task invocation, e.g. rc.data.location=~/tasks (repeatable; TWPOMO_RC takes a space-separated list)")
	pf.String("log-file", "", "Write logs to this file")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")

	opts.SetEnvPrefix("TWPOMO")
	opts.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	opts.AutomaticEnv()
	_ = opts.BindPFlag("taskrc", pf.Lookup("taskrc"))
	_ = opts.BindPFlag("rc", pf.Lookup("rc"))
	_ = opts.BindPFlag("log-file", pf.Lookup("log-file"))
	_ = opts.BindPFlag("log-level", pf.Lookup("log-level"))
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newVersionCmd(version))

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "twpomo %s\n", version)
		},
	}
}
