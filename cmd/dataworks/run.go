package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/qiangli/dataworks/internal/api"
	"github.com/qiangli/dataworks/internal/task"
)

var runCmd = &cobra.Command{
	Use:   "run ID|INSTRUCTION [ARG...]",
	Short: "Run a task by identifier or plain English instruction",
	Example: `  dataworks run A3
  dataworks run B3 https://api.example.com/data.json out.json
  dataworks run "count the wednesdays in dates.txt"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(getConfig())
		if err != nil {
			return err
		}
		defer app.Close()

		var env *api.Envelope
		if _, ok := task.Lookup(strings.ToUpper(args[0])); ok {
			// keep argument boundaries for the handler's own splitting
			env = app.Dispatcher.RunID(cmd.Context(), args[0], shellquote.Join(args[1:]...))
		} else {
			env = app.Dispatcher.RunText(cmd.Context(), strings.Join(args, " "))
		}

		enc := json.NewEncoder(os.Stdout)
		if isatty.IsTerminal(os.Stdout.Fd()) {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(env); err != nil {
			return err
		}
		if env.Status == api.StatusError {
			return api.NewError(env.Kind, "%s", env.Message)
		}
		return nil
	},
}
