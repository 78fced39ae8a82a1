package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/qiangli/dataworks/internal/api"
	"github.com/qiangli/dataworks/internal/task"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List available tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return printTasks(format)
	},
}

func init() {
	tasksCmd.Flags().StringP("format", "o", "table", "Output format: table, json or yaml")
}

func printTasks(format string) error {
	tasks := task.Tasks()
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(tasks)
	case "table", "":
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDESCRIPTION\tARG")
		for _, t := range tasks {
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Description, t.Arg)
		}
		return w.Flush()
	default:
		return api.NewBadRequestError("unknown format %q", format)
	}
}
