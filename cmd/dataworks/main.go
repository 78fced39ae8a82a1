package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/qiangli/dataworks/internal"
	"github.com/qiangli/dataworks/internal/llm"
	"github.com/qiangli/dataworks/internal/log"
	"github.com/qiangli/dataworks/internal/task"
	"github.com/qiangli/dataworks/internal/util"
)

var rootCmd = &cobra.Command{
	Use:   "dataworks",
	Short: "DataWorks automation service",
	Long: `DataWorks runs a fixed set of automation tasks against a data directory.

Tasks are selected by identifier (A1..A10, B3..B10) or by a plain English
instruction. Instructions that match no task are answered by the language model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var cfgFile string

func init() {
	defaultCfg := os.Getenv("DATAWORKS_CONFIG")
	// default: ~/.dataworks/config.yaml
	if defaultCfg == "" {
		homeDir := util.HomeDir()
		if homeDir != "" {
			defaultCfg = filepath.Join(homeDir, ".dataworks", "config.yaml")
		}
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", defaultCfg, "config file")
	addFlags(flags, defaultHistory())

	// Bind the flags to viper using underscores
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		viper.BindPFlag(key, f)
	})

	viper.SetEnvPrefix("dataworks")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
	viper.BindEnv("api_key", "DATAWORKS_API_KEY", "AIPROXY_TOKEN", "OPENAI_API_KEY")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(serveCmd, runCmd, tasksCmd)
}

func addFlags(flags *pflag.FlagSet, history string) {
	flags.SortFlags = true

	flags.String("root", "/data", "Directory all tasks read from and write to")
	flags.String("history", history, "Run history database, empty to disable")

	flags.String("api-key", "", "LLM API key")
	flags.String("base-url", llm.DefaultBaseUrl, "LLM base URL")
	flags.String("model", llm.DefaultModel, "LLM chat model")
	flags.String("audio-model", llm.DefaultAudioModel, "LLM speech to text model")
	flags.Bool("dry-run", false, "Enable dry run mode. No API call will be made")
	flags.String("dry-run-content", "", "Content returned for dry run")

	flags.String("formatter", task.DefaultFormatter, "Markdown formatter command")
	flags.String("datagen", task.DefaultDatagen, "Data generator command")
	flags.String("email", task.DefaultEmail, "User e-mail passed to the data generator")

	flags.Bool("verbose", false, "Show debugging information")
	flags.Bool("quiet", false, "Operate quietly")
	flags.Bool("trace", false, "Dump LLM requests and responses")
	flags.String("log", "", "Log all output to a file")
}

func defaultHistory() string {
	homeDir := util.HomeDir()
	if homeDir == "" {
		return ""
	}
	return filepath.Join(homeDir, ".dataworks", "history.db")
}

func initConfig() {
	if cfgFile == "" {
		return
	}
	if _, err := os.Stat(cfgFile); err != nil {
		log.Debugf("config file %s not loaded: %v\n", cfgFile, err)
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		log.Errorf("Error reading config file: %s\n", err)
	}
}

func main() {
	cobra.OnInitialize(initConfig)

	if err := rootCmd.Execute(); err != nil {
		internal.Exit(err)
	}
}
