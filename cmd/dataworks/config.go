package main

import (
	"github.com/spf13/viper"

	"github.com/qiangli/dataworks/internal/db"
	"github.com/qiangli/dataworks/internal/llm"
	"github.com/qiangli/dataworks/internal/log"
	"github.com/qiangli/dataworks/internal/task"
	"github.com/qiangli/dataworks/internal/vfs"
)

type AppConfig struct {
	Root    string
	History string
	Log     string

	LLM *llm.Config

	Formatter string
	Datagen   string
	Email     string

	Verbose bool
	Quiet   bool
	Trace   bool
}

func getConfig() *AppConfig {
	return &AppConfig{
		Root:    viper.GetString("root"),
		History: viper.GetString("history"),
		Log:     viper.GetString("log"),
		LLM: &llm.Config{
			ApiKey:        viper.GetString("api_key"),
			BaseUrl:       viper.GetString("base_url"),
			Model:         viper.GetString("model"),
			AudioModel:    viper.GetString("audio_model"),
			DryRun:        viper.GetBool("dry_run"),
			DryRunContent: viper.GetString("dry_run_content"),
		},
		Formatter: viper.GetString("formatter"),
		Datagen:   viper.GetString("datagen"),
		Email:     viper.GetString("email"),
		Verbose:   viper.GetBool("verbose"),
		Quiet:     viper.GetBool("quiet"),
		Trace:     viper.GetBool("trace"),
	}
}

func setLogLevel(cfg *AppConfig) {
	switch {
	case cfg.Quiet:
		log.SetLogLevel(log.Quiet)
	case cfg.Trace:
		log.SetLogLevel(log.Tracing)
	case cfg.Verbose:
		log.SetLogLevel(log.Verbose)
	}
}

func setLogOutput(path string) (*log.FileWriter, error) {
	if path != "" {
		f, err := log.NewFileWriter(path)
		if err != nil {
			return nil, err
		}
		log.SetLogOutput(f)
		return f, nil
	}
	return nil, nil
}

// App holds what a command needs to dispatch tasks.
type App struct {
	FS         *vfs.LocalFS
	Dispatcher *task.Dispatcher
	History    *db.History

	logFile *log.FileWriter
}

// setup validates the configuration and opens the shared resources.
// A missing API key or root directory is fatal.
func setup(cfg *AppConfig) (*App, error) {
	setLogLevel(cfg)

	var app App
	var err error
	if app.logFile, err = setLogOutput(cfg.Log); err != nil {
		return nil, err
	}

	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		app.Close()
		return nil, err
	}
	if app.FS, err = vfs.NewLocalFS(cfg.Root); err != nil {
		app.Close()
		return nil, err
	}

	var recorder task.Recorder
	if cfg.History != "" {
		if app.History, err = db.OpenHistory(cfg.History); err != nil {
			app.Close()
			return nil, err
		}
		recorder = app.History
	}

	env := &task.Env{
		FS:        app.FS,
		LLM:       client,
		Formatter: cfg.Formatter,
		Datagen:   cfg.Datagen,
		Email:     cfg.Email,
	}
	app.Dispatcher = task.NewDispatcher(env, recorder)

	log.Debugf("root: %s model: %s history: %q\n", cfg.Root, cfg.LLM.Model, cfg.History)
	return &app, nil
}

func (r *App) Close() {
	if r.History != nil {
		r.History.Close()
	}
	if r.logFile != nil {
		r.logFile.Close()
	}
}
