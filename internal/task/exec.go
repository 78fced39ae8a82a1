package task

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/mattn/go-shellwords"

	"github.com/qiangli/dataworks/internal/api"
	"github.com/qiangli/dataworks/internal/log"
)

// splitArgs splits a handler argument with shell word rules.
func splitArgs(arg string) ([]string, error) {
	if strings.TrimSpace(arg) == "" {
		return nil, nil
	}
	args, err := shellwords.Parse(arg)
	if err != nil {
		return nil, api.Wrap(api.KindBadRequest, err, "invalid argument %q", arg)
	}
	return args, nil
}

// runCommand runs the command line in dir with extra arguments appended
// and returns its stdout.
func runCommand(ctx context.Context, dir, cmdline string, extra ...string) (string, error) {
	args, err := shellwords.Parse(cmdline)
	if err != nil {
		return "", api.Wrap(api.KindConfig, err, "invalid command %q", cmdline)
	}
	if len(args) == 0 {
		return "", api.NewConfigError("command is not configured")
	}
	args = append(args, extra...)

	log.Debugf("running: %s (in %s)\n", shellquote.Join(args...), dir)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return "", api.Wrap(api.KindExecution, err, "%s: %s", args[0], log.Clip(msg, 500))
	}
	return stdout.String(), nil
}

// argAt returns args[i] or def when absent.
func argAt(args []string, i int, def string) string {
	if i < len(args) && args[i] != "" {
		return args[i]
	}
	return def
}

func requireArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return api.NewBadRequestError("missing argument, usage: %s", usage)
	}
	return nil
}

func mustInt(s string, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, api.NewBadRequestError("%s must be a number: %q", name, s)
	}
	return n, nil
}
