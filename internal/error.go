package internal

import (
	"os"

	"github.com/qiangli/dataworks/internal/api"
	"github.com/qiangli/dataworks/internal/log"
)

// ExitCode maps an error to the process exit code:
// 0 -- no error
// 1 -- general failure
// 2 -- user or configuration error
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch api.KindOf(err) {
	case api.KindConfig, api.KindBadRequest, api.KindUnknownTask, api.KindAccessDenied:
		return 2
	default:
		return 1
	}
}

// Exit logs err and exits with its code.
func Exit(err error) {
	if err == nil {
		os.Exit(0)
	}

	log.Errorln(exitMessage(err))

	os.Exit(ExitCode(err))
}

// long messages are cut unless verbose
func exitMessage(err error) string {
	const max = 500
	msg := err.Error()
	if !log.IsVerbose() && len(msg) > max {
		msg = log.Truncate(msg, max) + "..."
	}
	return msg
}
