package errors

import (
	"os"

	"github.com/cockroachdb/errors"

	log "github.com/codewarden/warden/pkg/logger"
)

// OsExit is a variable for testing, so we can mock os.Exit.
var OsExit = os.Exit

// CheckErrorAndPrint logs an error with its hints, if any.
func CheckErrorAndPrint(err error) {
	if err == nil {
		return
	}
	log.Error(err.Error())
	for _, hint := range errors.GetAllHints(err) {
		log.Info(hint)
	}
}

// CheckErrorPrintAndExit logs an error and exits with the error's exit code.
func CheckErrorPrintAndExit(err error) {
	if err == nil {
		return
	}
	CheckErrorAndPrint(err)
	Exit(GetExitCode(err))
}

// Exit terminates the process through the OsExit indirection.
func Exit(code int) {
	OsExit(code)
}
