package sim

import (
	"github.com/rs/zerolog"
)

// A LogHook is a hook that is resonsible for recording information from the
// simulation
type LogHook interface {
	Hook
}

// LogHookBase proovides the common logic for all LogHooks
type LogHookBase struct {
	Logger zerolog.Logger
}

// NewLogHookBase creates a LogHookBase that writes to the given logger.
func NewLogHookBase(logger zerolog.Logger) LogHookBase {
	return LogHookBase{Logger: logger}
}
