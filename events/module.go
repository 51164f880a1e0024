package events

import (
	"context"
	"time"

	. "github.com/Luismorlan/coursehub/utils/log"
)

// GracefulRetryDelay is the pause before a failed module is restarted.
var GracefulRetryDelay = 3 * time.Second

type Module interface {
	// RunModule contains the customized logic of the module. It takes in a
	// context object by which its lifecycle is managed. Return error if
	// encountered any error during execution.
	RunModule(ctx context.Context) error

	// Return name of the Module. Uniquely identifies the module instance.
	Name() string

	// Shutdown releases resources held by the module. Called once after the
	// root context is cancelled.
	Shutdown()
}

// RunModuleWithGracefulRestart restarts a failing module after a short delay
// until it returns cleanly or ctx is done.
func RunModuleWithGracefulRestart(ctx context.Context, module Module) {
	for {
		err := module.RunModule(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}
		Log.WithError(err).Errorf(
			"Module %s exited with error, retry in %s", module.Name(), GracefulRetryDelay)

		// Wait for a small amount of time and restart.
		select {
		case <-ctx.Done():
			return
		case <-time.After(GracefulRetryDelay):
		}
	}
}
