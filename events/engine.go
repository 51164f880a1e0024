package events

import (
	"context"
	"sync"

	. "github.com/Luismorlan/coursehub/utils/log"
)

// Engine runs background modules next to the HTTP server and shuts them down
// together.
type Engine struct {
	// Each Module will be ran in a separate routine. Module's lifetime is
	// bound to Engine's lifetime.
	Modules []Module

	ctx    context.Context
	cancel context.CancelFunc
}

func NewEngine(ctx context.Context, ms ...Module) *Engine {
	ctx, cancel := context.WithCancel(ctx)
	return &Engine{
		Modules: ms,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Run executes all modules and blocks until all of them finished.
func (e *Engine) Run() {
	var wg sync.WaitGroup

	for idx := range e.Modules {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			Log.Infof("start engine module %s", e.Modules[index].Name())
			RunModuleWithGracefulRestart(e.ctx, e.Modules[index])
			Log.Infof("Module %s finished execution.", e.Modules[index].Name())
		}(idx)
	}

	// Block until all goroutine finished execution.
	wg.Wait()
}

func (e *Engine) Shutdown() {
	Log.Infoln("Starting graceful shutdown process of engine modules.")
	e.cancel()

	var wg sync.WaitGroup
	for idx := range e.Modules {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			e.Modules[index].Shutdown()
			Log.Infof("Module %s shut down.", e.Modules[index].Name())
		}(idx)
	}

	wg.Wait()
}
