package utils

import (
	"github.com/Luismorlan/coursehub/utils/dotenv"
	. "github.com/Luismorlan/coursehub/utils/log"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// StartTracer starts the Datadog tracer for the given service. Call
// CloseTracer on shutdown.
func StartTracer(service string) {
	env := "development"
	if dotenv.IsProdEnv() {
		env = "production"
	}

	tracer.Start(
		tracer.WithService(service),
		tracer.WithEnv(env),
	)

	Log.WithField("env", env).Info("tracer initialized")
}

// Stop tracer, OK to be closed multiple times
func CloseTracer() {
	tracer.Stop()
}
