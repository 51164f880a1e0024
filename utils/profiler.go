package utils

import (
	"github.com/Luismorlan/coursehub/utils/dotenv"
	. "github.com/Luismorlan/coursehub/utils/log"
	"gopkg.in/DataDog/dd-trace-go.v1/profiler"
)

// StartProfiler starts the Datadog continuous profiler. Failure to start is
// logged and otherwise ignored, the server is still useful without profiles.
func StartProfiler(service string) {
	env := "development"
	if dotenv.IsProdEnv() {
		env = "production"
	}

	if err := profiler.Start(
		profiler.WithService(service),
		profiler.WithEnv(env),
		profiler.WithProfileTypes(
			profiler.CPUProfile,
			profiler.HeapProfile,
		),
	); err != nil {
		Log.WithError(err).Error("fail to start profiler")
	}
}

// Stop profiler, OK to be closed multiple times
func CloseProfiler() {
	profiler.Stop()
}
