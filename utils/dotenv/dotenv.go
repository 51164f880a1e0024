package dotenv

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvVar  = "COURSEHUB_ENV"
	DevEnv  = "dev"
	TestEnv = "test"
	ProdEnv = "prod"
)

// Load loads the .env file following the convention: https://github.com/bkeepers/dotenv#what-other-env-files-can-i-use
// It only need to be called once in main function, other code can read env
// through viper or os.Getenv during runtime
func LoadDotEnvs() error {
	// check whether running in development, testing, production etc.
	loadDotEnvs("")
	return nil
}

func loadDotEnvs(rootPath string) {
	env := CurrentEnv()

	// .env.[runtime_env].local has highest priority, usually contains username and password and other sensitive information
	godotenv.Load(rootPath + ".env." + env + ".local")
	godotenv.Load(rootPath + ".env.local")
	// .env.[runtime_env] usually contains db connection information
	godotenv.Load(rootPath + ".env." + env)
	// .env usually contains shared variables(which might be overwritten by envs above)
	godotenv.Load(rootPath + ".env")
}

func CurrentEnv() string {
	env := os.Getenv(EnvVar)
	if env == "" {
		env = DevEnv
	}
	return env
}

func IsProdEnv() bool {
	return CurrentEnv() == ProdEnv
}
