package app_config

import (
	"fmt"
	"io/ioutil"
	"strings"
	"time"

	"github.com/Luismorlan/coursehub/aggregation"
	"github.com/Luismorlan/coursehub/relation"
	"github.com/Luismorlan/coursehub/store"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	EnvPrefix = "COURSEHUB"

	AuthJWT     = "jwt"
	AuthCognito = "cognito"
	AuthBypass  = "bypass"

	// ShutdownGrace bounds how long in-flight requests may run after a stop
	// signal.
	ShutdownGrace = 10 * time.Second
)

// Every recognized setting with its built-in default. Keys are the yaml keys
// of the config file; the environment overrides them as COURSEHUB_<KEY>.
var defaults = map[string]interface{}{
	"PORT":           8080,
	"AUTH_MODE":      AuthJWT,
	"JWT_SECRET":     "",
	"COGNITO_REGION": "us-west-1",
	"STATSD_ADDR":    "127.0.0.1:8125",

	"STORE_BACKEND":    store.BackendBadger,
	"REDIS_ADDR":       "localhost:6379",
	"REDIS_PASSWORD":   "",
	"REDIS_DB":         0,
	"MONGO_URI":        "mongodb://localhost:27017",
	"MONGO_DATABASE":   "coursehub",
	"DATABASE_DSN":     "",
	"BADGER_PATH":      "data/badger",
	"BADGER_IN_MEMORY": false,
	"CAS_ATTEMPTS":     store.DefaultCASAttempts,
	"STORE_TIMEOUT":    relation.DefaultRetryPolicy.AttemptTimeout,

	"RETRY_MAX_ATTEMPTS":     relation.DefaultRetryPolicy.MaxAttempts,
	"RETRY_INITIAL_INTERVAL": relation.DefaultRetryPolicy.InitialInterval,
	"RETRY_MAX_INTERVAL":     relation.DefaultRetryPolicy.MaxInterval,

	"VIEW_MAX_CONCURRENCY": aggregation.DefaultMaxConcurrency,
}

// CoursehubAppConfig is the resolved configuration of the api server.
type CoursehubAppConfig struct {
	Port int
	// One of AuthJWT, AuthCognito or AuthBypass.
	AuthMode      string
	JWTSecret     string
	CognitoRegion string
	// StatsdAddr is the Datadog agent receiving relation change counts.
	StatsdAddr string

	Store           store.Config
	Retry           relation.RetryPolicy
	ViewConcurrency int
}

// Option overrides a setting after every layer was read, before validation.
// Command line flags use it.
type Option func(*CoursehubAppConfig)

// WithAuthMode forces the auth mode, e.g. for --bypass-auth.
func WithAuthMode(mode string) Option {
	return func(c *CoursehubAppConfig) {
		c.AuthMode = mode
	}
}

// ParseCoursehubAppConfig layers, from lowest to highest priority, the
// built-in defaults, the yaml file at path (skipped when path is empty),
// COURSEHUB_ prefixed environment variables and opts.
func ParseCoursehubAppConfig(path string, opts ...Option) (*CoursehubAppConfig, error) {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)
	for k, v := range defaults {
		conf.SetDefault(k, v)
	}

	if path != "" {
		fileValues, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		for k, v := range fileValues {
			conf.SetDefault(k, v)
		}
	}

	conf.SetEnvPrefix(EnvPrefix)
	conf.AutomaticEnv()

	c := &CoursehubAppConfig{
		Port:          conf.GetInt("PORT"),
		AuthMode:      strings.ToLower(conf.GetString("AUTH_MODE")),
		JWTSecret:     conf.GetString("JWT_SECRET"),
		CognitoRegion: conf.GetString("COGNITO_REGION"),
		StatsdAddr:    conf.GetString("STATSD_ADDR"),
		Store: store.Config{
			Backend:        strings.ToLower(conf.GetString("STORE_BACKEND")),
			RedisAddr:      conf.GetString("REDIS_ADDR"),
			RedisPassword:  conf.GetString("REDIS_PASSWORD"),
			RedisDB:        conf.GetInt("REDIS_DB"),
			MongoURI:       conf.GetString("MONGO_URI"),
			MongoDatabase:  conf.GetString("MONGO_DATABASE"),
			DSN:            conf.GetString("DATABASE_DSN"),
			BadgerPath:     conf.GetString("BADGER_PATH"),
			BadgerInMemory: conf.GetBool("BADGER_IN_MEMORY"),
			CASAttempts:    conf.GetInt("CAS_ATTEMPTS"),
		},
		Retry: relation.RetryPolicy{
			MaxAttempts:     conf.GetInt("RETRY_MAX_ATTEMPTS"),
			InitialInterval: conf.GetDuration("RETRY_INITIAL_INTERVAL"),
			MaxInterval:     conf.GetDuration("RETRY_MAX_INTERVAL"),
			AttemptTimeout:  conf.GetDuration("STORE_TIMEOUT"),
		},
		ViewConcurrency: conf.GetInt("VIEW_MAX_CONCURRENCY"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, c.validate()
}

func readConfigFile(path string) (map[string]interface{}, error) {
	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to read config file %s", path)
	}
	values := map[string]interface{}{}
	if err := yaml.Unmarshal(yamlFile, &values); err != nil {
		return nil, errors.Wrapf(err, "fail to parse config file %s", path)
	}
	for k := range values {
		if _, ok := defaults[strings.ToUpper(k)]; !ok {
			return nil, fmt.Errorf("unknown setting %s in config file %s", k, path)
		}
	}
	return values, nil
}

func (c *CoursehubAppConfig) validate() error {
	switch c.AuthMode {
	case AuthJWT:
		if c.JWTSecret == "" {
			return errors.New("auth mode jwt requires JWT_SECRET")
		}
	case AuthCognito, AuthBypass:
	default:
		return fmt.Errorf("unknown auth mode %q", c.AuthMode)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be positive, got %d", c.Retry.MaxAttempts)
	}
	if c.ViewConcurrency < 1 {
		return fmt.Errorf("VIEW_MAX_CONCURRENCY must be positive, got %d", c.ViewConcurrency)
	}
	if c.Store.Backend == store.BackendPostgres && c.Store.DSN == "" {
		return errors.New("store backend postgres requires DATABASE_DSN")
	}
	return nil
}
