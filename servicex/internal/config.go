// Package internal provides internal implementation for the servicex package.
package internal

import (
	"net"
	"os"
	"strconv"
	"time"
)

// DefaultEnvFile is the dotenv file read when ENV_FILE is not set.
const DefaultEnvFile = ".env"

// Config is the service configuration bound from the environment and the
// optional dotenv file. ENV_FILE itself is read by EnvFileFromEnvironment
// before any source is loaded.
type Config struct {
	ServiceName    string `env:"SERVICE_NAME" default:"Service" validate:"required"`
	ServiceVersion string `env:"SERVICE_VERSION" default:"0.0.0"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"logfmt" validate:"oneof=logfmt json"`
	LogColor  bool   `env:"LOG_COLOR" default:"false"`

	// Port 0 binds an ephemeral port. MetricsPort 0 disables the ops listener.
	Port        int `env:"PORT" default:"8080" validate:"gte=0,lte=65535"`
	MetricsPort int `env:"METRICS_PORT" validate:"gte=0,lte=65535"`

	MongoURI        string `env:"MONGO_CONNECTION_STRING"`
	DBName          string `env:"DB_NAME"`
	MongoCollection string `env:"MONGO_COLLECTION" default:"rGuestStay" validate:"required"`

	KafkaClientID string   `env:"KAFKA_CLIENT_ID" default:"openTele" validate:"required"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" default:"localhost:9092" validate:"min=1"`
	KafkaGroupID  string   `env:"KAFKA_GROUP_ID" default:"grpOpenTele" validate:"required"`
	KafkaTopic    string   `env:"KAFKA_TOPIC" default:"net.navin.connection" validate:"required"`

	ConnectTimeout    time.Duration `env:"CONNECT_TIMEOUT" default:"30s" validate:"gt=0"`
	IdleCheckInterval time.Duration `env:"IDLE_CHECK_INTERVAL" default:"60s" validate:"gt=0"`
	IdleThreshold     time.Duration `env:"IDLE_THRESHOLD" default:"60s" validate:"gt=0"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" default:"15s" validate:"gt=0"`
}

// ListenAddr returns the listen address for port on all interfaces.
func ListenAddr(port int) string {
	return net.JoinHostPort("", strconv.Itoa(port))
}

// EnvFileFromEnvironment returns ENV_FILE from the process environment.
// It is read before the dotenv file itself can be loaded.
func EnvFileFromEnvironment() string {
	if path := os.Getenv("ENV_FILE"); path != "" {
		return path
	}
	return DefaultEnvFile
}
