package servicex

import (
	"context"
	"io"

	"github.com/red2n/opentele/brokerx"
	"github.com/red2n/opentele/configx"
	"github.com/red2n/opentele/runtimex"
	"github.com/red2n/opentele/servicex/internal"
	"github.com/red2n/opentele/storex"
)

// Config is the service configuration. Every field is bound from the
// environment key in its env tag, falling back to the dotenv file and then
// to the default tag.
type Config = internal.Config

// Options replaces external collaborators. The zero value runs against the
// real environment, MongoDB and Kafka.
type Options struct {
	Sources       []configx.Source           // default: ENV_FILE dotenv, then the environment
	LogWriter     io.Writer                  // default: os.Stderr
	StoreDialer   storex.Dialer              // default: storex.DialMongo
	BrokerFactory brokerx.Factory            // default: brokerx.NewKafkaConsumer
	HomeDir       func() (string, error)     // default: os.UserHomeDir
	Ready         func(rt *runtimex.Runtime) // called once the runtime is assembled
}

// Run loads the configuration, connects the document store and the broker,
// serves HTTP until ctx is done and shuts everything down. It returns the
// process exit code: 0 after a clean shutdown, 1 on a configuration,
// startup or shutdown failure.
func Run(ctx context.Context, opts Options) int {
	return internal.NewServiceRuntime(internal.Hooks{
		Sources:       opts.Sources,
		LogWriter:     opts.LogWriter,
		StoreDialer:   opts.StoreDialer,
		BrokerFactory: opts.BrokerFactory,
		HomeDir:       opts.HomeDir,
		Ready:         opts.Ready,
	}).Run(ctx)
}

// BuildTime identifies the running build, "dev" unless set at link time.
func BuildTime() string {
	return internal.BuildTime
}
