package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/npcmind/internal/core/observability/log"
	"github.com/zeusync/npcmind/internal/server"
)

// ProviderSet builds a Server and its logger from a server.Config.
var ProviderSet = wire.NewSet(
	ProvideLogOptions,
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	server.NewServer,
)

// ProvideLogOptions reads the log section of the scenario.
func ProvideLogOptions(cfg server.Config) (log.Options, error) {
	if cfg.Scenario == nil {
		return log.Options{}, server.ErrInvalidConfig
	}
	return cfg.Scenario.Log.Options()
}

func ProvideLogger(opts log.Options) (*log.Logger, error) {
	return log.New(opts)
}
