//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/npcmind/internal/server"
)

func InitializeServer(cfg server.Config) (*server.Server, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
