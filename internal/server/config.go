package server

import (
	"github.com/raysh454/rgaalint/internal/app"
	"github.com/raysh454/rgaalint/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address for the API server. An empty
	// value falls back to AppConfig.ServerCfg.ListenAddr.
	ListenAddr string

	// App is an already running application. When nil, NewServer builds
	// one from AppConfig and closes it in Close.
	App       *app.Application
	AppConfig *app.Config

	Logger logging.Logger
}
