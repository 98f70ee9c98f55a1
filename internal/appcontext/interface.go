// Package appcontext provides the application context interface shared by
// all CLI commands.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/inkwell"
	"github.com/agentstation/inkwell/internal/server"
)

// Interface defines what commands need from the application. The App struct
// from cmd/inkwell/app implements it; tests use Mock.
type Interface interface {
	// Client returns the engine client, creating it lazily on first use.
	Client() (inkwell.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// ServerConfig returns the HTTP API configuration from config and env.
	ServerConfig() server.Config

	// RemoteURL returns the remote card source API root.
	RemoteURL() string

	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
