package cli

import (
	"errors"

	configpkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/config"
)

// Environment tracks shared state for CLI commands. Config holds the
// connection parameters after flag, environment variable, and config file
// resolution.
type Environment struct {
	ConfigPath string
	Config     *configpkg.Config
}

// Save persists the currently loaded configuration to disk.
func (e *Environment) Save() error {
	if e == nil {
		return errors.New("cli environment is nil")
	}
	if e.Config == nil {
		return errors.New("configuration not loaded")
	}
	path := e.ConfigPath
	if path == "" {
		var err error
		path, err = configpkg.DefaultPath()
		if err != nil {
			return err
		}
		e.ConfigPath = path
	}
	return e.Config.Save(path)
}
