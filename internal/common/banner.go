package common

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the effective startup settings
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("SessionShell", GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Str("environment", config.Environment).
		Str("storage", config.Storage.Type).
		Str("server", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Bool("auto_login", config.Login.Enabled).
		Bool("devtools", config.DevToolsEnabled()).
		Msg("Starting SessionShell")
}
