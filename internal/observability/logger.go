package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConnLogger derives a logger tagged with a component and connection id from
// the process logger.
func ConnLogger(component, connID string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Str("conn", connID).Logger()
}
