package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestSetupWriter(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	tests := []struct {
		name     string
		logger   Logger
		contains []string
		excludes []string
	}{
		{
			name:     "json at info",
			logger:   Logger{Level: "info", Format: "json"},
			contains: []string{`"level":"info"`, `"object":"lakes"`, `"message":"written"`},
			excludes: []string{"hidden"},
		},
		{
			name:     "json at debug",
			logger:   Logger{Level: "debug", Format: "json"},
			contains: []string{`"level":"debug"`, "hidden"},
		},
		{
			name:     "console without color",
			logger:   Logger{Level: "info", Format: "console", NoColor: true},
			contains: []string{"INF", "written", "object=lakes"},
			excludes: []string{"\x1b["},
		},
		{
			name:     "empty level falls back to info",
			logger:   Logger{Format: "json"},
			contains: []string{`"level":"info"`},
			excludes: []string{"hidden"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logger.SetupWriter(&buf)

			log.Debug().Msg("hidden")
			log.Info().Str("object", "lakes").Msg("written")

			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}
