package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
		want   string
		quiet  bool
	}{
		{"text debug", "debug", "text", `level=DEBUG msg=hello n=1`, false},
		{"json", "debug", "json", `"msg":"hello","n":1`, false},
		{"upper case", "DEBUG", "TEXT", `msg=hello`, false},
		{"filtered", "warn", "text", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(tt.level, tt.format, &buf)
			require.NoError(t, err)
			logger.Debug("hello", "n", 1)
			if tt.quiet {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestNewInvalid(t *testing.T) {
	_, err := New("loud", "text", nil)
	assert.ErrorContains(t, err, "log level")

	_, err = New("info", "xml", nil)
	assert.ErrorContains(t, err, `unknown log format "xml"`)
}
