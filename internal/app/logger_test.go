package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name      string
		level     string
		format    string
		wantDebug bool
		wantJSON  bool
	}{
		{name: "defaults", level: "", format: ""},
		{name: "debug text", level: "debug", format: "text", wantDebug: true},
		{name: "warn json", level: "warn", format: "json", wantJSON: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := newLogger(tc.level, tc.format, &buf)
			require.NoError(t, err)

			logger.Debug("quiet", "node", "n1")
			logger.Error("loud", "node", "n2")

			out := buf.String()
			assert.Equal(t, tc.wantDebug, bytes.Contains(buf.Bytes(), []byte("quiet")), out)
			assert.Contains(t, out, "loud")

			lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
			last := lines[len(lines)-1]
			assert.Equal(t, tc.wantJSON, json.Valid(last), string(last))
		})
	}
}

func TestNewLogger_RejectsUnknownValues(t *testing.T) {
	_, err := newLogger("verbose", "text", &bytes.Buffer{})
	assert.ErrorContains(t, err, `invalid log level "verbose"`)

	_, err = newLogger("info", "xml", &bytes.Buffer{})
	assert.ErrorContains(t, err, `invalid log format "xml"`)
}
