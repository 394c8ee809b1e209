package logger

import (
	"bytes"
	"testing"

	charm "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaultReplacesLogger(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	var buf bytes.Buffer
	SetDefault(charm.New(&buf))
	require.NoError(t, SetLevel("info"))

	Info("hello", "key", "value")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "key")
}

func TestSetDefaultIgnoresNil(t *testing.T) {
	original := Default()
	SetDefault(nil)
	assert.Equal(t, original, Default())
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	assert.Error(t, SetLevel("verbose"))
}

func TestLevelFiltersOutput(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	var buf bytes.Buffer
	SetDefault(charm.New(&buf))
	require.NoError(t, SetLevel("error"))

	Debug("invisible")
	Warn("also invisible")
	assert.Empty(t, buf.String())

	Error("visible")
	assert.Contains(t, buf.String(), "visible")
}
