package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestVerboseWritesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(true, &buf)

	log.Named("seeder").Debug("phase", zap.String("phase", "RESET_SCHEMA"))
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "seeder")
	assert.Contains(t, buf.String(), "RESET_SCHEMA")
}

func TestQuietIsSilent(t *testing.T) {
	var buf bytes.Buffer
	log := New(false, &buf)

	log.Error("boom")
	assert.Empty(t, buf.String())
}
