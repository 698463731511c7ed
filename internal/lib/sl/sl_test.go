package sl

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErr(t *testing.T) {
	a := Err(errors.New("boom"))
	assert.Equal(t, "error", a.Key)
	assert.Equal(t, "boom", a.Value.String())

	assert.Equal(t, "", Err(nil).Value.String())
}

func TestAttrsInLogLine(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	log.Error("commit failed", Op("services.inTx"), Err(errors.New("locked")))

	assert.Contains(t, buf.String(), "op=services.inTx")
	assert.Contains(t, buf.String(), "error=locked")
}
