package cmd

import (
	"bytes"
	"io"
	"testing"

	"oniazusa/internal/logging"
)

func TestBatchLoggerQuietWhileProgressShows(t *testing.T) {
	var buf bytes.Buffer
	base := logging.New(false, &buf)

	got := batchLogger(true, false, base)
	got.Warn("decode failed")
	if buf.Len() != 0 {
		t.Errorf("log line reached the terminal under the progress display: %q", buf.String())
	}
	if got.Out != io.Discard {
		t.Error("expected a discarding logger")
	}

	if batchLogger(true, true, base) != base {
		t.Error("--debug should keep the configured logger")
	}
	if batchLogger(false, false, base) != base {
		t.Error("quiet mode should keep the configured logger")
	}
}
