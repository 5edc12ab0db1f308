package tui

import "oniazusa/internal/processor"

// Watch runs a progress display and returns once updates is closed. If
// the display exits early (no terminal, a render error) the remaining
// updates are drained so the producer never blocks on a full channel.
func Watch(run func() error, updates <-chan processor.ProgressUpdate) error {
	err := run()
	for range updates {
	}
	return err
}
