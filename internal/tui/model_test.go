package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"oniazusa/internal/processor"
)

func TestModelAccumulatesUpdates(t *testing.T) {
	updates := make(chan processor.ProgressUpdate)
	var m tea.Model = NewModel(updates)

	for _, u := range []processor.ProgressUpdate{
		{TotalDelta: 3},
		{Current: "a.jpg"},
		{ProcessedDelta: 1},
		{ProcessedDelta: 1, ErrorDelta: 1},
		{ProcessedDelta: 1, SkippedDelta: 1},
	} {
		m, _ = m.Update(updateMsg(u))
	}

	view := m.View()
	for _, want := range []string{"Images: 3/3", "failed:1", "skipped:1", "a.jpg"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModelInterrupt(t *testing.T) {
	called := false
	var m tea.Model = NewModel(nil).WithInterrupt(func() { called = true })

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !called {
		t.Error("ctrl+c did not call the interrupt function")
	}
	if cmd != nil {
		t.Error("ctrl+c should not quit before the update channel closes")
	}
	if !strings.Contains(m.View(), "interrupted") {
		t.Errorf("view does not mention the interrupt:\n%s", m.View())
	}

	_, cmd = m.Update(doneMsg{})
	if cmd == nil {
		t.Error("done message should quit")
	}
}

func TestRenderSummaryAligns(t *testing.T) {
	out := RenderSummary([]SummaryRow{
		{Label: "Images stylized", Value: "12"},
		{Label: "Failed", Value: "0"},
	})
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "---") || lines[0] != lines[3] {
		t.Errorf("table not framed by rules:\n%s", out)
	}
}

func TestRenderFailures(t *testing.T) {
	out := RenderFailures([]FailureRow{
		{Path: "bad.png", Kind: "DecodeError", Message: "decode failed"},
	})
	for _, want := range []string{"bad.png", "[DecodeError]", "decode failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestWatchDrainsAfterEarlyExit(t *testing.T) {
	updates := make(chan processor.ProgressUpdate, 4)
	errNoTTY := errors.New("could not open a new TTY")

	watched := make(chan error, 1)
	go func() {
		watched <- Watch(func() error { return errNoTTY }, updates)
	}()

	sent := make(chan struct{})
	go func() {
		defer close(sent)
		for i := 0; i < 500; i++ {
			updates <- processor.ProgressUpdate{ProcessedDelta: 1}
		}
		close(updates)
	}()

	select {
	case <-sent:
	case <-time.After(5 * time.Second):
		t.Fatal("producer blocked after the display exited")
	}
	if err := <-watched; !errors.Is(err, errNoTTY) {
		t.Errorf("Watch returned %v, want the display error", err)
	}
}
