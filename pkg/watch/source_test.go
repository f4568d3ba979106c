package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestNewMonitorValidatesDir(t *testing.T) {
	if _, err := NewMonitor(Options{}); err == nil {
		t.Error("empty directory accepted")
	}
	if _, err := NewMonitor(Options{Dir: filepath.Join(t.TempDir(), "gone")}); err == nil {
		t.Error("missing directory accepted")
	}
	file := writeFile(t, t.TempDir(), "plain.txt", "x")
	if _, err := NewMonitor(Options{Dir: file}); err == nil {
		t.Error("plain file accepted as a directory")
	}
}

func TestMonitorDeliversExistingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "في عام 1445 هـ")
	writeFile(t, dir, "b.md", "19/7/2023")
	writeFile(t, dir, "UPPER.TXT", "1440")
	writeFile(t, dir, "c.pdf", "ignored")

	m, err := NewMonitor(Options{Dir: dir})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	docs := make(chan Document, 8)
	m.OnDocument(func(d Document) error {
		docs <- d
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	got := map[string]string{}
	for i := 0; i < 3; i++ {
		select {
		case d := <-docs:
			got[filepath.Base(d.Path)] = d.Text
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out after %d documents: %v", len(got), got)
		}
	}
	if got["a.txt"] != "في عام 1445 هـ" || got["b.md"] != "19/7/2023" || got["UPPER.TXT"] != "1440" {
		t.Errorf("documents = %v", got)
	}

	select {
	case d := <-docs:
		t.Errorf("unexpected document %s", d.Path)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMonitorDeliversNewFiles(t *testing.T) {
	dir := t.TempDir()
	m, err := NewMonitor(Options{Dir: dir})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	docs := make(chan Document, 8)
	m.OnDocument(func(d Document) error {
		docs <- d
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	writeFile(t, dir, "late.txt", "من 1440 هـ إلى 1445 هـ")

	select {
	case d := <-docs:
		if filepath.Base(d.Path) != "late.txt" {
			t.Errorf("delivered %s", d.Path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("file created after start never delivered")
	}
}

func TestMonitorStartStopGuards(t *testing.T) {
	m, err := NewMonitor(Options{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	if err := m.Stop(); err == nil {
		t.Error("stop before start succeeded")
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Start(ctx); err == nil {
		t.Error("second start succeeded")
	}
	if err := m.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if err := m.Stop(); err == nil {
		t.Error("second stop succeeded")
	}
}

func TestMonitorRecordsCallbackErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.txt", "x")

	m, err := NewMonitor(Options{Dir: dir})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	m.OnDocument(func(Document) error { return fmt.Errorf("refused") })
	done := make(chan struct{}, 1)
	m.OnDocument(func(Document) error {
		done <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("document never delivered")
	}

	st := m.Status()
	if st.Dir != dir || st.Documents != 1 {
		t.Errorf("status = %+v", st)
	}
	if len(st.Errors) != 1 || !strings.Contains(st.Errors[0], "refused") {
		t.Errorf("errors = %v", st.Errors)
	}
}
