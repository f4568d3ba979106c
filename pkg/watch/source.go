// Package watch follows a directory of text documents and hands each
// new or changed file to registered callbacks, so extraction can keep
// up with a folder as it fills.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/fsnotify.v1"
)

// Document is one file delivered to callbacks, content included.
type Document struct {
	Path    string    `json:"path"`
	Text    string    `json:"-"`
	ModTime time.Time `json:"mod_time"`
}

// Status summarizes a monitor since Start.
type Status struct {
	Dir       string    `json:"dir"`
	Since     time.Time `json:"since"`
	Documents int       `json:"documents"`
	Errors    []string  `json:"errors,omitempty"`
}

// DefaultExtensions lists the file endings treated as documents.
var DefaultExtensions = []string{".txt", ".md"}

// Options configure a Monitor.
type Options struct {
	// Dir is the directory to follow. Required, not recursive.
	Dir string

	// Extensions restricts which files count as documents. Empty
	// means DefaultExtensions.
	Extensions []string
}

// Monitor follows one directory. Create and write events for matching
// files become Documents; removes and renames only clear the change
// tracking so a file that comes back is delivered again.
type Monitor struct {
	dir  string
	exts map[string]bool

	watcher  *fsnotify.Watcher
	stopChan chan struct{}

	callbacks  []func(Document) error
	callbackMu sync.RWMutex

	// seen maps a path to the mod time last delivered, so editor
	// write bursts collapse into one document.
	seen   map[string]time.Time
	seenMu sync.Mutex

	status   Status
	statusMu sync.Mutex

	running   bool
	runningMu sync.Mutex
}

// NewMonitor creates a monitor over an existing directory.
func NewMonitor(opts Options) (*Monitor, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("no directory to watch")
	}
	info, err := os.Stat(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("checking directory %s: %w", opts.Dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", opts.Dir)
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		set[strings.ToLower(e)] = true
	}
	return &Monitor{
		dir:  opts.Dir,
		exts: set,
		seen: make(map[string]time.Time),
	}, nil
}

// OnDocument registers a callback for delivered documents. Callback
// errors are recorded in the status and do not stop the monitor.
func (m *Monitor) OnDocument(fn func(Document) error) {
	m.callbackMu.Lock()
	defer m.callbackMu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// Start delivers every matching file already in the directory, then
// follows filesystem events until ctx is cancelled or Stop is called.
// Delivery runs on a background goroutine; Start returns immediately.
func (m *Monitor) Start(ctx context.Context) error {
	m.runningMu.Lock()
	if m.running {
		m.runningMu.Unlock()
		return fmt.Errorf("monitor is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.runningMu.Unlock()
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(m.dir); err != nil {
		watcher.Close()
		m.runningMu.Unlock()
		return fmt.Errorf("watching directory %s: %w", m.dir, err)
	}

	m.watcher = watcher
	m.stopChan = make(chan struct{})
	m.running = true
	m.runningMu.Unlock()

	m.statusMu.Lock()
	m.status = Status{Dir: m.dir, Since: time.Now()}
	m.statusMu.Unlock()

	go func() {
		m.scanExisting()
		m.watchLoop(ctx)
	}()
	return nil
}

// Stop ends the event loop and closes the watcher.
func (m *Monitor) Stop() error {
	m.runningMu.Lock()
	defer m.runningMu.Unlock()

	if !m.running {
		return fmt.Errorf("monitor is not running")
	}
	close(m.stopChan)
	m.watcher.Close()
	m.running = false
	return nil
}

// Status returns a snapshot of the monitor counters.
func (m *Monitor) Status() Status {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()

	s := m.status
	s.Errors = append([]string(nil), m.status.Errors...)
	return s
}

func (m *Monitor) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case <-m.stopChan:
			return

		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if !m.matches(event.Name) {
				continue
			}
			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				m.handleFile(event.Name)

			case event.Op&fsnotify.Write == fsnotify.Write:
				m.handleFile(event.Name)

			case event.Op&fsnotify.Remove == fsnotify.Remove:
				m.forget(event.Name)

			case event.Op&fsnotify.Rename == fsnotify.Rename:
				m.forget(event.Name)
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.recordError(err.Error())
		}
	}
}

func (m *Monitor) matches(path string) bool {
	return m.exts[strings.ToLower(filepath.Ext(path))]
}

// scanExisting delivers the files already present, so a monitor over a
// populated directory does not wait for the first change.
func (m *Monitor) scanExisting() {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		m.recordError(fmt.Sprintf("reading %s: %v", m.dir, err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !m.matches(entry.Name()) {
			continue
		}
		m.handleFile(filepath.Join(m.dir, entry.Name()))
	}
}

func (m *Monitor) handleFile(path string) {
	info, err := os.Stat(path)
	if err != nil {
		m.recordError(fmt.Sprintf("%s: %v", path, err))
		return
	}
	if info.IsDir() {
		return
	}

	m.seenMu.Lock()
	last, known := m.seen[path]
	if known && !info.ModTime().After(last) {
		m.seenMu.Unlock()
		return
	}
	m.seen[path] = info.ModTime()
	m.seenMu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		m.recordError(fmt.Sprintf("%s: %v", path, err))
		return
	}

	m.statusMu.Lock()
	m.status.Documents++
	m.statusMu.Unlock()

	m.notifyCallbacks(Document{
		Path:    path,
		Text:    string(data),
		ModTime: info.ModTime(),
	})
}

func (m *Monitor) forget(path string) {
	m.seenMu.Lock()
	defer m.seenMu.Unlock()
	delete(m.seen, path)
}

func (m *Monitor) notifyCallbacks(doc Document) {
	m.callbackMu.RLock()
	defer m.callbackMu.RUnlock()

	for _, fn := range m.callbacks {
		if err := fn(doc); err != nil {
			m.recordError(fmt.Sprintf("%s: %v", doc.Path, err))
		}
	}
}

func (m *Monitor) recordError(msg string) {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()

	m.status.Errors = append(m.status.Errors, msg)
	if len(m.status.Errors) > 10 {
		m.status.Errors = m.status.Errors[len(m.status.Errors)-10:]
	}
}
