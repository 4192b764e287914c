package scenario

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce collapses bursts of writes to one file into a single event.
const debounce = 100 * time.Millisecond

// Watcher reports changes to the files a running scenario depends on.
// Events carries file paths. Until Track is called every scenario and Lua
// file in the watched directories is reported.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once

	mu    sync.Mutex
	files map[string]bool // nil until Track
}

// NewWatcher starts watching dirs.
func NewWatcher(dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		watcher: fw,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// WatchScenario watches the scenario file at path and the Lua files its rules
// load, and nothing else.
func WatchScenario(path string, sc *Scenario) (*Watcher, error) {
	w, err := NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Track(sc.Files(path)...); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

// Files returns the files a scenario loaded from path depends on: the file
// itself followed by every rule's script_file.
func (sc *Scenario) Files(path string) []string {
	files := []string{path}
	for _, r := range sc.Rules {
		if r.ScriptFile != "" {
			files = append(files, r.ScriptFile)
		}
	}
	return files
}

// Track restricts Events to paths and watches their directories. Each call
// replaces the previous set, so call it again after a reload that changes
// which scripts the rules load. Directories stay watched.
func (w *Watcher) Track(paths ...string) error {
	files := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs := absPath(p)
		if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("scenario: watch %s: %w", p, err)
		}
		files[abs] = true
	}
	w.mu.Lock()
	w.files = files
	w.mu.Unlock()
	return nil
}

// Close stops the watcher and closes Events and Errors. It is safe to call
// more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) wants(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files == nil {
		return isScenarioFile(name) || isScriptFile(name)
	}
	return w.files[absPath(name)]
}

func (w *Watcher) run() {
	defer close(w.done)
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Editors that save by rename show up as Create on the target.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if !w.wants(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < debounce {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			case <-w.closeCh:
				return
			}
		case <-w.closeCh:
			return
		}
	}
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

func isScenarioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".lua"
}
