package rules

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Loader reads the YAML ruleset and watches it for changes.
type Loader struct {
	path     string
	mu       sync.RWMutex
	current  *Ruleset
	onChange []func(*Ruleset)
}

// NewLoader creates a Loader and performs the initial load. An empty path
// yields the built-in defaults and Watch becomes a no-op.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	if path == "" {
		l.current = Default()
		return l, nil
	}
	rs, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = rs
	return l, nil
}

// Rules returns the current (latest) ruleset.
func (l *Loader) Rules() *Ruleset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the ruleset reloads.
func (l *Loader) OnChange(fn func(*Ruleset)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the rules on file
// changes. Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	if l.path == "" {
		return func() {}, nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("rules watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("rules watcher add %s: %w", l.path, err)
	}

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					rs, err := l.load()
					if err != nil {
						// Keep serving the old ruleset on a bad edit.
						continue
					}
					l.swap(rs)
				}
			case <-w.Errors:
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}

// Reload forces an immediate re-read of the rules file.
func (l *Loader) Reload() (*Ruleset, error) {
	if l.path == "" {
		return l.Rules(), nil
	}
	rs, err := l.load()
	if err != nil {
		return nil, err
	}
	l.swap(rs)
	return rs, nil
}

func (l *Loader) swap(rs *Ruleset) {
	l.mu.Lock()
	l.current = rs
	callbacks := make([]func(*Ruleset), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(rs)
	}
}

func (l *Loader) load() (*Ruleset, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", l.path, err)
	}
	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", l.path, err)
	}
	applyDefaults(&rs)
	return &rs, nil
}
