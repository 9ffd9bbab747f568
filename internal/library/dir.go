package library

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dragpoint/geodrag/internal/construction"
)

// DirStore serves definitions from *.yaml, *.yml and *.json files in one
// directory. Files that fail to parse or compile are skipped and logged.
type DirStore struct {
	dir string
	log *slog.Logger

	mu   sync.RWMutex
	defs map[string]*construction.Definition
	bad  map[string]error

	watcher  *fsnotify.Watcher
	timer    *time.Timer
	onReload func()
}

// OpenDir loads every definition in dir, creating the directory if needed.
func OpenDir(dir string, log *slog.Logger) (*DirStore, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create construction dir: %w", err)
	}
	d := &DirStore{dir: dir, log: log.With("dir", dir)}
	if err := d.Reload(); err != nil {
		return nil, err
	}
	return d, nil
}

func isDefinitionFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return !strings.HasPrefix(filepath.Base(name), ".")
	}
	return false
}

// Reload rereads the directory.
func (d *DirStore) Reload() error {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return fmt.Errorf("read construction dir: %w", err)
	}
	defs := make(map[string]*construction.Definition)
	bad := make(map[string]error)
	for _, e := range entries {
		if e.IsDir() || !isDefinitionFile(e.Name()) {
			continue
		}
		path := filepath.Join(d.dir, e.Name())
		def, err := construction.Load(path)
		if err == nil {
			if def.ID == "" {
				def.ID = strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
			}
			_, err = construction.Compile(def)
		}
		if err != nil {
			bad[e.Name()] = err
			d.log.Warn("skip construction file", "file", e.Name(), "error", err)
			continue
		}
		if prev, ok := defs[def.ID]; ok {
			d.log.Warn("duplicate construction id", "id", def.ID, "file", e.Name(), "kept", prev.Name)
			continue
		}
		defs[def.ID] = def
	}

	d.mu.Lock()
	d.defs, d.bad = defs, bad
	cb := d.onReload
	d.mu.Unlock()

	d.log.Debug("constructions loaded", "count", len(defs), "skipped", len(bad))
	if cb != nil {
		cb()
	}
	return nil
}

// Problems returns the parse or compile error of every skipped file.
func (d *DirStore) Problems() map[string]error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]error, len(d.bad))
	for k, v := range d.bad {
		out[k] = v
	}
	return out
}

func (d *DirStore) List(context.Context) ([]Summary, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Summary, 0, len(d.defs))
	for _, def := range d.defs {
		out = append(out, summarize(def, "dir"))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *DirStore) Get(_ context.Context, id string) (*construction.Definition, error) {
	d.mu.RLock()
	def, ok := d.defs[id]
	d.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	// callers may mutate what they get back
	data, err := construction.Marshal(def)
	if err != nil {
		return nil, err
	}
	return construction.Parse(data)
}

// Put writes def to <id>.yaml and makes it visible immediately.
func (d *DirStore) Put(_ context.Context, def *construction.Definition) error {
	if def.ID == "" || strings.ContainsAny(def.ID, `/\`) || strings.HasPrefix(def.ID, ".") {
		return fmt.Errorf("invalid construction id %q", def.ID)
	}
	data, err := construction.Marshal(def)
	if err != nil {
		return fmt.Errorf("encode construction: %w", err)
	}
	path := filepath.Join(d.dir, def.ID+".yaml")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write construction: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write construction: %w", err)
	}

	d.mu.Lock()
	d.defs[def.ID] = def
	d.mu.Unlock()
	return nil
}

// OnReload registers fn to run after every reload.
func (d *DirStore) OnReload(fn func()) {
	d.mu.Lock()
	d.onReload = fn
	d.mu.Unlock()
}

// Watch reloads the directory whenever a definition file changes, waiting
// for debounce to pass without further events first.
func (d *DirStore) Watch(debounce time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(d.dir); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", d.dir, err)
	}
	d.mu.Lock()
	d.watcher = w
	d.mu.Unlock()

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !isDefinitionFile(event.Name) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					d.schedule(debounce)
				}

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				d.log.Warn("watcher error", "error", err)
			}
		}
	}()
	return nil
}

func (d *DirStore) schedule(debounce time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(debounce, func() {
		if err := d.Reload(); err != nil {
			d.log.Error("reload constructions", "error", err)
		}
	})
}

// Close stops watching.
func (d *DirStore) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	if d.watcher == nil {
		return nil
	}
	err := d.watcher.Close()
	d.watcher = nil
	return err
}

// Delete removes the file holding id.
func (d *DirStore) Delete(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.defs[id]; !ok {
		return ErrNotFound
	}
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		err := os.Remove(filepath.Join(d.dir, id+ext))
		if err == nil {
			delete(d.defs, id)
			return nil
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("delete construction: %w", err)
		}
	}
	// loaded from a file not named after its id
	return fmt.Errorf("delete construction %s: no file named after it", id)
}
