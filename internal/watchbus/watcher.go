package watchbus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/corevault/corevault/internal/frontmatter"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher recursively observes memoriesRoot and tasksRoot and publishes
// translated memory_change/task_change events to a Bus, debounced per path
// to coalesce editor-style multi-event saves.
type Watcher struct {
	bus          *Bus
	memoriesRoot string
	tasksRoot    string
	debounce     time.Duration

	fs *fsnotify.Watcher

	mu      sync.Mutex
	timers  map[string]*time.Timer
	closing chan struct{}
	done    chan struct{}
}

// NewWatcher creates a Watcher publishing to bus over memoriesRoot/tasksRoot.
func NewWatcher(bus *Bus, memoriesRoot, tasksRoot string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watchbus: creating fsnotify watcher: %w", err)
	}
	w := &Watcher{
		bus:          bus,
		memoriesRoot: memoriesRoot,
		tasksRoot:    tasksRoot,
		debounce:     defaultDebounce,
		fs:           fsw,
		timers:       map[string]*time.Timer{},
		closing:      make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, root := range []string{memoriesRoot, tasksRoot} {
		if err := w.addRecursive(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return w.fs.Add(path)
		}
		return nil
	})
}

// Run processes fsnotify events until Close is called. Intended to run in
// its own goroutine.
func (w *Watcher) Run() {
	defer close(w.done)
	for {
		select {
		case <-w.closing:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case _, ok := <-w.fs.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".md") {
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				w.fs.Add(event.Name)
			}
		}
		return
	}

	w.mu.Lock()
	if t, ok := w.timers[event.Name]; ok {
		t.Stop()
	}
	w.timers[event.Name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, event.Name)
		w.mu.Unlock()
		w.publish(event)
	})
	w.mu.Unlock()
}

func (w *Watcher) publish(event fsnotify.Event) {
	var action Action
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		action = ActionUnlink
	case event.Has(fsnotify.Create):
		action = ActionAdd
	default:
		action = ActionChange
	}

	evtType, project, id := w.classify(event.Name, action)

	w.bus.Publish(Event{
		Type: evtType,
		Data: EventData{
			Action:  action,
			File:    event.Name,
			Project: project,
			ID:      id,
		},
	})
}

// classify determines whether a path belongs to the memory or task tree,
// its project, and (best-effort, since deleted files can't be re-read) the
// entity id the file held.
func (w *Watcher) classify(path string, action Action) (EventType, string, string) {
	var root string
	var evtType EventType
	if strings.HasPrefix(path, w.memoriesRoot) {
		root, evtType = w.memoriesRoot, EventMemoryChange
	} else {
		root, evtType = w.tasksRoot, EventTaskChange
	}

	rel, err := filepath.Rel(root, path)
	project := ""
	if err == nil {
		parts := strings.SplitN(rel, string(filepath.Separator), 2)
		if len(parts) > 0 {
			project = parts[0]
		}
	}

	id := ""
	if action != ActionUnlink {
		if raw, err := os.ReadFile(path); err == nil {
			if doc, err := frontmatter.Parse(raw); err == nil || doc.Header != nil {
				if v, ok := doc.Header["id"].(string); ok {
					id = v
				}
			}
		}
	}

	return evtType, project, id
}

// Close stops the watcher and waits for Run to return.
func (w *Watcher) Close() error {
	close(w.closing)
	err := w.fs.Close()
	<-w.done
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
	return err
}
