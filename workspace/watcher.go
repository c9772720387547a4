package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Watcher polls a directory tree and reports files selected by Match that were
// created, modified or removed.
type Watcher struct {
	root         string
	match        func(rel string) bool
	stopCh       chan struct{}
	pollInterval time.Duration
	modTimes     map[string]time.Time

	OnChange func(path string)
	OnRemove func(path string)
}

func NewWatcher(root string, match func(rel string) bool) *Watcher {
	return &Watcher{
		root:         root,
		match:        match,
		stopCh:       make(chan struct{}),
		pollInterval: 1 * time.Second,
		modTimes:     make(map[string]time.Time),
	}
}

func (w *Watcher) SetPollInterval(d time.Duration) {
	w.pollInterval = d
}

func (w *Watcher) Start() {
	go w.run()
}

func (w *Watcher) Stop() {
	close(w.stopCh)
}

func (w *Watcher) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.scan()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *Watcher) scan() {
	currentFiles := make(map[string]bool)

	for _, path := range Expand(w.root, w.match) {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		currentFiles[path] = true

		lastMod, known := w.modTimes[path]
		if !known || info.ModTime().After(lastMod) {
			w.modTimes[path] = info.ModTime()
			if w.OnChange != nil {
				w.OnChange(path)
			}
		}
	}

	for path := range w.modTimes {
		if !currentFiles[path] {
			delete(w.modTimes, path)
			if w.OnRemove != nil {
				w.OnRemove(path)
			}
		}
	}
}

// Expand lists the files under root whose root-relative path is selected by match,
// skipping hidden directories. The result is in lexical order.
func Expand(root string, match func(rel string) bool) []string {
	var files []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if match(rel) {
			files = append(files, path)
		}
		return nil
	})
	return files
}
