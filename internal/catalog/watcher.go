package catalog

import (
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/logging"
)

// Watcher reloads the catalog when the experts directory changes on disk.
// Changes are debounced; editors tend to fire several events per save.
type Watcher struct {
	catalog *Catalog
	logger  *logging.Logger
	fsw     *fsnotify.Watcher
	stop    chan struct{}
}

const reloadDebounce = 500 * time.Millisecond

// Watch starts watching the catalog's backing directory. Call Close to stop.
func Watch(c *Catalog, logger *logging.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(c.dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		catalog: c,
		logger:  logger,
		fsw:     fsw,
		stop:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.stop:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
				timerC = timer.C
			} else {
				timer.Reset(reloadDebounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("expert watcher error", "error", err)
		case <-timerC:
			timer = nil
			timerC = nil
			if err := w.catalog.Reload(); err != nil {
				w.logger.Warn("expert catalog reload failed", "error", err)
			} else {
				w.logger.Info("expert catalog reloaded", "dir", w.catalog.dir)
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.stop)
	return w.fsw.Close()
}
