/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: watcher.go
Description: Change notification for an examples directory. Watches the directory itself,
which is reliable for editors that save atomically, and reports writes, creates, removes
and renames of JSON files.
*/

package corpus

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Change describes one corpus file event
type Change struct {
	File string
	Op   string
}

// Watcher reports changes in a corpus directory
type Watcher struct {
	dir      string
	logger   logrus.FieldLogger
	watcher  *fsnotify.Watcher
	changes  chan Change
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher starts watching dir
func NewWatcher(dir string, logger logrus.FieldLogger) (*Watcher, error) {
	if logger == nil {
		logger = discardLogger()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}

	w := &Watcher{
		dir:     dir,
		logger:  logger,
		watcher: fw,
		changes: make(chan Change, 16),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.watchLoop()

	logger.WithField("dir", dir).Info("Watching examples directory for changes")
	return w, nil
}

// Changes delivers corpus file events until Stop is called
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Stop ends watching and closes the Changes channel
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
	})
	<-w.done
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	defer close(w.changes)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			w.logger.WithFields(logrus.Fields{
				"event": event.Op.String(),
				"file":  filepath.Base(event.Name),
			}).Debug("Example file changed")

			select {
			case w.changes <- Change{File: event.Name, Op: event.Op.String()}:
			case <-w.stopCh:
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Error("File watcher error")

		case <-w.stopCh:
			return
		}
	}
}
