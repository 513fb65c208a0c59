/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: watch.go
Description: Live re-analysis of the examples directory
*/

package pipeline

import (
	"context"

	"github.com/kleascm/mockjson/pkg/corpus"
	"github.com/kleascm/mockjson/pkg/report"
)

// WatchFunc receives the corpus change and the report rebuilt after it
type WatchFunc func(change corpus.Change, r *report.Report, err error)

// Watch re-analyzes the corpus whenever a file in dir changes, until ctx is done.
// New logical types are bound to generators and vanished ones leave the cache.
func (c *Context) Watch(ctx context.Context, dir string, fn WatchFunc) error {
	w, err := corpus.NewWatcher(dir, c.logger.GetLogger())
	if err != nil {
		return err
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case change, ok := <-w.Changes():
			if !ok {
				return nil
			}
			r, err := c.refresh()
			fn(change, r, err)
		}
	}
}

func (c *Context) refresh() (*report.Report, error) {
	c.bootMu.Lock()
	added, err := c.registerMissing()
	c.bootMu.Unlock()
	if err != nil {
		return nil, err
	}
	if len(added) > 0 {
		c.logger.Info("Corpus gained logical types", map[string]interface{}{"types": added})
	}

	types, err := c.source.Types()
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(types))
	for _, t := range types {
		present[t] = true
	}
	for _, t := range c.cache.Types() {
		if !present[t] {
			c.cache.Invalidate(t)
			c.logger.Info("Corpus lost logical type", map[string]interface{}{"logical_type": t})
		}
	}

	return c.Analyze(types...)
}
