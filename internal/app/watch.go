package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"bpxgen/internal/config"
	"bpxgen/internal/logger"
	"bpxgen/internal/pipeline"

	"github.com/fsnotify/fsnotify"
)

const defaultWatchDebounce = 250 * time.Millisecond

// WatchEvent is one re-derivation triggered by a file change. Trigger is
// empty for the initial derivation.
type WatchEvent struct {
	Trigger string
	Result  *pipeline.Result
	Err     error
}

// WatchOptions tunes Watch.
type WatchOptions struct {
	// ConfigPath is reloaded when it changes; empty keeps the current config.
	ConfigPath string
	Debounce   time.Duration
}

// Watch derives once and then again whenever the config file, the BPX
// documents or the SOC definition file change, until ctx is done.
func (a *App) Watch(ctx context.Context, opts WatchOptions, fn func(WatchEvent)) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if fn == nil {
		return fmt.Errorf("watch requires a callback")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultWatchDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher failed: %w", err)
	}
	defer w.Close()

	tracked := make(map[string]bool)
	dirs := make(map[string]bool)
	rescan := func(res *pipeline.Result) {
		for _, p := range a.watchedFiles(opts.ConfigPath, res) {
			tracked[p] = true
			dir := filepath.Dir(p)
			if dirs[dir] {
				continue
			}
			// directories survive editors that replace files on save
			if err := w.Add(dir); err != nil {
				logger.Warnf("watch %s failed: %v", dir, err)
				continue
			}
			dirs[dir] = true
			logger.Debugf("watching %s", dir)
		}
	}

	res, err := a.Derive(ctx)
	rescan(res)
	fn(WatchEvent{Result: res, Err: err})

	timer := time.NewTimer(opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	var trigger string
	configChanged := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(evt.Name)
			if !tracked[name] || !evt.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			trigger = name
			if opts.ConfigPath != "" && name == absPath(opts.ConfigPath) {
				configChanged = true
			}
			timer.Reset(opts.Debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("file watcher: %v", err)
		case <-timer.C:
			if configChanged {
				configChanged = false
				cfg, err := config.Load(opts.ConfigPath)
				if err != nil {
					fn(WatchEvent{Trigger: trigger, Err: err})
					continue
				}
				logger.SetLevel(cfg.App.LogLevel)
				a.cfg = cfg
			}
			logger.Infof("%s changed, deriving again", trigger)
			res, err := a.Derive(ctx)
			rescan(res)
			fn(WatchEvent{Trigger: trigger, Result: res, Err: err})
		}
	}
}

// watchedFiles lists the absolute paths a derivation depends on.
func (a *App) watchedFiles(configPath string, res *pipeline.Result) []string {
	var out []string
	add := func(p string) {
		if strings.TrimSpace(p) == "" {
			return
		}
		out = append(out, absPath(p))
	}
	add(configPath)
	add(a.cfg.Resolve(a.cfg.Source.Path))
	add(a.cfg.Resolve(a.cfg.Operating.SOCDefinition.DataPath))
	if res != nil {
		add(res.Source)
	}
	return out
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
