package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"chronocopy/internal/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the config whenever the config file is rewritten and hands
// the result to onChange. Stop the watcher with Close.
func Watch(onChange func(*Config)) (*fsnotify.Watcher, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch config dir: %w", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if !strings.HasPrefix(filepath.Base(event.Name), "config.") {
					continue
				}

				cfg, err := Load()
				if err != nil {
					logger.Log.Warn("config reload failed", zap.Error(err))
					continue
				}

				logger.Log.Info("config reloaded",
					zap.String("file", event.Name))
				onChange(cfg)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Log.Warn("config watcher error", zap.Error(err))
			}
		}
	}()

	return watcher, nil
}
