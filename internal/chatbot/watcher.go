package chatbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads a knowledge file into a Bot when it changes on disk.
// The parent directory is watched so editors that replace the file by rename
// are picked up. A file that fails to parse leaves the current table in place.
// A Watcher cannot be restarted after Stop.
type Watcher struct {
	logger   *slog.Logger
	bot      *Bot
	path     string
	debounce time.Duration

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool

	// onReload observes every reload attempt.
	onReload func(error)
}

func NewWatcher(logger *slog.Logger, bot *Bot, path string) (*Watcher, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if bot == nil {
		return nil, errors.New("bot is required")
	}
	if path == "" {
		return nil, errors.New("path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve knowledge path: %w", err)
	}
	return &Watcher{
		logger:   logger,
		bot:      bot,
		path:     abs,
		debounce: defaultDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine. It returns once the watch is registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.fsw = fsw
	w.running = true

	w.logger.Info("chatbot knowledge watch started", "path", w.path)
	go w.run(ctx)
	return nil
}

// Stop ends the watch loop and waits for it to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.fsw.Close(); err != nil {
		w.logger.Warn("chatbot knowledge watch close failed", "error", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("chatbot knowledge watch error", "error", err)
		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	kb, err := LoadKnowledge(w.path)
	if err != nil {
		w.logger.Warn("chatbot knowledge reload failed, keeping previous table", "path", w.path, "error", err)
	} else {
		w.bot.Replace(kb)
		w.logger.Info("chatbot knowledge reloaded", "path", w.path, "rules", len(kb.Rules))
	}
	if w.onReload != nil {
		w.onReload(err)
	}
}
