package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"grimm.is/floe/internal/events"
	"grimm.is/floe/internal/watch"
)

// RunWatch loads the registry, then follows external edits to the config
// trees until interrupted, printing each reconciled change.
func RunWatch(libDir, etcDir string) error {
	cfg, paths := loadConfig(libDir, etcDir)

	hub := events.NewHub()
	ch := hub.Subscribe(64,
		events.EventConfigCreated, events.EventConfigUpdated, events.EventConfigRemoved)

	w, err := watch.New(cfg, paths, hub)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		for e := range ch {
			data, ok := e.Data.(events.ConfigObjectData)
			if !ok {
				continue
			}
			fmt.Printf("%s %s/%s\n", e.Type, data.Kind, data.Name)
		}
	}()

	fmt.Println("Watching configuration trees. Ctrl-C to stop.")
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
