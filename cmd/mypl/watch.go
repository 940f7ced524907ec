package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jpillora/backoff"
	"github.com/urfave/cli/v2"

	"github.com/CalebLefcort/mypl/internal/cache"
)

// watchCommand recompiles and runs a file each time it changes on disk.
// Grounded on fsnotify's standard Watcher usage; jpillora/backoff covers
// the case an editor's atomic-rename save briefly makes the path
// unreadable between the fsnotify event and our os.ReadFile call.
var watchCommand = &cli.Command{
	Name:      "watch",
	Usage:     "recompile and run a file on every save",
	ArgsUsage: "<file.mypl>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "cache-dir", Value: ".mypl-cache", Usage: "directory for the incremental-compile cache"},
		&cli.DurationFlag{Name: "watch-debounce", Value: 100 * time.Millisecond, Usage: "minimum time between recompiles"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("usage: mypl watch <file.mypl>")
		}
		path := c.Args().Get(0)

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()
		if err := watcher.Add(path); err != nil {
			return err
		}

		ch, err := cache.Load(c.String("cache-dir") + "/mypl-cache.json")
		if err != nil {
			return err
		}

		debounce := c.Duration("watch-debounce")
		var lastRun time.Time

		runOnce := func() {
			if time.Since(lastRun) < debounce {
				return
			}
			lastRun = time.Now()
			runWatchedFile(ch, path)
		}

		runOnce()

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					runOnce()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintln(os.Stderr, "mypl watch:", err)
			}
		}
	},
}

// runWatchedFile reads and recompiles path, retrying with backoff if the
// file is transiently unreadable (an editor mid-rename), then runs it.
func runWatchedFile(ch *cache.Cache, path string) {
	b := &backoff.Backoff{Min: 10 * time.Millisecond, Max: 200 * time.Millisecond, Factor: 2}

	var data []byte
	var err error
	for attempt := 0; attempt < 5; attempt++ {
		data, err = os.ReadFile(path)
		if err == nil {
			break
		}
		time.Sleep(b.Duration())
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "mypl watch: could not read", path, ":", err)
		return
	}

	needs, err := ch.NeedsRegeneration(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mypl watch:", err)
		return
	}

	templates, ok := ch.LoadTemplates(path)
	if needs || !ok {
		templates, err = compileSource(string(data))
		if err != nil {
			fmt.Fprintln(os.Stderr, "mypl watch:", err)
			return
		}
		if err := ch.StoreTemplates(path, templates); err != nil {
			fmt.Fprintln(os.Stderr, "mypl watch:", err)
		}
		if err := ch.Save(); err != nil {
			fmt.Fprintln(os.Stderr, "mypl watch:", err)
		}
	}

	m := newVM(templates)
	if err := m.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
