package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"gistcal/internal/config"
	"gistcal/internal/csvio"
	"gistcal/internal/gist"
	"gistcal/internal/ics"
	"gistcal/internal/logging"
	"gistcal/internal/quickadd"
	"gistcal/internal/store"
	bgsync "gistcal/internal/sync"
	"gistcal/internal/tz"
	"gistcal/internal/web"
)

const version = "0.1.0"

func main() {
	// Secrets usually arrive via .env during development.
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "gistcal",
		Usage:   "personal calendar with gist-backed storage",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   defaultConfigPath(),
				Usage:   "path to the YAML config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override the configured log level",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			verifyCommand(),
			exportCommand(),
			importCommand(),
			quickAddCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "gistcal:", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "gistcal.yaml"
	}
	return filepath.Join(base, "gistcal", "config.yaml")
}

// setup loads config and builds the root logger shared by all commands.
func setup(c *cli.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()

	level := cfg.LogLevel
	if v := c.String("log-level"); v != "" {
		level = v
	}
	log := logging.New(level)
	if _, err := tz.Resolve(cfg.Timezone); err != nil {
		log.Warn().Err(err).Msg("configured timezone invalid, falling back to UTC")
	}
	return cfg, log, nil
}

// openStore builds the document store, preferring the remote gist and
// falling back to the local mirror, then to an empty document.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store.Store, *gist.Client, *bgsync.Mirror, error) {
	st := store.New(log)
	client := gist.New(cfg.Gist.Token, cfg.Gist.ID, log)
	mirror := bgsync.NewMirror(cfg.MirrorDir)

	doc, err := client.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("remote load failed, trying local mirror")
	}
	if doc == nil {
		doc, err = mirror.Load()
		if err != nil {
			log.Warn().Err(err).Msg("mirror load failed, starting empty")
		}
	}
	if doc != nil {
		st.Load(*doc)
		log.Info().
			Int("events", len(doc.Events)).
			Int("tasks", len(doc.Tasks)).
			Int("tags", len(doc.Tags)).
			Msg("document loaded")
	} else {
		log.Info().Msg("no saved document, starting empty")
	}
	return st, client, mirror, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the web UI and background sync",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "HTTP listen address (overrides config if set)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, log, err := setup(c)
			if err != nil {
				return err
			}
			if v := c.String("listen"); v != "" {
				cfg.Listen = v
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, client, mirror, err := openStore(ctx, cfg, log)
			if err != nil {
				return err
			}

			savers := []bgsync.Saver{mirror}
			if client.Configured() {
				savers = append(savers, client)
			} else {
				log.Warn().Msg("gist not configured, changes stay local")
			}
			worker := bgsync.New(st, log, bgsync.Options{
				Debounce:  cfg.Debounce(),
				FlushCron: cfg.Sync.FlushCron,
			}, savers...)

			workerDone := make(chan struct{})
			go func() {
				defer close(workerDone)
				worker.Run(ctx)
			}()

			var parser quickadd.Parser
			if cfg.Parser.URL != "" {
				parser = quickadd.NewHTTP(cfg.Parser.URL, cfg.Parser.Token, log)
			}

			srv := web.NewServer(cfg, st, parser, log)
			err = srv.Run(ctx)

			// Wait for the final flush before exiting.
			stop()
			<-workerDone
			log.Info().Msg("gistcal exiting")
			return err
		},
	}
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "check gist credentials and reachability",
		Action: func(c *cli.Context) error {
			cfg, log, err := setup(c)
			if err != nil {
				return err
			}
			client := gist.New(cfg.Gist.Token, cfg.Gist.ID, log)
			if !client.Configured() {
				return errors.New("gist token or id missing (set GISTCAL_TOKEN and GISTCAL_GIST_ID)")
			}
			if err := client.Verify(c.Context); err != nil {
				return err
			}
			fmt.Println("gist reachable")
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write events or tasks to stdout",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Value: "events-csv",
				Usage: "one of events-csv, tasks-csv, ics",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, log, err := setup(c)
			if err != nil {
				return err
			}
			st, _, _, err := openStore(c.Context, cfg, log)
			if err != nil {
				return err
			}

			switch c.String("format") {
			case "events-csv":
				return csvio.WriteEvents(os.Stdout, st.Events())
			case "tasks-csv":
				return csvio.WriteTasks(os.Stdout, st.Tasks())
			case "ics":
				body, err := ics.Export(st.Events(), cfg.Location())
				if err != nil {
					return err
				}
				_, err = os.Stdout.WriteString(body)
				return err
			default:
				return fmt.Errorf("unknown format %q", c.String("format"))
			}
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "import a CSV file and save the document",
		ArgsUsage: "<file.csv>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "tasks",
				Usage: "treat the file as a task export instead of events",
			},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return errors.New("a CSV file argument is required")
			}
			cfg, log, err := setup(c)
			if err != nil {
				return err
			}
			st, client, mirror, err := openStore(c.Context, cfg, log)
			if err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			var imported, skipped int
			if c.Bool("tasks") {
				tasks, sk, err := csvio.ReadTasks(f)
				if err != nil {
					return err
				}
				imported, skipped = st.ImportTasks(tasks), sk
			} else {
				events, sk, err := csvio.ReadEvents(f)
				if err != nil {
					return err
				}
				n, rejected := st.ImportEvents(events)
				imported, skipped = n, sk+rejected
			}
			fmt.Printf("imported %d, skipped %d\n", imported, skipped)

			return saveNow(c.Context, st, client, mirror, log)
		},
	}
}

func quickAddCommand() *cli.Command {
	return &cli.Command{
		Name:      "quickadd",
		Usage:     "create an event from free-form text",
		ArgsUsage: "<text>",
		Action: func(c *cli.Context) error {
			text := c.Args().First()
			if text == "" {
				return errors.New("a text argument is required")
			}
			cfg, log, err := setup(c)
			if err != nil {
				return err
			}
			if cfg.Parser.URL == "" {
				return errors.New("parser url not configured (set GISTCAL_PARSER_URL)")
			}
			st, client, mirror, err := openStore(c.Context, cfg, log)
			if err != nil {
				return err
			}

			parsed, err := quickadd.NewHTTP(cfg.Parser.URL, cfg.Parser.Token, log).Parse(c.Context, text)
			if err != nil {
				return err
			}
			ev, err := quickadd.BuildEvent(parsed, cfg.Location())
			if err != nil {
				return err
			}
			created, err := st.CreateEvent(ev)
			if err != nil {
				return err
			}
			fmt.Printf("created %q on %s\n", created.Title, created.Start.In(cfg.Location()).Format("2006-01-02 15:04"))

			return saveNow(c.Context, st, client, mirror, log)
		},
	}
}

// saveNow flushes the document synchronously, for one-shot commands
// that exit immediately after a mutation.
func saveNow(ctx context.Context, st *store.Store, client *gist.Client, mirror *bgsync.Mirror, log zerolog.Logger) error {
	doc := st.Snapshot()
	if err := mirror.Save(ctx, doc); err != nil {
		log.Warn().Err(err).Msg("mirror save failed")
	}
	if !client.Configured() {
		log.Warn().Msg("gist not configured, saved locally only")
		return nil
	}
	return client.Save(ctx, doc)
}
