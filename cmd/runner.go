package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/abray/moodfm/internal/repositories"
	"github.com/abray/moodfm/internal/server"
	"github.com/abray/moodfm/internal/services"
	"github.com/abray/moodfm/internal/shared"
	"github.com/abray/moodfm/internal/web"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, configCommand, moodsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reloadConfig swaps in the config file named by the --config flag when it
// differs from what main already loaded.
func (r *Runner) reloadConfig(cmd *cli.Command) {
	path := cmd.String("config")
	if path == "" || path == "config.toml" {
		return
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, keeping current settings", "path", path, "err", err)
		return
	}
	r.config = config
}

// openDatabase opens the configured database and brings the schema up to
// date.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Setup initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	db, err := r.openDatabase()
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}
	defer db.Close()

	r.logger.Info("database ready", "path", r.config.Database.Path)
	return nil
}

// ConfigInit writes the example configuration to disk.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("wrote example config", "path", path)
	return nil
}

// Serve starts the HTTP server with all routes registered.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	db, err := r.openDatabase()
	if err != nil {
		return fmt.Errorf("failed to prepare database: %w", err)
	}
	defer db.Close()

	var recommender services.Recommender
	if r.config.HasSpotifyCredentials() {
		spotify, err := services.NewSpotifyService(
			r.config.Credentials.Spotify.ClientID,
			r.config.Credentials.Spotify.ClientSecret,
			r.logger,
		)
		if err != nil {
			return fmt.Errorf("failed to build Spotify client: %w", err)
		}
		recommender = spotify
	} else {
		r.logger.Warn("Spotify credentials missing; playlist pages will show fallback content",
			"hint", "set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET")
	}

	if r.config.Session.SecretKey == "" {
		r.logger.Warn("no session secret configured; using a generated key, sessions reset on restart")
	}

	app, err := web.NewApp(web.AppOpts{
		Logger:      r.logger,
		Users:       repositories.NewUserRepository(db),
		Moods:       repositories.NewMoodRepository(db),
		Sessions:    web.NewSessionManager(r.config.SessionSecret()),
		Recommender: recommender,
	})
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}

	router := server.NewMuxRouter()
	app.Routes(router)

	addr := r.config.Server.Addr()
	httpServer := &http.Server{Addr: addr, Handler: router}

	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	r.logger.Info("server starting", "addr", fmt.Sprintf("http://%s", addr))
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
