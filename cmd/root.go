package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"charm.land/log/v2"
	"github.com/spf13/cobra"

	"github.com/Gaurav-Gosain/reelscout/config"
	"github.com/Gaurav-Gosain/reelscout/favorites"
	"github.com/Gaurav-Gosain/reelscout/movie"
	"github.com/Gaurav-Gosain/reelscout/output"
	"github.com/Gaurav-Gosain/reelscout/source"
	"github.com/Gaurav-Gosain/reelscout/storage"
	"github.com/Gaurav-Gosain/reelscout/tui"
)

// flags holds command-line overrides. Zero values leave the config alone.
type flags struct {
	ConfigPath string
	Source     string
	APIKey     string
	URL        string
	DBPath     string
	LogLevel   string
	WordWrap   int
}

func NewRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "reelscout [query]",
		Short: "Search for movies and keep a list of favorites",
		Long:  "An interactive movie finder. Type a title, scroll through the results and mark favorites;\nfavorites are kept in a local database between runs.",
		Example: `  # Open the finder
  reelscout

  # Start with a search
  reelscout batman

  # Search OMDB instead of the bundled catalog
  reelscout --source omdb --api-key $OMDB_KEY "the dark knight"

  # Print results as markdown (no terminal attached)
  reelscout batman | less`,
		RunE: func(c *cobra.Command, args []string) error {
			return run(c.Context(), f, args, c.OutOrStdout(), isInteractive(os.Stdout, os.Stderr))
		},
		// Allow positional args (the query) even though fang adds subcommands.
		TraverseChildren: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.ConfigPath, "config", "c", "", "Path to a config file")
	pf.StringVarP(&f.Source, "source", "s", "", "Movie source: gist, backend or omdb")
	pf.StringVar(&f.APIKey, "api-key", "", "OMDB API key")
	pf.StringVarP(&f.URL, "url", "u", "", "Endpoint of the selected source")
	pf.StringVar(&f.DBPath, "db", "", "Path to the favorites database")
	pf.StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.IntVarP(&f.WordWrap, "word-wrap", "w", 0, "Word wrap width for terminal rendering")

	cmd.AddCommand(newFavoritesCmd(f), newServeCmd(f))
	return cmd
}

// loadConfig reads the config file and applies flag overrides on top.
func loadConfig(f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return nil, err
	}

	if f.Source != "" {
		cfg.Source = f.Source
	}
	if f.APIKey != "" {
		cfg.OMDBAPIKey = f.APIKey
	}
	if f.URL != "" {
		switch strings.ToLower(cfg.Source) {
		case source.KindBackend:
			cfg.BackendURL = f.URL
		case source.KindOMDB:
			cfg.OMDBURL = f.URL
		default:
			cfg.GistURL = f.URL
		}
	}
	if f.DBPath != "" {
		cfg.DBPath = f.DBPath
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.WordWrap > 0 {
		cfg.WordWrap = f.WordWrap
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the application logger. When quiet is set, output goes
// to the configured log file or nowhere, so the TUI keeps the terminal.
func newLogger(cfg *config.Config, quiet bool) (*log.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closer := func() {}

	switch {
	case cfg.LogFile != "":
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = file
		closer = func() { _ = file.Close() }
	case quiet:
		w = io.Discard
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "reelscout",
	})
	if cfg.LogLevel != "" {
		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			closer()
			return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		logger.SetLevel(level)
	}
	return logger, closer, nil
}

// openFavorites opens the favorites database named by cfg.
func openFavorites(cfg *config.Config, logger *log.Logger) (*storage.SQLite, *favorites.Store, error) {
	db, err := storage.OpenSQLite(cfg.GetDBPath())
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Opened favorites database", "path", db.Path())
	return db, favorites.Open(db, logger), nil
}

// run searches for the query in args. interactive launches the TUI;
// otherwise results are printed to out as rendered markdown.
func run(ctx context.Context, f *flags, args []string, out io.Writer, interactive bool) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg, interactive)
	if err != nil {
		return err
	}
	defer closeLog()

	src, err := source.New(cfg.SourceSettings())
	if err != nil {
		return err
	}
	exec := source.NewExecutor(src, logger)

	db, favs, err := openFavorites(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	query := collectQuery(args)

	if interactive {
		return tui.Run(ctx, tui.Options{
			Executor:  exec,
			Favorites: favs,
			Logger:    logger,
			Query:     query,
		})
	}

	if query == "" {
		return fmt.Errorf("no query provided; pass one as an argument or pipe it via stdin")
	}

	records := exec.Search(ctx, query)
	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "No movies found. Try a different search.")
		return err
	}
	movies := movie.NormalizeAll(records)
	favorite := make(map[string]bool, len(movies))
	for i, r := range records {
		favorite[movies[i].ID] = favs.IsFavorite(movie.FavoriteID(r))
	}
	isFavorite := func(id string) bool { return favorite[id] }
	md := output.ListMarkdown(fmt.Sprintf("Results for %q", query), movies, isFavorite)
	return output.RenderTerminal(out, md, cfg.WordWrap)
}

// isInteractive reports whether the TUI can run: the program draws on
// stdout and the logs go to stderr, so both have to be terminals.
func isInteractive(stdout, stderr *os.File) bool {
	return tui.IsTTY(stdout) && tui.IsTTY(stderr)
}

// collectQuery joins the positional args into one query. With no args, a
// query piped on stdin is used instead.
func collectQuery(args []string) string {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " "))
	}

	stat, err := os.Stdin.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
		return ""
	}
	var lines []string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}
