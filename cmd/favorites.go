package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Gaurav-Gosain/reelscout/output"
)

const noFavoritesText = "No favorite movies yet. Add some from the main page!"

func newFavoritesCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"favs"},
		Short:   "Inspect or export saved favorites",
	}
	cmd.AddCommand(newFavoritesListCmd(f), newFavoritesExportCmd(f), newFavoritesClearCmd(f))
	return cmd
}

func newFavoritesListCmd(f *flags) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print saved favorites",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg, false)
			if err != nil {
				return err
			}
			defer closeLog()

			db, favs, err := openFavorites(cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			out := c.OutOrStdout()
			movies := favs.Movies()
			if len(movies) == 0 {
				_, err := fmt.Fprintln(out, noFavoritesText)
				return err
			}

			md := output.ListMarkdown("Favorite Movies", movies, func(string) bool { return true })
			if raw {
				_, err := fmt.Fprint(out, md)
				return err
			}
			return output.RenderTerminal(out, md, cfg.WordWrap)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without terminal rendering")
	return cmd
}

func newFavoritesExportCmd(f *flags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Write saved favorites to a markdown, HTML or JSON file",
		Example: `  reelscout favorites export favs.md
  reelscout favorites export favs.html
  reelscout favorites export --format json backup.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg, false)
			if err != nil {
				return err
			}
			defer closeLog()

			db, favs, err := openFavorites(cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			path := args[0]
			if format == "" {
				format = output.FormatFromPath(path)
			}
			entries := favs.Entries()
			if err := output.WriteFavorites(path, format, entries); err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.OutOrStdout(), "Exported %d favorites to %s\n", len(entries), path)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format: md, html or json (default: from file extension)")
	return cmd
}

func newFavoritesClearCmd(f *flags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every saved favorite",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg, false)
			if err != nil {
				return err
			}
			defer closeLog()

			db, favs, err := openFavorites(cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			n := favs.Len()
			if n > 0 && !yes {
				return fmt.Errorf("refusing to clear %d favorites without --yes", n)
			}
			if err := favs.Clear(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.OutOrStdout(), "Cleared %d favorites\n", n)
			return err
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
