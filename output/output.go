package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"charm.land/glamour/v2"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/yuin/goldmark"

	"github.com/Gaurav-Gosain/reelscout/movie"
)

// Export formats.
const (
	FormatMarkdown = "md"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// md is reused across exports.
var md = goldmark.New()

var htmlTagRE = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

// PlotMarkdown returns the plot as markdown. Some providers deliver
// descriptions as HTML fragments; those are converted, plain text passes
// through untouched.
func PlotMarkdown(plot string) string {
	plot = strings.TrimSpace(plot)
	if plot == "" || !htmlTagRE.MatchString(plot) {
		return plot
	}
	out, err := htmltomarkdown.ConvertString(plot)
	if err != nil {
		return htmlTagRE.ReplaceAllString(plot, "")
	}
	return strings.TrimSpace(out)
}

// Markdown renders one movie as a markdown card.
func Markdown(m movie.Movie, favorite bool) string {
	var b strings.Builder

	heading := m.Title
	if favorite {
		heading += " ♥"
	}
	fmt.Fprintf(&b, "## %s\n\n", heading)

	if m.HasPoster() {
		fmt.Fprintf(&b, "![%s](%s)\n\n", m.Title, m.Poster)
	} else {
		b.WriteString("_No Image_\n\n")
	}

	fmt.Fprintf(&b, "- **Year:** %s\n", m.Year)
	fmt.Fprintf(&b, "- **Genre:** %s\n", m.GenreLabel())
	fmt.Fprintf(&b, "- **IMDB Rating:** %s\n", m.Rating)
	fmt.Fprintf(&b, "- **Type:** %s\n", m.Type)
	if m.Runtime != "" {
		fmt.Fprintf(&b, "- **Runtime:** %s\n", m.Runtime)
	}
	if m.Director != "" {
		fmt.Fprintf(&b, "- **Director:** %s\n", m.Director)
	}
	if m.Actors != "" {
		fmt.Fprintf(&b, "- **Actors:** %s\n", m.Actors)
	}
	fmt.Fprintf(&b, "- **ID:** `%s`\n", m.ID)

	if plot := PlotMarkdown(m.Plot); plot != "" {
		b.WriteString("\n")
		b.WriteString(plot)
		b.WriteString("\n")
	}
	return b.String()
}

// ListMarkdown renders a titled list of movie cards.
func ListMarkdown(title string, movies []movie.Movie, isFavorite func(id string) bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	for _, m := range movies {
		fav := isFavorite != nil && isFavorite(m.ID)
		b.WriteString(Markdown(m, fav))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderTerminal renders markdown to w using glamour.
func RenderTerminal(w io.Writer, markdown string, wordWrap int) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithEnvironmentConfig(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}
	_, err = io.WriteString(w, rendered)
	return err
}

// HTML converts markdown to a standalone HTML document.
func HTML(title, markdown string) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return fmt.Sprintf("<!doctype html>\n<html>\n<head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n%s</body>\n</html>\n",
		title, body.String()), nil
}

// FormatFromPath picks an export format from the file extension.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML
	case ".json":
		return FormatJSON
	default:
		return FormatMarkdown
	}
}

// WriteFavorites exports the favorites to path in the given format. The
// JSON format writes the stored records unchanged.
func WriteFavorites(path, format string, records []movie.Record) error {
	var data []byte

	switch format {
	case FormatJSON:
		if records == nil {
			records = []movie.Record{}
		}
		b, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode favorites: %w", err)
		}
		data = append(b, '\n')
	case FormatMarkdown, FormatHTML:
		text := ListMarkdown("Favorite Movies", movie.NormalizeAll(records), func(string) bool { return true })
		if len(records) == 0 {
			text = "# Favorite Movies\n\nNo favorite movies yet. Add some from the main page!\n"
		}
		if format == FormatHTML {
			html, err := HTML("Favorite Movies", text)
			if err != nil {
				return err
			}
			text = html
		}
		data = []byte(text)
	default:
		return fmt.Errorf("unknown export format %q (want md, html or json)", format)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
