// Package docs serves the embedded user guides. Each guide is a markdown
// file with YAML frontmatter carrying its title and description; bodies
// render for the terminal via glamour with the style matched to the
// terminal background.
package docs

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

//go:embed pages/*.md
var pagesFS embed.FS

const pagesDir = "pages"

// renderWidth is the word-wrap width for rendered guides.
const renderWidth = 100

// Page is one embedded guide.
type Page struct {
	Slug        string // lookup key, the file name without .md
	Title       string
	Description string
	Body        string // markdown with the frontmatter stripped
}

type pageMeta struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Pages returns every embedded guide sorted by slug.
func Pages() ([]Page, error) {
	entries, err := fs.ReadDir(pagesFS, pagesDir)
	if err != nil {
		return nil, fmt.Errorf("reading embedded guides: %w", err)
	}

	pages := make([]Page, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		page, err := Lookup(strings.TrimSuffix(entry.Name(), ".md"))
		if err != nil {
			return nil, err
		}
		pages = append(pages, *page)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Slug < pages[j].Slug })
	return pages, nil
}

// Lookup returns the guide with the given slug.
func Lookup(slug string) (*Page, error) {
	data, err := pagesFS.ReadFile(path.Join(pagesDir, slug+".md"))
	if err != nil {
		return nil, fmt.Errorf("no guide named %q", slug)
	}

	var matter pageMeta
	body, err := frontmatter.Parse(bytes.NewReader(data), &matter)
	if err != nil {
		return nil, fmt.Errorf("parsing frontmatter of guide %s: %w", slug, err)
	}
	if matter.Title == "" {
		return nil, fmt.Errorf("guide %s has no title", slug)
	}

	return &Page{
		Slug:        slug,
		Title:       matter.Title,
		Description: matter.Description,
		Body:        strings.TrimLeft(string(body), "\n"),
	}, nil
}

// Render renders a guide body for the terminal. Plain mode returns the
// markdown untouched, for piping or terminals glamour mangles.
func Render(body string, plain bool) (string, error) {
	if plain {
		return body, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(detectStyle(50*time.Millisecond)),
		glamour.WithWordWrap(renderWidth),
	)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := renderer.Render(body)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

// detectStyle picks the glamour style for the terminal background. A
// concrete GLAMOUR_STYLE wins, and the background probe is bounded by a
// timeout because some terminals never answer it.
func detectStyle(timeout time.Duration) string {
	style := os.Getenv("GLAMOUR_STYLE")
	if style != "" && style != "auto" {
		return style
	}

	ch := make(chan string, 1)
	go func() {
		out := termenv.NewOutput(os.Stdout)
		if out.HasDarkBackground() {
			ch <- "dark"
			return
		}
		ch <- "light"
	}()

	select {
	case s := <-ch:
		return s
	case <-time.After(timeout):
		return "dark"
	}
}
