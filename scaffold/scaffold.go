// Package scaffold creates new blog and til entries from embedded
// front matter templates.
package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mengkeat/blog/content"
	"github.com/mengkeat/blog/tags"
)

// Templates contains one front matter template per collection.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

// ErrExists is returned when the target file is already there.
var ErrExists = errors.New("scaffold: entry already exists")

// Options carries the optional front matter of a new entry.
type Options struct {
	Description string
	Tags        []string
	Category    string // required for til
	Author      string // blog only, defaults to content.DefaultAuthor
	Draft       bool
	Date        time.Time // defaults to today
}

type entryData struct {
	Title       string
	Description string
	Date        string
	Author      string
	Category    string
	Tags        []string
	Draft       bool
}

var funcs = template.FuncMap{"quote": quote}

// quote renders s as a single YAML scalar.
func quote(s string) (string, error) {
	b, err := yaml.Marshal(s)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(b), "\n"), nil
}

// FileName returns the file name a title is saved under.
func FileName(title string) string {
	return strings.Trim(tags.Slugify(title), "-") + ".md"
}

// NewEntry writes <dir>/<collection>/<slug>.md and returns its path.
func NewEntry(dir string, col content.Collection, title string, opts Options) (string, error) {
	if !col.Valid() {
		return "", fmt.Errorf("scaffold: unknown collection %q", col)
	}
	title = strings.TrimSpace(title)
	name := FileName(title)
	if name == ".md" {
		return "", fmt.Errorf("scaffold: title %q has no usable characters", title)
	}
	if col == content.TIL && strings.TrimSpace(opts.Category) == "" {
		return "", errors.New("scaffold: til entries need a category")
	}

	data := entryData{
		Title:       title,
		Description: opts.Description,
		Author:      opts.Author,
		Category:    strings.TrimSpace(opts.Category),
		Draft:       opts.Draft,
	}
	if data.Description == "" {
		data.Description = title
	}
	if data.Author == "" {
		data.Author = content.DefaultAuthor
	}
	date := opts.Date
	if date.IsZero() {
		date = time.Now()
	}
	data.Date = date.Format("2006-01-02")
	for _, t := range opts.Tags {
		if t = strings.TrimSpace(t); t != "" {
			data.Tags = append(data.Tags, t)
		}
	}

	tmplName := string(col) + ".md.tmpl"
	tmpl, err := template.New(tmplName).Funcs(funcs).ParseFS(Templates, "templates/"+tmplName)
	if err != nil {
		return "", fmt.Errorf("scaffold: parse %s: %w", tmplName, err)
	}

	out := filepath.Join(dir, string(col), name)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrExists, out)
		}
		return "", err
	}
	if err := tmpl.Execute(f, data); err != nil {
		f.Close()
		os.Remove(out)
		return "", fmt.Errorf("scaffold: execute %s: %w", tmplName, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return out, nil
}
