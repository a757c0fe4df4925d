package content

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoFrontMatter is returned for files that do not open with a --- block.
var ErrNoFrontMatter = errors.New("missing front matter")

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// Parse decodes a content file into an Entry of collection col.
func Parse(col Collection, id string, raw []byte) (Entry, error) {
	meta, body, err := splitFrontMatter(raw)
	if err != nil {
		return Entry{}, err
	}
	fields := map[string]any{}
	if err := yaml.Unmarshal(meta, &fields); err != nil {
		return Entry{}, fmt.Errorf("decode front matter: %w", err)
	}
	data, err := normalize(col, fields)
	if err != nil {
		return Entry{}, err
	}
	return Entry{ID: id, Collection: col, Data: data, Body: body}, nil
}

func splitFrontMatter(raw []byte) ([]byte, string, error) {
	raw = bytes.TrimPrefix(raw, []byte("\ufeff"))
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	if !strings.HasPrefix(text, "---\n") {
		return nil, "", ErrNoFrontMatter
	}
	rest := text[4:]
	if strings.HasPrefix(rest, "---\n") || rest == "---" {
		return nil, strings.TrimPrefix(rest[3:], "\n"), nil
	}
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		if strings.HasSuffix(rest, "\n---") {
			return []byte(rest[:len(rest)-4]), "", nil
		}
		return nil, "", ErrNoFrontMatter
	}
	return []byte(rest[:end]), rest[end+5:], nil
}

// normalize maps the untyped front matter onto Data. Only tags are
// tolerated when malformed; other fields follow the collection schema.
func normalize(col Collection, f map[string]any) (Data, error) {
	var d Data
	var err error
	if d.Title, err = requiredString(f, "title"); err != nil {
		return Data{}, err
	}
	if d.Description, err = requiredString(f, "description"); err != nil {
		return Data{}, err
	}
	v, ok := f["pubDate"]
	if !ok || v == nil {
		return Data{}, fmt.Errorf("pubDate: required")
	}
	if d.PubDate, err = coerceDate(v); err != nil {
		return Data{}, fmt.Errorf("pubDate: %w", err)
	}
	if d.Draft, err = optionalBool(f, "draft"); err != nil {
		return Data{}, err
	}
	d.Tags = normalizeTags(f["tags"])

	switch col {
	case Blog:
		if v, ok := f["updatedDate"]; ok && v != nil {
			t, err := coerceDate(v)
			if err != nil {
				return Data{}, fmt.Errorf("updatedDate: %w", err)
			}
			d.UpdatedDate = &t
		}
		if d.Author, err = optionalString(f, "author"); err != nil {
			return Data{}, err
		}
		if d.Author == "" {
			d.Author = DefaultAuthor
		}
		if d.Featured, err = optionalBool(f, "featured"); err != nil {
			return Data{}, err
		}
		if d.HeroImage, err = optionalString(f, "heroImage"); err != nil {
			return Data{}, err
		}
	case TIL:
		if d.Category, err = requiredString(f, "category"); err != nil {
			return Data{}, err
		}
	}
	return d, nil
}

// normalizeTags turns the raw tags value into a string slice. Anything
// that is not a sequence yields nil; nil and nested items are dropped and
// scalars are coerced to their string form.
func normalizeTags(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, it := range items {
		switch t := it.(type) {
		case string:
			out = append(out, t)
		case int:
			out = append(out, strconv.Itoa(t))
		case int64:
			out = append(out, strconv.FormatInt(t, 10))
		case uint64:
			out = append(out, strconv.FormatUint(t, 10))
		case float64:
			out = append(out, strconv.FormatFloat(t, 'f', -1, 64))
		case bool:
			out = append(out, strconv.FormatBool(t))
		case time.Time:
			out = append(out, t.Format("2006-01-02"))
		}
	}
	return out
}

func requiredString(f map[string]any, key string) (string, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%s: required", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %T", key, v)
	}
	return s, nil
}

func optionalString(f map[string]any, key string) (string, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %T", key, v)
	}
	return s, nil
}

func optionalBool(f map[string]any, key string) (bool, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: expected bool, got %T", key, v)
	}
	return b, nil
}

func coerceDate(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", t)
	case int:
		return time.UnixMilli(int64(t)).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("expected date, got %T", v)
	}
}
