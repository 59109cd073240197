package services

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"garden-cms/pkg/models"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// UntitledTitle is used for files whose front matter has no title.
const UntitledTitle = "Untitled"

// Front matter keys known to the CMS, in the order they are written.
var knownKeys = []string{"title", "date", "description", "coverImage", "tags", "externalUrl", "growthStage"}

type delimiter struct {
	marker    string
	unmarshal func([]byte, any) error
}

var delimiters = []delimiter{
	{marker: "---", unmarshal: yaml.Unmarshal},
	{marker: "+++", unmarshal: toml.Unmarshal},
}

// DecodeFrontMatter splits raw into its metadata block and body. Text without
// a leading block is returned whole as the body with empty metadata. Delimiter
// lines may end in CRLF; the body is returned byte for byte.
func DecodeFrontMatter(raw string) (map[string]any, string, error) {
	first, _ := nextLine(raw, 0)
	for _, d := range delimiters {
		if first != d.marker {
			continue
		}
		block, body, ok := splitBlock(raw, d.marker)
		if !ok {
			return nil, "", &ParseError{Err: fmt.Errorf("missing closing %q delimiter", d.marker)}
		}
		fm := map[string]any{}
		if err := d.unmarshal([]byte(normalizeLineEndings(block)), &fm); err != nil {
			return nil, "", &ParseError{Err: err}
		}
		if fm == nil {
			fm = map[string]any{}
		}
		return sanitizeFrontMatter(fm), body, nil
	}
	return map[string]any{}, raw, nil
}

// nextLine returns the line starting at i without its terminator, and the
// offset just past the terminator.
func nextLine(s string, i int) (string, int) {
	end := strings.IndexByte(s[i:], '\n')
	if end < 0 {
		return strings.TrimSuffix(s[i:], "\r"), len(s)
	}
	return strings.TrimSuffix(s[i:i+end], "\r"), i + end + 1
}

// splitBlock returns the text between the opening and closing marker lines
// and the body after them, minus one blank separator line.
func splitBlock(raw, marker string) (string, string, bool) {
	_, blockStart := nextLine(raw, 0)
	if blockStart == len(raw) {
		return "", "", false
	}
	for i := blockStart; i < len(raw); {
		line, next := nextLine(raw, i)
		if line == marker {
			after := raw[next:]
			switch {
			case strings.HasPrefix(after, "\r\n"):
				after = after[2:]
			case strings.HasPrefix(after, "\n"):
				after = after[1:]
			}
			return raw[blockStart:i], after, true
		}
		i = next
	}
	return "", "", false
}

// EncodeFrontMatter writes meta as a YAML block followed by a blank line and
// body. Nil values are left out.
func EncodeFrontMatter(body string, meta map[string]any) (string, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range orderedKeys(meta) {
		value := meta[key]
		if value == nil {
			continue
		}
		var keyNode, valueNode yaml.Node
		keyNode.SetString(key)
		if err := valueNode.Encode(pruneNil(value)); err != nil {
			return "", fmt.Errorf("encode %s: %w", key, err)
		}
		doc.Content = append(doc.Content, &keyNode, &valueNode)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	if len(doc.Content) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return "", err
		}
		if err := enc.Close(); err != nil {
			return "", err
		}
	}
	buf.WriteString("---\n\n")
	buf.WriteString(body)
	return buf.String(), nil
}

func orderedKeys(meta map[string]any) []string {
	keys := make([]string, 0, len(meta))
	known := make(map[string]bool, len(knownKeys))
	for _, k := range knownKeys {
		known[k] = true
		if _, ok := meta[k]; ok {
			keys = append(keys, k)
		}
	}
	var rest []string
	for k := range meta {
		if !known[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func pruneNil(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, inner := range v {
			if inner == nil {
				continue
			}
			out[k] = pruneNil(inner)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = pruneNil(v[i])
		}
		return out
	default:
		return v
	}
}

func sanitizeFrontMatter(fm map[string]any) map[string]any {
	if fm == nil {
		return nil
	}
	sanitized := make(map[string]any, len(fm))
	for k, v := range fm {
		sanitized[k] = sanitizeFrontMatterValue(v)
	}
	return sanitized
}

func sanitizeFrontMatterValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return sanitizeFrontMatter(v)
	case map[any]any:
		normalized := make(map[string]any, len(v))
		for key, inner := range v {
			normalized[fmt.Sprint(key)] = sanitizeFrontMatterValue(inner)
		}
		return normalized
	case []any:
		slice := make([]any, len(v))
		for i := range v {
			slice[i] = sanitizeFrontMatterValue(v[i])
		}
		return slice
	case toml.LocalDate:
		return v.String()
	case toml.LocalDateTime:
		return v.String()
	case toml.LocalTime:
		return v.String()
	default:
		return v
	}
}

func normalizeLineEndings(input string) string {
	return strings.ReplaceAll(input, "\r\n", "\n")
}

// ArticleFromFrontMatter builds an article from decoded metadata, applying
// the catalog defaults for title, date and tags. Unknown keys, and a
// growthStage outside the known set, are kept in Extra.
func ArticleFromFrontMatter(slug string, fm map[string]any, body string, now time.Time) models.Article {
	art := models.Article{
		Slug:    slug,
		Title:   stringValue(fm["title"]),
		Date:    stringValue(fm["date"]),
		Content: body,
		Tags:    stringList(fm["tags"]),
	}
	art.Description = stringValue(fm["description"])
	art.CoverImage = stringValue(fm["coverImage"])
	art.ExternalURL = stringValue(fm["externalUrl"])

	if art.Title == "" {
		art.Title = UntitledTitle
	}
	if art.Date == "" {
		art.Date = now.Format(time.RFC3339)
	}

	for k, v := range fm {
		switch k {
		case "title", "date", "description", "coverImage", "tags", "externalUrl":
			continue
		case "growthStage":
			if stage, ok := models.ParseGrowthStage(stringValue(v)); ok {
				art.GrowthStage = stage
				continue
			}
		}
		if art.Extra == nil {
			art.Extra = make(map[string]any)
		}
		art.Extra[k] = v
	}
	return art
}

// FrontMatterOf returns the metadata written for art. Empty optional fields
// are left out.
func FrontMatterOf(art models.Article) map[string]any {
	fm := make(map[string]any, len(art.Extra)+len(knownKeys))
	for k, v := range art.Extra {
		fm[k] = v
	}
	fm["title"] = art.Title
	fm["date"] = art.Date
	fm["description"] = art.Description
	if art.CoverImage != "" {
		fm["coverImage"] = art.CoverImage
	}
	if len(art.Tags) > 0 {
		fm["tags"] = append([]string(nil), art.Tags...)
	}
	if art.ExternalURL != "" {
		fm["externalUrl"] = art.ExternalURL
	}
	if art.GrowthStage != "" {
		fm["growthStage"] = string(art.GrowthStage)
	}
	return fm
}

// EncodeArticle serializes art into the stored file format.
func EncodeArticle(art models.Article) (string, error) {
	return EncodeFrontMatter(art.Content, FrontMatterOf(art))
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case time.Time:
		return formatDate(val)
	default:
		return fmt.Sprint(val)
	}
}

func stringList(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := stringValue(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return append([]string{}, val...)
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	}
	return []string{}
}

func formatDate(t time.Time) string {
	if t.Equal(t.Truncate(24*time.Hour)) && t.Location() == time.UTC {
		return t.Format(models.DateLayout)
	}
	return t.Format(time.RFC3339)
}
