// Package archive renders a user's saved items into a tag-partitioned
// Markdown bundle packaged as a zip file.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"mindvault/internal/model"
	"mindvault/internal/slug"
)

// ErrNoItems is returned by Build when the user has nothing saved.
var ErrNoItems = errors.New("no items")

const (
	indexFile       = "INDEX.md"
	uncategorized   = "uncategorized"
	defaultFilename = "note.md"
)

// Labels used in archive names.
const (
	LabelExport = "export"
	LabelBackup = "backup"
)

// ItemLister reads a user's item log.
type ItemLister interface {
	List(ctx context.Context, userID string) ([]model.SavedItem, error)
}

// File is one entry of an archive.
type File struct {
	Path string
	Body []byte
}

// Archive is an in-memory bundle ready to be zipped.
type Archive struct {
	UserID      string
	Files       []File
	ItemCount   int
	TagDirs     []string
	GeneratedAt time.Time
}

// Builder assembles archives from the item store.
type Builder struct {
	items ItemLister
	now   func() time.Time
}

// NewBuilder returns a Builder. A nil clock uses time.Now.
func NewBuilder(items ItemLister, now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{items: items, now: now}
}

// Build renders every item of the user once per tag it carries, plus an
// INDEX.md. It returns ErrNoItems when the user has no items.
func (b *Builder) Build(ctx context.Context, userID string) (*Archive, error) {
	items, err := b.items.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	byTag := make(map[string][]model.SavedItem)
	for _, it := range items {
		tags := it.Tags
		if len(tags) == 0 {
			tags = []string{uncategorized}
		}
		for _, tag := range tags {
			dir := TagDir(tag)
			byTag[dir] = append(byTag[dir], it)
		}
	}

	dirs := make([]string, 0, len(byTag))
	for dir := range byTag {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	a := &Archive{
		UserID:      userID,
		ItemCount:   len(items),
		TagDirs:     dirs,
		GeneratedAt: b.now().UTC(),
	}
	for _, dir := range dirs {
		used := make(map[string]bool)
		for _, it := range byTag[dir] {
			name := it.Filename
			if name == "" {
				name = defaultFilename
			}
			if used[name] {
				name = slug.WithSuffix(name, it.ID)
			}
			used[name] = true
			a.Files = append(a.Files, File{Path: path.Join(dir, name), Body: []byte(Render(it))})
		}
	}
	a.Files = append(a.Files, File{Path: indexFile, Body: []byte(renderIndex(a))})
	return a, nil
}

// TagDir maps a tag to its directory name.
func TagDir(tag string) string {
	dir := strings.ReplaceAll(strings.TrimLeft(tag, "#"), "/", "-")
	if dir == "" || dir == "." || dir == ".." {
		return uncategorized
	}
	return dir
}

// Render returns the Markdown document for one item.
func Render(it model.SavedItem) string {
	var sb strings.Builder
	title := it.Title
	if title == "" {
		title = "Untitled"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if it.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", it.Description)
	}
	sb.WriteString("---\n\n")
	fmt.Fprintf(&sb, "**Tags:** %s\n\n", strings.Join(it.Tags, " "))
	if !it.IsTextOnly() {
		fmt.Fprintf(&sb, "**Source:** [%s](%s)\n\n", it.URL, it.URL)
	}
	fmt.Fprintf(&sb, "**Saved:** %s\n\n", it.Timestamp.Format(time.RFC3339))
	if it.Content != "" && it.Content != it.URL {
		fmt.Fprintf(&sb, "## Content\n\n%s\n", it.Content)
	}
	return sb.String()
}

func renderIndex(a *Archive) string {
	var sb strings.Builder
	sb.WriteString("# MindVault Export\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", a.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Total items: %d\n\n", a.ItemCount)
	sb.WriteString("## Tags\n\n")
	for _, dir := range a.TagDirs {
		fmt.Fprintf(&sb, "- [%s](./%s/)\n", dir, dir)
	}
	return sb.String()
}

// Zip packages the archive files with deflate compression.
func (a *Archive) Zip() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range a.Files {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Path,
			Method:   zip.Deflate,
			Modified: a.GeneratedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("add %s: %w", f.Path, err)
		}
		if _, err := w.Write(f.Body); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// Name returns the download name, e.g. mindvault-export-42-20261017090000.zip.
func (a *Archive) Name(label string) string {
	return fmt.Sprintf("mindvault-%s-%s-%s.zip", label, a.UserID, a.GeneratedAt.Format("20060102150405"))
}
