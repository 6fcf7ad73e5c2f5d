// Package discovery locates GraphQL SDL documents and joins them into one
// schema text.
package discovery

import (
	"context"
	"sort"
	"strings"
)

// SDLFile is one schema document.
type SDLFile struct {
	Name    string
	Content string
}

type Discovery interface {
	ListFiles(ctx context.Context) ([]*SDLFile, error)
}

// Load lists the files of d and joins them in name order.
func Load(ctx context.Context, d Discovery) (string, error) {
	files, err := d.ListFiles(ctx)
	if err != nil {
		return "", err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	var b strings.Builder
	for i, f := range files {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.Content)
	}
	return b.String(), nil
}
