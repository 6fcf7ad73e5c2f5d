package discovery

import "context"

// InMemoryDiscovery serves a fixed set of documents.
type InMemoryDiscovery struct {
	files []*SDLFile
}

func NewInMemoryDiscovery(files ...SDLFile) *InMemoryDiscovery {
	d := &InMemoryDiscovery{}
	for _, f := range files {
		f := f
		d.files = append(d.files, &f)
	}
	return d
}

// ListFiles implements Discovery. The returned slice is a copy.
func (d *InMemoryDiscovery) ListFiles(ctx context.Context) ([]*SDLFile, error) {
	out := make([]*SDLFile, len(d.files))
	copy(out, d.files)
	return out, nil
}
