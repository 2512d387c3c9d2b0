package content

import (
	"bytes"
	"context"
	_ "embed"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is a fixed set of records: the fallback content for public pages and
// the initial data for a fresh store.
type Seed struct {
	Posts        []Post        `yaml:"posts"`
	Photos       []Photo       `yaml:"photos"`
	Publications []Publication `yaml:"publications"`
}

// LoadSeed decodes a YAML seed and orders its lists the way a store would.
func LoadSeed(r io.Reader) (Seed, error) {
	var s Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return Seed{}, errors.Wrap(err, "decode seed")
	}
	SortPosts(s.Posts)
	SortPhotos(s.Photos)
	SortPublications(s.Publications)
	return s, nil
}

// DefaultSeed returns the seed embedded in the binary.
func DefaultSeed() Seed {
	s, err := LoadSeed(bytes.NewReader(defaultSeed))
	if err != nil {
		panic(err)
	}
	return s
}

// Apply inserts every seed record into st and returns how many were written.
// It stops at the first failure.
func (s Seed) Apply(ctx context.Context, st Store) (int, error) {
	n := 0
	// Insert oldest first so stores ordering by creation time list the seed
	// in the same order it is written.
	for i := len(s.Posts) - 1; i >= 0; i-- {
		if _, err := st.CreatePost(ctx, s.Posts[i]); err != nil {
			return n, errors.Wrapf(err, "seed post %q", s.Posts[i].Title)
		}
		n++
	}
	for i := len(s.Photos) - 1; i >= 0; i-- {
		if _, err := st.CreatePhoto(ctx, s.Photos[i]); err != nil {
			return n, errors.Wrapf(err, "seed photo %q", s.Photos[i].Description)
		}
		n++
	}
	for i := len(s.Publications) - 1; i >= 0; i-- {
		if _, err := st.CreatePublication(ctx, s.Publications[i]); err != nil {
			return n, errors.Wrapf(err, "seed publication %q", s.Publications[i].Title)
		}
		n++
	}
	return n, nil
}
