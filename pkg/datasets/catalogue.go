// Package datasets resolves named graphs from repository catalogues and
// loads them from the local graph cache.
package datasets

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-graphwalk/pkg/validation"
)

var (
	ErrUnknownRepository = errors.New("unknown repository")
	ErrUnknownGraph      = errors.New("unknown graph")
	ErrDuplicateGraph    = errors.New("graph listed twice")
)

//go:embed catalogue/*.yaml
var embedded embed.FS

// maxSuggestions bounds the names offered when a lookup misses.
const maxSuggestions = 3

// Format describes the columns of a repository's edge lists.
type Format struct {
	Separator    string `yaml:"separator" validate:"omitempty,separator"`
	Header       bool   `yaml:"header"`
	Sources      string `yaml:"sources" validate:"required,column"`
	Destinations string `yaml:"destinations" validate:"required,column"`
	Weights      string `yaml:"weights,omitempty" validate:"omitempty,column"`
	EdgeTypes    string `yaml:"edge_types,omitempty" validate:"omitempty,column"`
}

// Stats are the characteristics recorded for a graph loaded undirected.
type Stats struct {
	Nodes             int     `yaml:"nodes" validate:"gte=1"`
	Edges             uint64  `yaml:"edges" validate:"gte=1"`
	SelfLoops         uint64  `yaml:"self_loops"`
	Density           float64 `yaml:"density" validate:"gte=0,lte=1"`
	Components        int     `yaml:"components" validate:"gte=1"`
	LargestComponent  int     `yaml:"largest_component"`
	SmallestComponent int     `yaml:"smallest_component"`
	MedianDegree      uint64  `yaml:"median_degree"`
	MeanDegree        float64 `yaml:"mean_degree"`
}

// Entry is one retrievable graph. Repository level fields are copied into
// every entry when the catalogue is loaded.
type Entry struct {
	Name    string `yaml:"name" validate:"required,identifier"`
	Species string `yaml:"species"`
	Taxon   uint64 `yaml:"taxon" validate:"required"`
	Stats   `yaml:",inline"`

	Repository string `yaml:"-"`
	Version    string `yaml:"-"`
	Format     Format `yaml:"-" validate:"-"`

	urlTemplate  string
	fileTemplate string
}

func (e Entry) expand(template string) string {
	return strings.NewReplacer(
		"{name}", e.Name,
		"{taxon}", strconv.FormatUint(e.Taxon, 10),
		"{version}", e.Version,
	).Replace(template)
}

// URL is where the repository publishes the edge list.
func (e Entry) URL() string { return e.expand(e.urlTemplate) }

// FileName is the name of the edge list inside the cache directory.
func (e Entry) FileName() string { return e.expand(e.fileTemplate) }

func (e Entry) String() string {
	return fmt.Sprintf("%s/%s (v%s, %d nodes, %d edges)", e.Repository, e.Name, e.Version, e.Nodes, e.Edges)
}

// repositoryFile is the YAML layout of one catalogue file.
type repositoryFile struct {
	Repository string  `yaml:"repository" validate:"required,identifier"`
	Version    string  `yaml:"version" validate:"required,identifier"`
	URL        string  `yaml:"url" validate:"required"`
	File       string  `yaml:"file" validate:"required"`
	Format     Format  `yaml:"format"`
	Graphs     []Entry `yaml:"graphs" validate:"required,min=1,dive"`
}

type repository struct {
	entries []Entry
	byName  map[string]int
}

// Catalogue indexes the graphs of one or more repositories. It is read-only
// once loaded and safe for concurrent use.
type Catalogue struct {
	repositories map[string]*repository
}

var defaultCatalogue = sync.OnceValues(func() (*Catalogue, error) {
	return LoadFS(embedded, "catalogue/*.yaml")
})

// Default returns the catalogue shipped with the package.
func Default() (*Catalogue, error) {
	return defaultCatalogue()
}

// LoadFS reads every catalogue file of fsys matching pattern.
func LoadFS(fsys fs.FS, pattern string) (*Catalogue, error) {
	names, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}
	c := &Catalogue{repositories: make(map[string]*repository)}
	for _, name := range names {
		f, err := fsys.Open(name)
		if err != nil {
			return nil, err
		}
		err = c.add(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path.Base(name), err)
		}
	}
	return c, nil
}

func (c *Catalogue) add(r io.Reader) error {
	var file repositoryFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return err
	}
	if err := validation.NewConfigValidator("catalogue").Struct(&file).Validate(); err != nil {
		return err
	}

	key := strings.ToLower(file.Repository)
	repo, ok := c.repositories[key]
	if !ok {
		repo = &repository{byName: make(map[string]int)}
		c.repositories[key] = repo
	}
	for _, e := range file.Graphs {
		lower := strings.ToLower(e.Name)
		if _, dup := repo.byName[lower]; dup {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateGraph, file.Repository, e.Name)
		}
		e.Repository = file.Repository
		e.Version = file.Version
		e.Format = file.Format
		e.urlTemplate = file.URL
		e.fileTemplate = file.File
		repo.byName[lower] = len(repo.entries)
		repo.entries = append(repo.entries, e)
	}
	return nil
}

// LookupError reports a missed lookup with the closest known names.
type LookupError struct {
	Repository  string
	Name        string
	Suggestions []string
	Err         error
}

func (e *LookupError) Error() string {
	subject := e.Repository
	if e.Name != "" {
		subject += "/" + e.Name
	}
	msg := fmt.Sprintf("%v: %s", e.Err, subject)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *LookupError) Unwrap() error { return e.Err }

func suggest(pattern string, names []string) []string {
	matches := fuzzy.Find(pattern, names)
	out := make([]string, 0, maxSuggestions)
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

// Repositories returns the repository names in sorted order.
func (c *Catalogue) Repositories() []string {
	out := make([]string, 0, len(c.repositories))
	for _, repo := range c.repositories {
		out = append(out, repo.entries[0].Repository)
	}
	slices.Sort(out)
	return out
}

func (c *Catalogue) repository(name string) (*repository, error) {
	repo, ok := c.repositories[strings.ToLower(name)]
	if !ok {
		return nil, &LookupError{
			Repository:  name,
			Suggestions: suggest(name, c.Repositories()),
			Err:         ErrUnknownRepository,
		}
	}
	return repo, nil
}

// List returns the graphs of a repository in catalogue order.
func (c *Catalogue) List(repositoryName string) ([]Entry, error) {
	repo, err := c.repository(repositoryName)
	if err != nil {
		return nil, err
	}
	return slices.Clone(repo.entries), nil
}

// Lookup finds a graph by name, ignoring case.
func (c *Catalogue) Lookup(repositoryName, name string) (Entry, error) {
	repo, err := c.repository(repositoryName)
	if err != nil {
		return Entry{}, err
	}
	if i, ok := repo.byName[strings.ToLower(name)]; ok {
		return repo.entries[i], nil
	}
	names := make([]string, len(repo.entries))
	for i, e := range repo.entries {
		names[i] = e.Name
	}
	return Entry{}, &LookupError{
		Repository:  repositoryName,
		Name:        name,
		Suggestions: suggest(name, names),
		Err:         ErrUnknownGraph,
	}
}
