package wildcard

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/deployer/pkg/errors"
	"github.com/arthur-debert/deployer/pkg/logging"
	"github.com/arthur-debert/deployer/pkg/types"
)

// Regulator may redirect a candidate directory before it is listed.
type Regulator interface {
	Regulate(dir string) (string, bool)
}

// RegulatorFunc adapts a function to Regulator.
type RegulatorFunc func(dir string) (string, bool)

func (f RegulatorFunc) Regulate(dir string) (string, bool) { return f(dir) }

// Expander resolves wildcard paths against a filesystem.
type Expander struct {
	fs         types.FS
	expansion  bool
	regulators []Regulator
}

// Option configures an Expander.
type Option func(*Expander)

// WithExpansion appends literal segments after a wildcard to token suffixes.
func WithExpansion(enabled bool) Option {
	return func(e *Expander) { e.expansion = enabled }
}

// WithRegulator adds a directory regulator. The first one that reports a
// rewrite wins.
func WithRegulator(r Regulator) Option {
	return func(e *Expander) {
		if r != nil {
			e.regulators = append(e.regulators, r)
		}
	}
}

// New creates an expander over fsys.
func New(fsys types.FS, opts ...Option) *Expander {
	e := &Expander{fs: fsys}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// With returns a copy of the expander with extra options applied.
func (e *Expander) With(opts ...Option) *Expander {
	c := &Expander{fs: e.fs, expansion: e.expansion}
	c.regulators = append(c.regulators, e.regulators...)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasWildcard reports whether s contains '*' or '?'.
func HasWildcard(s string) bool {
	return strings.ContainsAny(s, "*?")
}

// Files expands path into file tokens. A literal file name is joined to
// every candidate directory whether or not it exists, so callers can report
// the missing ones. Only cancellation produces an error.
func (e *Expander) Files(ctx context.Context, path string) ([]Token, error) {
	if path == "" {
		return nil, nil
	}
	dir, name := filepath.Split(path)
	if name == "" {
		return nil, nil
	}

	dirs, err := e.directories(ctx, dir)
	if err != nil {
		return nil, err
	}

	logger := logging.GetLogger("wildcard")
	var tokens []Token
	for _, d := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCanceled, "expanding files")
		}
		d = d.WithPath(e.regulate(d.Path))

		if !HasWildcard(name) {
			tokens = append(tokens, d.Join(name))
			continue
		}

		entries, err := e.fs.ReadDir(d.Path)
		if err != nil {
			logger.Trace().Err(err).Str("dir", d.Path).Msg("Skipping unreadable directory")
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if ok, _ := filepath.Match(name, entry.Name()); ok {
				tokens = append(tokens, d.Join(entry.Name()))
			}
		}
	}

	logger.Trace().Str("path", path).Int("count", len(tokens)).Msg("Expanded files")
	return tokens, nil
}

// Directories expands dir into directory tokens. Without wildcard segments
// the result is the single literal directory, whether or not it exists.
func (e *Expander) Directories(ctx context.Context, dir string) ([]Token, error) {
	return e.directories(ctx, dir)
}

func (e *Expander) directories(ctx context.Context, dir string) ([]Token, error) {
	if dir == "" {
		return nil, nil
	}
	dir = filepath.Clean(dir)
	segments := strings.Split(filepath.ToSlash(dir), "/")

	var (
		candidates []Token
		expanded   bool
		afterDeep  bool
	)

	for i, segment := range segments {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCanceled, "expanding directories")
		}

		switch {
		case segment == "**":
			if !expanded {
				candidates = []Token{NewToken(joinSegments(segments[:i]), "")}
			}
			next, err := e.deep(ctx, candidates)
			if err != nil {
				return nil, err
			}
			candidates, expanded, afterDeep = next, true, true

		case HasWildcard(segment):
			if !expanded {
				candidates = []Token{NewToken(joinSegments(segments[:i]), "")}
			}
			next, err := e.shallow(ctx, candidates, segment)
			if err != nil {
				return nil, err
			}
			candidates, expanded, afterDeep = next, true, false

		case expanded && segment != "":
			if afterDeep {
				kept := candidates[:0:0]
				for _, c := range candidates {
					if suffixEndsWith(c.Suffix, segment) {
						kept = append(kept, c)
					}
				}
				candidates = kept
				afterDeep = false
				continue
			}
			for j, c := range candidates {
				c = c.Join(segment)
				if e.expansion {
					c = c.AppendSuffix(segment)
				}
				candidates[j] = c
			}
		}
	}

	if !expanded {
		return []Token{NewToken(dir, "")}, nil
	}
	return candidates, nil
}

// deep lists every directory below each candidate, the candidate included.
func (e *Expander) deep(ctx context.Context, candidates []Token) ([]Token, error) {
	var out []Token
	for _, c := range candidates {
		if !e.isDir(c.Path) {
			continue
		}
		out = append(out, c)
		err := e.walkDirs(ctx, c.Path, func(path, rel string) {
			out = append(out, NewToken(path, c.Suffix+"/"+rel))
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// shallow lists the children of each candidate matching pattern.
func (e *Expander) shallow(ctx context.Context, candidates []Token, pattern string) ([]Token, error) {
	var out []Token
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCanceled, "expanding directories")
		}
		entries, err := e.fs.ReadDir(c.Path)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			if ok, _ := filepath.Match(pattern, entry.Name()); ok {
				out = append(out, NewToken(filepath.Join(c.Path, entry.Name()), c.Suffix+"/"+entry.Name()))
			}
		}
	}
	return out, nil
}

func (e *Expander) walkDirs(ctx context.Context, root string, visit func(path, rel string)) error {
	var walk func(dir, rel string) error
	walk = func(dir, rel string) error {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCanceled, "walking directories")
		}
		entries, err := e.fs.ReadDir(dir)
		if err != nil {
			return nil
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			childRel := entry.Name()
			if rel != "" {
				childRel = rel + "/" + entry.Name()
			}
			visit(path, childRel)
			if err := walk(path, childRel); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root, "")
}

func (e *Expander) regulate(dir string) string {
	for _, r := range e.regulators {
		if out, ok := r.Regulate(dir); ok {
			logger := logging.GetLogger("wildcard")
			logger.Trace().Str("from", dir).Str("to", out).Msg("Regulated directory")
			return out
		}
	}
	return dir
}

func (e *Expander) isDir(path string) bool {
	info, err := e.fs.Stat(path)
	return err == nil && info.IsDir()
}

func joinSegments(segments []string) string {
	joined := strings.Join(segments, "/")
	if joined == "" || strings.HasSuffix(joined, ":") {
		joined += "/"
	}
	return filepath.FromSlash(joined)
}
