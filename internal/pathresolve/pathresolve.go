// Package pathresolve maps LCOV SF values to absolute source paths, following
// Bazel's external/<repo> convenience symlinks into the real repository.
package pathresolve

import (
	"errors"
	"io/fs"
	"path/filepath"
	"regexp"

	"github.com/spf13/afero"

	"github.com/zjy-dev/bazel-lcov/internal/logger"
)

// maxLinkHops bounds symlink chains on filesystems without native realpath.
const maxLinkHops = 40

var errTooManyLinks = errors.New("too many levels of symbolic links")

var reExternal = regexp.MustCompile(`^external/([^/]+)/(.+)$`)

// Resolver resolves SF values against a base folder.
type Resolver struct {
	fs afero.Fs
}

// New creates a Resolver over fsys. A nil fsys means the host filesystem.
func New(fsys afero.Fs) *Resolver {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Resolver{fs: fsys}
}

// Resolve returns the absolute path for sfValue. For external/<repo>/<rest>
// it prefers <realpath(base/external/<repo>)>/<rest> when that file exists;
// every failure along that route silently falls back to plain resolution.
func (r *Resolver) Resolve(baseFolder, sfValue string) string {
	if m := reExternal.FindStringSubmatch(filepath.ToSlash(sfValue)); m != nil {
		repoName, rest := m[1], m[2]
		link := filepath.Join(baseFolder, "external", repoName)
		if repoPath, err := r.realPath(link); err == nil {
			candidate := filepath.Join(repoPath, filepath.FromSlash(rest))
			if ok, err := afero.Exists(r.fs, candidate); err == nil && ok {
				return absolute(candidate)
			}
			logger.Debug("pathresolve: %s not found in %s, using default path", rest, repoPath)
		} else {
			logger.Debug("pathresolve: cannot resolve %s: %v", link, err)
		}
	}
	return absolute(resolveAgainst(baseFolder, sfValue))
}

// realPath resolves every symlink in path. On the host filesystem this is
// filepath.EvalSymlinks; otherwise only the final component's link chain is
// followed, via afero.LinkReader when the filesystem supports it.
func (r *Resolver) realPath(path string) (string, error) {
	if _, ok := r.fs.(*afero.OsFs); ok {
		return filepath.EvalSymlinks(path)
	}

	if _, err := r.fs.Stat(path); err != nil {
		return "", err
	}
	reader, ok := r.fs.(afero.LinkReader)
	if !ok {
		return path, nil
	}

	current := path
	for i := 0; i < maxLinkHops; i++ {
		target, err := reader.ReadlinkIfPossible(current)
		if err != nil {
			// Not a link (or links unsupported): current is the real path.
			return current, nil
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(current), target)
		}
		current = filepath.Clean(target)
	}
	return "", &fs.PathError{Op: "realpath", Path: path, Err: errTooManyLinks}
}

func resolveAgainst(baseFolder, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(baseFolder, p)
}

func absolute(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
