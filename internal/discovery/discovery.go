package discovery

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dotcommander/glsllint/internal/shader"
)

// DefaultPatterns are the doublestar globs covering every stage naming
// convention. Matches are confirmed with shader.IsShaderPath.
var DefaultPatterns = []string{
	"**/*.{v,f,g}.glsl",
	"**/*_{v,f,g}.glsl",
	"**/*.{vs,tc,te,gs,fs,cs}.glsl",
	"**/*_{vs,tc,te,gs,fs,cs}.glsl",
	"**/*.{v,g,f}sh",
	"**/*.{vs,tc,te,gs,fs,cs}",
	"**/*.{vert,frag,geom,tesc,tese,comp}",
}

// DefaultExclude lists directories never searched for shaders.
var DefaultExclude = []string{
	"**/node_modules/**",
	"**/.git/**",
}

// ValidateFilePath performs comprehensive validation of a file path for linting.
//
// This function checks all preconditions required before linting a file:
//   - File exists
//   - Path is a file (not directory)
//   - File is not binary
//
// Empty files are accepted: an empty shader is still a shader the validator
// has an opinion about.
func ValidateFilePath(path string) (absPath string, err error) {
	absPath, err = filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", absPath)
		}
		if os.IsPermission(err) {
			return "", fmt.Errorf("permission denied: %s", absPath)
		}
		return "", fmt.Errorf("cannot access file: %s: %w", absPath, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		realPath, evalErr := filepath.EvalSymlinks(absPath)
		if evalErr != nil {
			return "", fmt.Errorf("cannot resolve symlink %s: %w", absPath, evalErr)
		}
		info, err = os.Stat(realPath)
		if err != nil {
			return "", fmt.Errorf("symlink target inaccessible: %s: %w", realPath, err)
		}
	}

	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", absPath)
	}

	if info.Size() == 0 {
		return absPath, nil
	}

	f, err := os.Open(absPath)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %s: %w", absPath, err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %s: %w", absPath, err)
	}

	if bytes.Contains(buf[:n], []byte{0}) {
		return "", fmt.Errorf("file appears to be binary, not text: %s", absPath)
	}

	return absPath, nil
}

// File represents a discovered shader file
type File struct {
	Path    string
	RelPath string
	Size    int64
	Stage   shader.Stage
}

// FileDiscovery manages file discovery operations
type FileDiscovery struct {
	rootPath       string
	followSymlinks bool
	exclude        []string
}

// NewFileDiscovery creates a new FileDiscovery instance. Exclude patterns
// are doublestar globs relative to rootPath and are added to DefaultExclude.
func NewFileDiscovery(rootPath string, followSymlinks bool, exclude ...string) *FileDiscovery {
	return &FileDiscovery{
		rootPath:       rootPath,
		followSymlinks: followSymlinks,
		exclude:        append(append([]string{}, DefaultExclude...), exclude...),
	}
}

// DiscoverFiles finds every shader file under the root, sorted by path.
func (fd *FileDiscovery) DiscoverFiles() ([]File, error) {
	return fd.DiscoverFilesWithPatterns(DefaultPatterns)
}

// DiscoverFilesWithPatterns finds shader files matching the given patterns.
func (fd *FileDiscovery) DiscoverFilesWithPatterns(patterns []string) ([]File, error) {
	seen := make(map[string]bool)
	var files []File

	fsys := os.DirFS(fd.rootPath)
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("error evaluating pattern %s: %w", pattern, err)
		}

		for _, match := range matches {
			if seen[match] || fd.isExcluded(match) {
				continue
			}
			seen[match] = true

			if f, ok := fd.processMatch(match); ok {
				files = append(files, f)
			}
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// isExcluded reports whether a root-relative, slash-separated path matches
// an exclude pattern.
func (fd *FileDiscovery) isExcluded(relPath string) bool {
	for _, pattern := range fd.exclude {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
	}
	return false
}

// processMatch converts a glob match into a File, returning false if the match should be skipped.
func (fd *FileDiscovery) processMatch(match string) (File, bool) {
	tokens, err := shader.Classify(match)
	if err != nil {
		return File{}, false
	}

	fullPath := filepath.Join(fd.rootPath, filepath.FromSlash(match))

	info, err := os.Lstat(fullPath)
	if err != nil || info.IsDir() {
		return File{}, false
	}

	if info.Mode()&os.ModeSymlink != 0 {
		resolvedInfo, ok := fd.resolveSymlink(fullPath)
		if !ok {
			return File{}, false
		}
		info = resolvedInfo
	}

	return File{
		Path:    fullPath,
		RelPath: match,
		Size:    info.Size(),
		Stage:   tokens.Stage,
	}, true
}

// resolveSymlink follows a symlink if configured, returning the target info.
// Returns false if the symlink should be skipped.
func (fd *FileDiscovery) resolveSymlink(fullPath string) (fs.FileInfo, bool) {
	if !fd.followSymlinks {
		return nil, false
	}

	realPath, err := filepath.EvalSymlinks(fullPath)
	if err != nil {
		return nil, false
	}

	root, err := filepath.EvalSymlinks(fd.rootPath)
	if err != nil {
		root = fd.rootPath
	}
	if realPath != root && !strings.HasPrefix(realPath, root+string(filepath.Separator)) {
		return nil, false
	}

	info, err := os.Stat(realPath)
	if err != nil || info.IsDir() {
		return nil, false
	}

	return info, true
}

// ExpandPaths turns command-line arguments into shader file paths.
// Directories are searched with DiscoverFiles; files are kept as given, even
// if their names are not recognized, so the caller can report them.
func ExpandPaths(paths []string, followSymlinks bool, exclude []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			add(p)
			continue
		}

		files, err := NewFileDiscovery(p, followSymlinks, exclude...).DiscoverFiles()
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f.Path)
		}
	}

	return out, nil
}
