// Package git lists shader files that changed in a git working tree.
package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dotcommander/glsllint/internal/shader"
)

// GetStagedFiles returns absolute paths of staged shader files.
// Returns empty slice if not in a git repository.
func GetStagedFiles(rootPath string) ([]string, error) {
	if !IsGitRepo(rootPath) {
		return []string{}, nil
	}

	top, err := TopLevel(rootPath)
	if err != nil {
		return nil, err
	}

	// Paths are relative to the repository top level
	cmd := exec.Command("git", "diff", "--name-only", "--staged")
	cmd.Dir = rootPath
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git diff --staged failed: %w: %s", err, output)
	}

	return filterShaderFiles(string(output), top)
}

// GetChangedFiles returns absolute paths of all uncommitted shader changes
// (staged + unstaged). Returns empty slice if not in a git repository.
func GetChangedFiles(rootPath string) ([]string, error) {
	if !IsGitRepo(rootPath) {
		return []string{}, nil
	}

	top, err := TopLevel(rootPath)
	if err != nil {
		return nil, err
	}

	checkCmd := exec.Command("git", "rev-parse", "HEAD")
	checkCmd.Dir = rootPath
	if err := checkCmd.Run(); err != nil {
		// No commits yet - show all tracked files
		cmd := exec.Command("git", "ls-files", "--full-name")
		cmd.Dir = rootPath
		output, err := cmd.CombinedOutput()
		if err != nil {
			return nil, fmt.Errorf("git ls-files failed: %w: %s", err, output)
		}
		return filterShaderFiles(string(output), top)
	}

	cmd := exec.Command("git", "diff", "--name-only", "HEAD")
	cmd.Dir = rootPath
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git diff HEAD failed: %w: %s", err, output)
	}

	return filterShaderFiles(string(output), top)
}

// IsGitRepo checks if the given directory is within a git repository.
func IsGitRepo(rootPath string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = rootPath
	cmd.Stderr = nil
	return cmd.Run() == nil
}

// TopLevel returns the absolute path of the working tree containing rootPath.
func TopLevel(rootPath string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = rootPath
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse --show-toplevel failed: %w", err)
	}
	return filepath.FromSlash(strings.TrimSpace(string(output))), nil
}

// filterShaderFiles keeps the lines of git output that name existing
// files with a recognized shader naming convention. Returns absolute paths.
func filterShaderFiles(gitOutput, rootPath string) ([]string, error) {
	var files []string
	lines := strings.Split(strings.TrimSpace(gitOutput), "\n")

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !isShaderFile(line) {
			continue
		}

		absPath := filepath.Join(rootPath, filepath.FromSlash(line))

		// git reports deletions too
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			continue
		}

		files = append(files, absPath)
	}

	return files, nil
}

// isShaderFile reports whether a repository-relative path names a shader.
// Anything under node_modules is vendored and skipped.
func isShaderFile(relPath string) bool {
	for _, component := range strings.Split(filepath.ToSlash(relPath), "/") {
		if component == "node_modules" {
			return false
		}
	}
	return shader.IsShaderPath(relPath)
}
