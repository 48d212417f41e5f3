package project

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ConfigFiles are the glsllint config file names, in lookup order.
var ConfigFiles = []string{".glsllintrc.json", ".glsllintrc.yaml", ".glsllintrc.yml"}

// Info contains information about the detected project.
// Named 'Info' instead of 'ProjectInfo' to avoid stuttering (project.Info vs project.ProjectInfo).
type Info struct {
	Root       string
	HasGit     bool
	ConfigFile string
	// UsesGlslify is set when package.json depends on glslify.
	UsesGlslify bool
	Type        string
}

// FindProjectRoot searches for a project root starting from the given path
// and climbing up the directory tree if needed.
func FindProjectRoot(startPath string) (string, error) {
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", err
	}

	if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
		absPath = filepath.Dir(absPath)
	}

	currentDir := absPath
	for {
		if isProjectRoot(currentDir) {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)
		if parent == currentDir {
			break
		}
		currentDir = parent
	}

	// Default to the start directory if no project root found
	return absPath, nil
}

// isProjectRoot determines if a directory is a project root
func isProjectRoot(path string) bool {
	if exists(filepath.Join(path, ".git")) {
		return true
	}

	if FindConfigFile(path) != "" {
		return true
	}

	// Shader packages using glslify are npm packages.
	return exists(filepath.Join(path, "package.json"))
}

// FindConfigFile returns the first glsllint config file in dir, or "".
func FindConfigFile(dir string) string {
	for _, name := range ConfigFiles {
		p := filepath.Join(dir, name)
		if exists(p) {
			return p
		}
	}
	return ""
}

// Detect detects project information at the given path.
// Named 'Detect' instead of 'DetectProjectInfo' to avoid stuttering.
func Detect(rootPath string) (*Info, error) {
	info := &Info{
		Root:       rootPath,
		HasGit:     exists(filepath.Join(rootPath, ".git")),
		ConfigFile: FindConfigFile(rootPath),
		Type:       "unknown",
	}

	if pkg, err := os.ReadFile(filepath.Join(rootPath, "package.json")); err == nil {
		info.Type = "node"
		info.UsesGlslify = dependsOnGlslify(pkg)
	}

	return info, nil
}

// packageJSON holds the dependency sections of package.json.
type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func dependsOnGlslify(data []byte) bool {
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return false
	}
	_, dep := pkg.Dependencies["glslify"]
	_, dev := pkg.DevDependencies["glslify"]
	return dep || dev
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
