package discovery

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/dotcommander/glsllint/internal/shader"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func relPaths(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	return out
}

// TestDiscoverFiles covers every naming convention and the default excludes.
func TestDiscoverFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"blur.frag":                      "void main(){}",
		"blur.vert":                      "void main(){}",
		"fx/post.fsh":                    "void main(){}",
		"fx/sky.v.glsl":                  "void main(){}",
		"fx/sky_f.glsl":                  "void main(){}",
		"fx/terrain.tc.glsl":             "void main(){}",
		"compute/particles.cs":           "void main(){}",
		"lib/common.glsl":                "float x;",
		"README.md":                      "# shaders",
		"node_modules/glsl-noise/a.frag": "void main(){}",
		".git/objects/aa.vert":           "void main(){}",
	})

	files, err := NewFileDiscovery(root, false).DiscoverFiles()
	if err != nil {
		t.Fatalf("DiscoverFiles() error = %v", err)
	}

	got := relPaths(files)
	want := []string{
		"blur.frag",
		"blur.vert",
		"compute/particles.cs",
		"fx/post.fsh",
		"fx/sky.v.glsl",
		"fx/sky_f.glsl",
		"fx/terrain.tc.glsl",
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("DiscoverFiles() = %v, want %v", got, want)
	}

	for _, f := range files {
		if !filepath.IsAbs(f.Path) {
			t.Errorf("Path %q is not absolute", f.Path)
		}
		if f.Stage.IsZero() {
			t.Errorf("%s has no stage", f.RelPath)
		}
	}
	if files[0].Stage != shader.Fragment {
		t.Errorf("blur.frag stage = %s, want fragment", files[0].Stage)
	}
}

func TestDiscoverFilesExclude(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/a.frag":       "",
		"vendor/b.frag":    "",
		"build/gen/c.vert": "",
	})

	files, err := NewFileDiscovery(root, false, "vendor/**", "build/**").DiscoverFiles()
	if err != nil {
		t.Fatalf("DiscoverFiles() error = %v", err)
	}
	if got := relPaths(files); len(got) != 1 || got[0] != "src/a.frag" {
		t.Errorf("DiscoverFiles() = %v, want [src/a.frag]", got)
	}
}

func TestDiscoverFilesSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{"real.frag": "void main(){}"})
	if err := os.Symlink(filepath.Join(root, "real.frag"), filepath.Join(root, "link.vert")); err != nil {
		t.Fatal(err)
	}

	files, err := NewFileDiscovery(root, false).DiscoverFiles()
	if err != nil {
		t.Fatal(err)
	}
	if got := relPaths(files); len(got) != 1 || got[0] != "real.frag" {
		t.Errorf("without followSymlinks got %v", got)
	}

	files, err = NewFileDiscovery(root, true).DiscoverFiles()
	if err != nil {
		t.Fatal(err)
	}
	if got := relPaths(files); len(got) != 2 {
		t.Errorf("with followSymlinks got %v, want both files", got)
	}
}

func TestExpandPaths(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"shaders/a.frag": "",
		"shaders/a.vert": "",
		"notes.txt":      "",
	})

	single := filepath.Join(root, "notes.txt")
	got, err := ExpandPaths([]string{filepath.Join(root, "shaders"), single, single}, false, nil)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		filepath.Join(root, "shaders", "a.frag"),
		filepath.Join(root, "shaders", "a.vert"),
		single,
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ExpandPaths() = %v, want %v", got, want)
	}
}

func TestValidateFilePath(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"ok.frag":    "void main(){}",
		"empty.vert": "",
	})
	if err := os.WriteFile(filepath.Join(root, "bin.frag"), []byte{0x7f, 0, 1, 2}, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"regular file", "ok.frag", ""},
		{"empty file", "empty.vert", ""},
		{"missing", "missing.frag", "file not found"},
		{"directory", ".", "is a directory"},
		{"binary", "bin.frag", "binary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			abs, err := ValidateFilePath(filepath.Join(root, tt.path))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateFilePath() error = %v", err)
				}
				if !filepath.IsAbs(abs) {
					t.Errorf("ValidateFilePath() = %q, want absolute", abs)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateFilePath() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
