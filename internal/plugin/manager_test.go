package plugin

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// writeManifest creates dir/<subdir>/plugin.json.
func writeManifest(t *testing.T, dir, subdir string, manifest Manifest) string {
	t.Helper()

	pluginDir := filepath.Join(dir, subdir)
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}

	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, ManifestFile), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return pluginDir
}

func TestManager_Discover(t *testing.T) {
	tmpDir := t.TempDir()

	pluginDir := writeManifest(t, tmpDir, "announce", Manifest{
		Name:        "announce",
		Version:     "1.0.0",
		Description: "Speaks every tenth squat",
		Executable:  "announce.sh",
		Kinds:       []string{"squat"},
		Every:       10,
	})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	plugin := plugins[0]
	if plugin.Manifest.Name != "announce" {
		t.Errorf("expected plugin name 'announce', got %q", plugin.Manifest.Name)
	}
	if plugin.Manifest.Every != 10 || len(plugin.Manifest.Kinds) != 1 {
		t.Errorf("unexpected subscription: %+v", plugin.Manifest)
	}
	if plugin.Path != pluginDir {
		t.Errorf("expected path %q, got %q", pluginDir, plugin.Path)
	}
	if plugin.Executable != filepath.Join(pluginDir, "announce.sh") {
		t.Errorf("unexpected executable %q", plugin.Executable)
	}
}

func TestManager_Discover_SortedAndRescanned(t *testing.T) {
	tmpDir := t.TempDir()

	for _, name := range []string{"zeta", "alpha"} {
		writeManifest(t, tmpDir, name, Manifest{Name: name, Executable: name})
	}

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 2 || plugins[0].Manifest.Name != "alpha" {
		t.Fatalf("expected [alpha zeta], got %d plugins", len(plugins))
	}

	if err := os.RemoveAll(filepath.Join(tmpDir, "zeta")); err != nil {
		t.Fatal(err)
	}
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if len(manager.List()) != 1 {
		t.Errorf("expected removed plugin to disappear on rescan")
	}
}

func TestManager_Discover_SkipsInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	badDir := filepath.Join(tmpDir, "bad-json")
	if err := os.MkdirAll(badDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(badDir, ManifestFile), []byte("not valid json"), 0644); err != nil {
		t.Fatal(err)
	}

	writeManifest(t, tmpDir, "no-executable", Manifest{Name: "no-executable"})

	if err := os.MkdirAll(filepath.Join(tmpDir, "no-manifest"), 0755); err != nil {
		t.Fatal(err)
	}

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed unexpectedly: %v", err)
	}

	if plugins := manager.List(); len(plugins) != 0 {
		t.Fatalf("expected invalid plugins to be skipped, got %d", len(plugins))
	}
}

func TestManager_Discover_MissingDir(t *testing.T) {
	for _, dir := range []string{"", "/path/that/does/not/exist"} {
		manager := NewManager(dir)
		if err := manager.Discover(); err != nil {
			t.Fatalf("Discover(%q) failed: %v", dir, err)
		}
		if len(manager.List()) != 0 {
			t.Fatalf("expected 0 plugins for %q", dir)
		}
	}
}

func TestManager_Get(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, "my-plugin", Manifest{Name: "my-plugin", Version: "2.0.0", Executable: "run"})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugin, err := manager.Get("my-plugin")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if plugin.Manifest.Version != "2.0.0" {
		t.Errorf("expected version '2.0.0', got %q", plugin.Manifest.Version)
	}

	if _, err := manager.Get("nonexistent-plugin"); err != ErrPluginNotFound {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestManager_Subscribers(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, "all", Manifest{Name: "all", Executable: "run"})
	writeManifest(t, tmpDir, "jumps", Manifest{Name: "jumps", Executable: "run", Kinds: []string{"jump"}})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	if got := manager.Subscribers("jump", 1); len(got) != 2 {
		t.Errorf("expected both plugins for a jump, got %d", len(got))
	}
	got := manager.Subscribers("bend", 1)
	if len(got) != 1 || got[0].Manifest.Name != "all" {
		t.Errorf("expected only 'all' for a bend, got %d plugins", len(got))
	}
}

func TestManager_PluginDir(t *testing.T) {
	pluginDir := "/path/to/plugins"
	manager := NewManager(pluginDir)

	if manager.PluginDir() != pluginDir {
		t.Errorf("expected plugin dir %q, got %q", pluginDir, manager.PluginDir())
	}
}

func TestPlugin_Wants(t *testing.T) {
	tests := []struct {
		name     string
		manifest Manifest
		kind     string
		count    int
		want     bool
	}{
		{name: "all kinds", manifest: Manifest{}, kind: "bend", count: 1, want: true},
		{name: "zero count", manifest: Manifest{}, kind: "bend", count: 0, want: false},
		{name: "kind filtered in", manifest: Manifest{Kinds: []string{"jump", "squat"}}, kind: "squat", count: 3, want: true},
		{name: "kind filtered out", manifest: Manifest{Kinds: []string{"jump"}}, kind: "squat", count: 3, want: false},
		{name: "every tenth hit", manifest: Manifest{Every: 10}, kind: "jump", count: 20, want: true},
		{name: "every tenth miss", manifest: Manifest{Every: 10}, kind: "jump", count: 21, want: false},
		{name: "every one", manifest: Manifest{Every: 1}, kind: "jump", count: 7, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Plugin{Manifest: tt.manifest}
			if got := p.Wants(tt.kind, tt.count); got != tt.want {
				t.Errorf("Wants(%q, %d) = %v, want %v", tt.kind, tt.count, got, tt.want)
			}
		})
	}
}
