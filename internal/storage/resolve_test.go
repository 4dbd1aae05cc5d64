package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// isolateEnv points HOME and the cloud-provider variables at a temp
// directory so resolution only sees what the test sets up.
func isolateEnv(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("OneDrive", "")
	t.Setenv("ONEDRIVE", "")
	t.Setenv("OneDriveConsumer", "")
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", filepath.Join(home, "AppData", "Roaming"))
		t.Setenv("LOCALAPPDATA", filepath.Join(home, "AppData", "Local"))
	}
	return home
}

func TestResolve_CustomWins(t *testing.T) {
	home := isolateEnv(t)

	// Even with a Dropbox folder present, custom takes priority.
	if err := os.MkdirAll(filepath.Join(home, "Dropbox"), 0755); err != nil {
		t.Fatalf("Failed to create Dropbox dir: %v", err)
	}

	custom := filepath.Join(home, "my-notes")
	loc, err := Resolve(custom)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if loc.Provider != ProviderCustom {
		t.Errorf("Provider = %q, want %q", loc.Provider, ProviderCustom)
	}
	if loc.Dir != custom {
		t.Errorf("Dir = %q, want %q", loc.Dir, custom)
	}
	// A custom folder that does not exist is created.
	if st, err := os.Stat(custom); err != nil || !st.IsDir() {
		t.Errorf("custom folder was not created: %v", err)
	}
}

func TestResolve_DropboxConventional(t *testing.T) {
	home := isolateEnv(t)

	dropbox := filepath.Join(home, "Dropbox")
	if err := os.MkdirAll(dropbox, 0755); err != nil {
		t.Fatalf("Failed to create Dropbox dir: %v", err)
	}

	loc, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if loc.Provider != ProviderDropbox {
		t.Errorf("Provider = %q, want %q", loc.Provider, ProviderDropbox)
	}
	if loc.Dir != filepath.Join(dropbox, appFolderName) {
		t.Errorf("Dir = %q, want app folder under Dropbox", loc.Dir)
	}
}

func TestResolve_DropboxInfoJSON(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix info.json location")
	}
	home := isolateEnv(t)

	syncRoot := filepath.Join(home, "Sync", "DropboxWork")
	if err := os.MkdirAll(syncRoot, 0755); err != nil {
		t.Fatalf("Failed to create sync root: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(home, ".dropbox"), 0755); err != nil {
		t.Fatalf("Failed to create .dropbox dir: %v", err)
	}
	info := `{"personal": {"path": "` + syncRoot + `"}}`
	if err := os.WriteFile(filepath.Join(home, ".dropbox", "info.json"), []byte(info), 0644); err != nil {
		t.Fatalf("Failed to write info.json: %v", err)
	}

	loc, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if loc.Provider != ProviderDropbox {
		t.Errorf("Provider = %q, want %q", loc.Provider, ProviderDropbox)
	}
	if loc.Dir != filepath.Join(syncRoot, appFolderName) {
		t.Errorf("Dir = %q, want app folder under info.json sync root", loc.Dir)
	}
}

func TestResolve_MalformedInfoJSONDegrades(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix info.json location")
	}
	home := isolateEnv(t)

	if err := os.MkdirAll(filepath.Join(home, ".dropbox"), 0755); err != nil {
		t.Fatalf("Failed to create .dropbox dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(home, ".dropbox", "info.json"), []byte("{garbage"), 0644); err != nil {
		t.Fatalf("Failed to write info.json: %v", err)
	}

	onedrive := filepath.Join(home, "OneDrive")
	if err := os.MkdirAll(onedrive, 0755); err != nil {
		t.Fatalf("Failed to create OneDrive dir: %v", err)
	}

	loc, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if loc.Provider != ProviderOneDrive {
		t.Errorf("Provider = %q, want fallback to %q", loc.Provider, ProviderOneDrive)
	}
}

func TestResolve_OneDriveEnv(t *testing.T) {
	home := isolateEnv(t)

	onedrive := filepath.Join(home, "CloudDocs")
	if err := os.MkdirAll(onedrive, 0755); err != nil {
		t.Fatalf("Failed to create OneDrive dir: %v", err)
	}
	t.Setenv("OneDrive", onedrive)

	loc, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if loc.Provider != ProviderOneDrive {
		t.Errorf("Provider = %q, want %q", loc.Provider, ProviderOneDrive)
	}
	if loc.Dir != filepath.Join(onedrive, appFolderName) {
		t.Errorf("Dir = %q, want app folder under OneDrive root", loc.Dir)
	}
}

func TestResolve_LocalFallback(t *testing.T) {
	isolateEnv(t)

	loc, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if loc.Provider != ProviderLocal {
		t.Errorf("Provider = %q, want %q", loc.Provider, ProviderLocal)
	}
	if st, err := os.Stat(loc.Dir); err != nil || !st.IsDir() {
		t.Errorf("local folder was not created: %v", err)
	}
}

func TestLocation_StorePath(t *testing.T) {
	loc := Location{Dir: filepath.Join("some", "dir"), Provider: ProviderLocal}
	want := filepath.Join("some", "dir", StoreFileName)
	if loc.StorePath() != want {
		t.Errorf("StorePath() = %q, want %q", loc.StorePath(), want)
	}
}
