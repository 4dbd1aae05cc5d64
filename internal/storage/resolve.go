// Package storage resolves the folder where the note board file lives.
//
// Resolution walks a fixed priority order: an explicit custom folder wins,
// then a detected Dropbox sync root, then OneDrive, then the local user
// config directory. Putting the board inside a cloud-synced folder is what
// gives the application its naive multi-device sync.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// StoreFileName is the board file's name inside the resolved folder.
const StoreFileName = "stickies.json"

// appFolderName is the subfolder created inside a cloud sync root.
const appFolderName = "Stickies"

// Provider identifies which candidate won folder resolution.
type Provider string

const (
	ProviderCustom   Provider = "custom"
	ProviderDropbox  Provider = "dropbox"
	ProviderOneDrive Provider = "onedrive"
	ProviderLocal    Provider = "local"
)

// Location is the result of folder resolution.
type Location struct {
	Dir      string
	Provider Provider
}

// StorePath returns the full path of the board file.
func (l Location) StorePath() string {
	return filepath.Join(l.Dir, StoreFileName)
}

// Resolve picks the storage folder. If customDir is non-empty it is used
// unconditionally; otherwise cloud sync folders are probed in priority
// order and the local user config directory is the fallback.
//
// The chosen folder is created if it does not exist.
func Resolve(customDir string) (Location, error) {
	loc, err := pick(customDir)
	if err != nil {
		return Location{}, err
	}
	if err := os.MkdirAll(loc.Dir, 0755); err != nil {
		return Location{}, fmt.Errorf("failed to create storage folder %s: %w", loc.Dir, err)
	}
	return loc, nil
}

func pick(customDir string) (Location, error) {
	if customDir != "" {
		return Location{Dir: customDir, Provider: ProviderCustom}, nil
	}

	if dir, ok := dropboxDir(); ok {
		return Location{Dir: filepath.Join(dir, appFolderName), Provider: ProviderDropbox}, nil
	}

	if dir, ok := onedriveDir(); ok {
		return Location{Dir: filepath.Join(dir, appFolderName), Provider: ProviderOneDrive}, nil
	}

	dir, err := localDir()
	if err != nil {
		return Location{}, err
	}
	return Location{Dir: dir, Provider: ProviderLocal}, nil
}

// dropboxInfo is the shape of Dropbox's info.json. Only the sync root
// paths are interesting.
type dropboxInfo struct {
	Personal struct {
		Path string `json:"path"`
	} `json:"personal"`
	Business struct {
		Path string `json:"path"`
	} `json:"business"`
}

// dropboxDir returns the Dropbox sync root, if one can be detected.
//
// The Dropbox client writes an info.json describing its sync roots.
// An unreadable or malformed info.json degrades to probing ~/Dropbox;
// detection failures never abort resolution.
func dropboxDir() (string, bool) {
	for _, infoPath := range dropboxInfoPaths() {
		data, err := os.ReadFile(infoPath)
		if err != nil {
			continue
		}

		var info dropboxInfo
		if err := json.Unmarshal(data, &info); err != nil {
			continue
		}

		for _, root := range []string{info.Personal.Path, info.Business.Path} {
			if root == "" {
				continue
			}
			if st, err := os.Stat(root); err == nil && st.IsDir() {
				return root, true
			}
		}
	}

	// No usable info.json; probe the conventional location.
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	conventional := filepath.Join(home, "Dropbox")
	if st, err := os.Stat(conventional); err == nil && st.IsDir() {
		return conventional, true
	}
	return "", false
}

func dropboxInfoPaths() []string {
	var paths []string
	if runtime.GOOS == "windows" {
		for _, env := range []string{"APPDATA", "LOCALAPPDATA"} {
			if base := os.Getenv(env); base != "" {
				paths = append(paths, filepath.Join(base, "Dropbox", "info.json"))
			}
		}
		return paths
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".dropbox", "info.json"))
	}
	return paths
}

// onedriveDir returns the OneDrive sync root, if one can be detected.
// The OneDrive client exports its root via environment variable on
// Windows; elsewhere the conventional ~/OneDrive folder is probed.
func onedriveDir() (string, bool) {
	for _, env := range []string{"OneDrive", "ONEDRIVE", "OneDriveConsumer"} {
		if dir := os.Getenv(env); dir != "" {
			if st, err := os.Stat(dir); err == nil && st.IsDir() {
				return dir, true
			}
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	conventional := filepath.Join(home, "OneDrive")
	if st, err := os.Stat(conventional); err == nil && st.IsDir() {
		return conventional, true
	}
	return "", false
}

// localDir returns the per-user fallback folder.
func localDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(base, appFolderName), nil
}
