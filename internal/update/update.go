// Package update checks GitHub releases for a newer build and can
// download and install the replacement binary in place.
//
// Release tags are compared as semantic versions. Check results are
// cached in a TTL'd JSON file so the CLI can look for updates on every
// run without hammering the API.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	defaultAPIBase  = "https://api.github.com"
	defaultRepo     = "steveyegge/stickies"
	defaultCacheTTL = 24 * time.Hour

	cacheFileName = "update-check.json"
)

// Release is the subset of the GitHub release API response we read.
type Release struct {
	TagName    string  `json:"tag_name"`
	Prerelease bool    `json:"prerelease"`
	Assets     []Asset `json:"assets"`
}

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// Config holds updater configuration.
type Config struct {
	// Repo is the GitHub owner/name to check.
	Repo string

	// APIBase overrides the GitHub API endpoint (tests).
	APIBase string

	// CacheDir is where the check cache lives. Empty disables caching.
	CacheDir string

	// CacheTTL is how long a check result stays fresh.
	CacheTTL time.Duration

	// ExePath overrides the binary to replace (tests). Empty means the
	// current executable.
	ExePath string

	// Client is the HTTP client to use.
	Client *http.Client

	// Logger for updater activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Repo:     defaultRepo,
		APIBase:  defaultAPIBase,
		CacheTTL: defaultCacheTTL,
		Client:   http.DefaultClient,
		Logger:   log.New(os.Stderr, "[update] ", log.LstdFlags),
	}
}

// Manager handles checking for and applying updates.
type Manager struct {
	config *Config
}

// NewManager creates an update Manager.
func NewManager(config *Config) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Repo == "" {
		config.Repo = defaultRepo
	}
	if config.APIBase == "" {
		config.APIBase = defaultAPIBase
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = defaultCacheTTL
	}
	if config.Client == nil {
		config.Client = http.DefaultClient
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[update] ", log.LstdFlags)
	}
	return &Manager{config: config}
}

// Info holds the result of a version check.
type Info struct {
	Current   string `json:"current"`
	Latest    string `json:"latest"`
	HasUpdate bool   `json:"has_update"`
	AssetName string `json:"asset_name"`
	AssetURL  string `json:"asset_url"`
	AssetSize int64  `json:"asset_size"`
}

// cacheFile is the persisted check result.
type cacheFile struct {
	Latest    string    `json:"latest"`
	AssetName string    `json:"asset_name"`
	AssetURL  string    `json:"asset_url"`
	AssetSize int64     `json:"asset_size"`
	ExpiresOn time.Time `json:"expires_on"`
}

// Check determines whether a newer release exists. force bypasses the
// cache.
func (m *Manager) Check(ctx context.Context, current string, force bool) (*Info, error) {
	current = canonical(current)
	if !semver.IsValid(current) {
		return nil, fmt.Errorf("current version %q is not a semantic version", current)
	}

	if !force {
		if cache, ok := m.loadCache(); ok {
			return m.buildInfo(current, cache.Latest, cache.AssetName, cache.AssetURL, cache.AssetSize), nil
		}
	}

	// Stable builds only see stable releases; a running pre-release
	// also sees newer pre-releases.
	includePre := semver.Prerelease(current) != ""
	release, err := m.fetchLatest(ctx, includePre)
	if err != nil {
		return nil, err
	}

	latest := canonical(release.TagName)
	if !semver.IsValid(latest) {
		return nil, fmt.Errorf("release tag %q is not a semantic version", release.TagName)
	}

	asset, ok := platformAsset(release)
	if !ok {
		m.config.Logger.Printf("Release %s has no asset for %s/%s", latest, runtime.GOOS, runtime.GOARCH)
	}

	m.saveCache(&cacheFile{
		Latest:    latest,
		AssetName: asset.Name,
		AssetURL:  asset.BrowserDownloadURL,
		AssetSize: asset.Size,
		ExpiresOn: time.Now().UTC().Add(m.config.CacheTTL),
	})

	return m.buildInfo(current, latest, asset.Name, asset.BrowserDownloadURL, asset.Size), nil
}

func (m *Manager) buildInfo(current, latest, assetName, assetURL string, assetSize int64) *Info {
	return &Info{
		Current:   current,
		Latest:    latest,
		HasUpdate: semver.Compare(latest, current) > 0,
		AssetName: assetName,
		AssetURL:  assetURL,
		AssetSize: assetSize,
	}
}

// fetchLatest queries the release API. GitHub's /releases/latest
// excludes pre-releases; when they are wanted, the newest entry of the
// release list is used instead.
func (m *Manager) fetchLatest(ctx context.Context, includePrerelease bool) (*Release, error) {
	if includePrerelease {
		url := fmt.Sprintf("%s/repos/%s/releases?per_page=1", m.config.APIBase, m.config.Repo)
		var releases []Release
		if err := m.getJSON(ctx, url, &releases); err != nil {
			return nil, err
		}
		if len(releases) == 0 {
			return nil, fmt.Errorf("repository %s has no releases", m.config.Repo)
		}
		return &releases[0], nil
	}

	url := fmt.Sprintf("%s/repos/%s/releases/latest", m.config.APIBase, m.config.Repo)
	var release Release
	if err := m.getJSON(ctx, url, &release); err != nil {
		return nil, err
	}
	return &release, nil
}

func (m *Manager) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent())

	resp, err := m.config.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to query releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("release query failed, status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse release response: %w", err)
	}
	return nil
}

// platformAsset picks the asset for the running platform.
func platformAsset(release *Release) (Asset, bool) {
	want := AssetName()
	for _, asset := range release.Assets {
		if asset.Name == want {
			return asset, true
		}
	}
	return Asset{}, false
}

// AssetName returns the release asset name for the running platform.
func AssetName() string {
	name := fmt.Sprintf("sticky-%s-%s", runtime.GOOS, runtime.GOARCH)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return name
}

func (m *Manager) cachePath() string {
	if m.config.CacheDir == "" {
		return ""
	}
	return filepath.Join(m.config.CacheDir, cacheFileName)
}

func (m *Manager) loadCache() (*cacheFile, bool) {
	path := m.cachePath()
	if path == "" {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var cache cacheFile
	if err := json.Unmarshal(data, &cache); err != nil {
		m.config.Logger.Printf("Ignoring malformed update cache: %v", err)
		return nil, false
	}
	if time.Now().After(cache.ExpiresOn) {
		return nil, false
	}
	return &cache, true
}

func (m *Manager) saveCache(cache *cacheFile) {
	path := m.cachePath()
	if path == "" {
		return
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		m.config.Logger.Printf("Failed to create cache dir: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		m.config.Logger.Printf("Failed to save update cache: %v", err)
	}
}

// canonical normalizes a version string to the v-prefixed form semver
// expects.
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

func userAgent() string {
	return fmt.Sprintf("stickies (%s; %s)", runtime.GOOS, runtime.GOARCH)
}
