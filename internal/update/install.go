package update

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
)

// minBinarySize catches truncated downloads and HTML error pages
// masquerading as binaries.
const minBinarySize = 1024 * 1024 // 1 MB

// Install downloads the release asset from info and replaces the
// current binary with it. Progress is written to w.
func (m *Manager) Install(ctx context.Context, info *Info, w io.Writer) error {
	if info.AssetURL == "" {
		return fmt.Errorf("release %s has no asset for %s/%s", info.Latest, runtime.GOOS, runtime.GOARCH)
	}

	fmt.Fprintf(w, "Downloading %s...\n", info.AssetName)

	tempPath, err := m.download(ctx, info.AssetURL, w)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer os.Remove(tempPath)

	st, err := os.Stat(tempPath)
	if err != nil {
		return fmt.Errorf("failed to stat downloaded binary: %w", err)
	}
	if st.Size() < minBinarySize {
		return fmt.Errorf("downloaded binary too small (%d bytes), likely corrupted", st.Size())
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tempPath, 0o755); err != nil {
			return fmt.Errorf("failed to set permissions: %w", err)
		}
	}

	exePath, err := m.targetPath()
	if err != nil {
		return fmt.Errorf("failed to determine current binary path: %w", err)
	}

	fmt.Fprintf(w, "Installing %s...\n", info.Latest)
	if err := replaceBinary(tempPath, exePath); err != nil {
		return fmt.Errorf("failed to replace binary: %w", err)
	}

	m.config.Logger.Printf("Installed %s over %s", info.Latest, exePath)
	return nil
}

// targetPath resolves the binary to replace.
func (m *Manager) targetPath() (string, error) {
	if m.config.ExePath != "" {
		return m.config.ExePath, nil
	}
	exePath, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(exePath)
}

// download fetches the asset to a temp file and returns its path.
func (m *Manager) download(ctx context.Context, url string, w io.Writer) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent())

	resp, err := m.config.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	out, err := os.CreateTemp("", "sticky-update-*")
	if err != nil {
		return "", err
	}
	defer out.Close()

	var src io.Reader = resp.Body
	if resp.ContentLength > 0 {
		src = &progressReader{
			reader: resp.Body,
			total:  resp.ContentLength,
			writer: w,
		}
	}

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	if resp.ContentLength > 0 {
		fmt.Fprintln(w) // newline after progress
	}

	if err := out.Sync(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}

// replaceBinary swaps newPath into place at exePath.
//
// On Windows the running executable cannot be overwritten, but it can
// be renamed; the old binary is moved aside and left for the OS to
// clean up on the next update.
func replaceBinary(newPath, exePath string) error {
	if runtime.GOOS == "windows" {
		oldPath := exePath + ".old"
		_ = os.Remove(oldPath)
		if err := os.Rename(exePath, oldPath); err != nil {
			return fmt.Errorf("failed to move running binary aside: %w", err)
		}
		if err := moveFile(newPath, exePath); err != nil {
			// Put the original back rather than leaving no binary.
			_ = os.Rename(oldPath, exePath)
			return err
		}
		return nil
	}

	return moveFile(newPath, exePath)
}

// moveFile renames, falling back to copy for cross-device moves.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyFile(src, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// progressReader wraps an io.Reader to report download progress.
type progressReader struct {
	reader  io.Reader
	total   int64
	current int64
	writer  io.Writer
	lastPct int
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.current += int64(n)
	pct := int(float64(pr.current) / float64(pr.total) * 100)
	if pct != pr.lastPct && pct%10 == 0 {
		fmt.Fprintf(pr.writer, "\rDownloading... %d%%", pct)
		pr.lastPct = pct
	}
	return n, err
}
