package update

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// ProgressFunc is called during download with bytes downloaded and total size.
type ProgressFunc func(downloaded, total int64)

// downloadFile downloads a file from url to destPath.
func downloadFile(ctx context.Context, client *http.Client, url, destPath string) error {
	return downloadFileWithProgress(ctx, client, url, destPath, nil)
}

// downloadFileWithProgress downloads a file with a progress callback.
func downloadFileWithProgress(ctx context.Context, client *http.Client, url, destPath string, progress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "ACControl-Updater/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	tmpPath := destPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	success := false
	defer func() {
		out.Close()
		if !success {
			os.Remove(tmpPath)
		}
	}()

	var written int64
	total := resp.ContentLength

	if progress != nil && total > 0 {
		reader := &progressReader{
			reader:   resp.Body,
			total:    total,
			progress: progress,
		}
		written, err = io.Copy(out, reader)
	} else {
		written, err = io.Copy(out, resp.Body)
	}
	if err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	if total > 0 && written != total {
		return fmt.Errorf("incomplete download: got %d bytes, expected %d", written, total)
	}

	// Close before rename.
	out.Close()

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}

	success = true
	return nil
}

// progressReader wraps an io.Reader to track download progress.
type progressReader struct {
	reader     io.Reader
	total      int64
	downloaded int64
	progress   ProgressFunc
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.downloaded += int64(n)
		if r.progress != nil {
			r.progress(r.downloaded, r.total)
		}
	}
	return n, err
}

// formatBytes formats bytes as a human readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
