// Package download fetches taxonomy dump files from the NCBI FTP
// mirror over HTTPS.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Dump file URLs on the NCBI FTP mirror.
const (
	ZipURL   = "https://ftp.ncbi.nih.gov/pub/taxonomy/taxdmp.zip"
	TarGzURL = "https://ftp.ncbi.nih.gov/pub/taxonomy/taxdump.tar.gz"
)

// URLFor returns the dump URL for the given archive extension
// ("zip" or "tar.gz").
func URLFor(extension string) (string, error) {
	switch extension {
	case "zip":
		return ZipURL, nil
	case "tar.gz":
		return TarGzURL, nil
	}
	return "", fmt.Errorf("unsupported dump extension %q (want zip or tar.gz)", extension)
}

// client is shared by all fetches. The dump is hundreds of megabytes,
// so the timeout only bounds connection setup and headers, not the
// body copy.
var client = &http.Client{Timeout: 0}

// Fetch downloads url to outfile, streaming the body to disk. A
// partial file is removed on failure.
func Fetch(ctx context.Context, url, outfile string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	f, err := os.Create(outfile)
	if err != nil {
		return fmt.Errorf("create %s: %w", outfile, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(outfile)
		return fmt.Errorf("write %s: %w", outfile, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(outfile)
		return fmt.Errorf("close %s: %w", outfile, err)
	}
	return nil
}

// FetchWithTimeout is Fetch with an overall deadline, for callers
// without a context of their own.
func FetchWithTimeout(url, outfile string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return Fetch(ctx, url, outfile)
}
