package processor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// readSource returns the raw input, downloading it when src is an http(s)
// URL and reading it from disk otherwise.
func readSource(ctx context.Context, client *http.Client, src string) ([]byte, error) {
	if !isRemote(src) {
		return os.ReadFile(src)
	}

	if client == nil {
		client = http.DefaultClient
	}

	log.Info().Str("url", src).Msg("Downloading topology")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	// Explicitly ignore close error as it's a read-only operation
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
