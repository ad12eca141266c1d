package update

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/minio/selfupdate"
	"github.com/rs/zerolog/log"
)

// applyBinary is swapped in tests so the test binary is never replaced.
var applyBinary = func(resp *http.Response) error {
	return selfupdate.Apply(resp.Body, selfupdate.Options{})
}

// Apply downloads the artifact named by res and replaces the running
// executable with it.
func Apply(ctx context.Context, client *http.Client, res *Result) error {
	if res == nil || res.DownloadURL == "" {
		return ErrNoDownload
	}
	if client == nil {
		client = defaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, res.DownloadURL, nil)
	if err != nil {
		return fmt.Errorf("create download request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", res.Latest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", res.Latest, resp.StatusCode)
	}

	if err := applyBinary(resp); err != nil {
		if rerr := selfupdate.RollbackError(err); rerr != nil {
			return errors.Join(fmt.Errorf("apply %s: %w", res.Latest, err), fmt.Errorf("rollback: %w", rerr))
		}
		return fmt.Errorf("apply %s: %w", res.Latest, err)
	}
	log.Info().Str("from", res.Current).Str("to", res.Latest).Msg("executable updated")
	return nil
}
