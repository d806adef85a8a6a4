package validate

import (
	"context"
	"path/filepath"

	clamd "github.com/dutchcoders/go-clamd"
)

// ScanStatusOK is the only scanner verdict that lets a file through.
const ScanStatusOK = "OK"

// ScanResult is the scanner's verdict for one file.
type ScanResult struct {
	Status string
	Detail string
}

// Scanner checks a directory of staged files for malware. The directory is
// assumed to be mounted at a path visible to the scanner.
type Scanner interface {
	Scan(ctx context.Context, dir string) (map[string]ScanResult, error)
}

// Clamd scans through a clamd daemon.
type Clamd struct {
	client *clamd.Clamd
}

var _ Scanner = (*Clamd)(nil)

// NewClamd connects to a clamd daemon, e.g. "tcp://localhost:3310".
func NewClamd(address string) *Clamd {
	return &Clamd{
		client: clamd.NewClamd(address),
	}
}

// Ping checks daemon reachability.
func (c *Clamd) Ping() error {
	return c.client.Ping()
}

func (c *Clamd) Scan(ctx context.Context, dir string) (map[string]ScanResult, error) {
	results, err := c.client.ContScanFile(dir)
	if err != nil {
		return nil, err
	}

	verdicts := make(map[string]ScanResult)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result, ok := <-results:
			if !ok {
				return verdicts, nil
			}
			verdicts[filepath.Base(result.Path)] = ScanResult{
				Status: result.Status,
				Detail: result.Description,
			}
		}
	}
}
