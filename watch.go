package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
)

// watchInterval is how often the watched files are checked.
const watchInterval = 1 * time.Second

// newestModTime returns the most recent modification time among fileNames.
// Missing files are ignored, except the first one.
func newestModTime(fileNames []string) (time.Time, error) {
	var newest time.Time
	for i, name := range fileNames {
		info, err := os.Stat(name)
		if err != nil {
			if i == 0 {
				return newest, err
			}
			continue
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return newest, nil
}

// processWatch checks periodically if any of fileNames has been modified, and if so
// it calls build. The first file is the input and must exist.
// Build failures are logged and watching goes on; it stops when ctx is done.
func processWatch(ctx context.Context, fileNames []string, interval time.Duration, build func() error, log *zap.SugaredLogger) error {

	var oldTimestamp time.Time

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {

		currentTimestamp, err := newestModTime(fileNames)
		if err != nil {
			return err
		}

		// If any file is newer than the previous build, process again
		if oldTimestamp.Before(currentTimestamp) {
			oldTimestamp = currentTimestamp
			log.Infow("processing", "file", fileNames[0])
			if err := build(); err != nil {
				log.Errorw("build failed", "error", err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

	}
}
