package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
)

// framefeed replays a directory of JPEG frames into the vision server's
// frame ingest endpoint, standing in for a camera.
func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: "15:04:05",
	}))

	dir := getEnv("FRAME_DIR", "./frames")
	endpoint := getEnv("INGEST_URL", "http://localhost:8080/v1/vision/frames")
	fps, err := strconv.ParseFloat(getEnv("CAPTURE_FPS", "1"), 64)
	if err != nil || fps <= 0 {
		fps = 1
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.jpg"))
	if err != nil || len(files) == 0 {
		logger.Error("no frames found", "dir", dir, "error", err)
		os.Exit(1)
	}
	sort.Strings(files)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: 10 * time.Second}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	logger.Info("feeding frames", "dir", dir, "frames", len(files), "fps", fps, "endpoint", endpoint)

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			logger.Info("stopped", "sent", i)
			return
		case <-ticker.C:
		}

		path := files[i%len(files)]
		if err := postFrame(ctx, client, endpoint, path); err != nil {
			logger.Warn("frame rejected", "file", filepath.Base(path), "error", err)
		}
	}
}

func postFrame(ctx context.Context, client *http.Client, endpoint, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
