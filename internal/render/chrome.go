package render

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

type ChromeConfig struct {
	// ExecPath overrides the browser binary; empty uses chromedp's lookup.
	ExecPath string
	// OutputPath is where each screenshot is written. A single path is reused for every render.
	OutputPath string
	Timeout    time.Duration
	Logger     *logrus.Logger
}

// Chrome renders pages with a headless Chrome instance driven over the DevTools protocol.
type Chrome struct {
	cfg         ChromeConfig
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
}

// NewChrome prepares the browser allocator. Every render launches its own browser, which
// exits when the render returns.
func NewChrome(ctx context.Context, cfg ChromeConfig) *Chrome {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = "temp.png"
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("hide-scrollbars", true),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)

	return &Chrome{
		cfg:         cfg,
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
	}
}

func (c *Chrome) Render(ctx context.Context, markup, stylesheet string, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas %dx%d", width, height)
	}

	tabCtx, cancelTab := chromedp.NewContext(c.allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.cfg.Timeout)
	defer cancelTimeout()

	// Stop the tab when the caller gives up.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	page := "data:text/html;charset=utf-8," + url.PathEscape(Document(markup, stylesheet))

	var png []byte
	started := time.Now()
	if err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(page),
		chromedp.CaptureScreenshot(&png),
	); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}

	if err := writeOutput(c.cfg.OutputPath, png); err != nil {
		return nil, err
	}
	c.cfg.Logger.WithFields(logrus.Fields{
		"width":    width,
		"height":   height,
		"bytes":    len(png),
		"duration": time.Since(started).Round(time.Millisecond),
	}).Debug("rendered table")
	return png, nil
}

// Close releases the allocator and any browser still running.
func (c *Chrome) Close() {
	c.cancelAlloc()
}

func writeOutput(path string, png []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	return nil
}

var _ Renderer = (*Chrome)(nil)
