package salesfinder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"marketplace-trends/config"
	"marketplace-trends/utils"
)

// ErrBrowserNotFound is returned when no Chrome/Chromium binary can be located.
var ErrBrowserNotFound = errors.New("chrome browser not found, set CHROME_BIN")

// Opener opens the weekly category reports in a visible browser so they can
// be downloaded by hand into the source root.
type Opener struct {
	logger    *utils.Logger
	pool      *utils.WorkerPool
	retry     *utils.RetryConfig
	chromeBin string

	mu      sync.Mutex
	cancels []context.CancelFunc
}

// New creates an Opener from the report settings in cfg.
func New(cfg *config.Config, logger *utils.Logger) *Opener {
	return &Opener{
		logger:    logger,
		pool:      utils.NewWorkerPool(2, cfg.OpenRateLimitMs),
		chromeBin: cfg.ChromeBin,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// LastWeekRange returns Monday and Sunday of the calendar week before today.
func LastWeekRange(today time.Time) (time.Time, time.Time) {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	offset := (int(day.Weekday()) + 6) % 7 // days since Monday
	monday := day.AddDate(0, 0, -offset-7)
	return monday, monday.AddDate(0, 0, 6)
}

// BuildURLs fills {cat}, {d1} and {d2} of tmpl for every distinct category,
// keeping the order categories were given in.
func BuildURLs(tmpl string, categories []string, from, to time.Time) []string {
	d1, d2 := from.Format("2006-01-02"), to.Format("2006-01-02")

	cats := utils.NewStringSet()
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			cats.Add(c)
		}
	}

	urls := make([]string, 0, cats.Size())
	for _, c := range cats.Values() {
		r := strings.NewReplacer("{cat}", c, "{d1}", d1, "{d2}", d2)
		urls = append(urls, r.Replace(tmpl))
	}
	return urls
}

// Open starts a browser window, opens every URL in its own tab and keeps
// the browser running until ctx is cancelled. Tabs that fail to load after
// retries are reported but do not close the browser.
func (o *Opener) Open(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	bin := o.chromeBin
	if bin == "" {
		bin = findChromeBinary()
	}
	if bin == "" {
		return ErrBrowserNotFound
	}
	o.logger.Info("[salesfinder] Using browser binary: %s", bin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", false),
		chromedp.Flag("disable-gpu", false),
		chromedp.Flag("hide-scrollbars", false),
		chromedp.Flag("mute-audio", false),
		chromedp.ExecPath(bin),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	if err := o.navigate(ctx, browserCtx, urls[0]); err != nil {
		return fmt.Errorf("salesfinder: open first report: %w", err)
	}

	for _, u := range urls[1:] {
		url := u
		o.pool.Submit(func() error {
			tabCtx, cancel := chromedp.NewContext(browserCtx)
			o.mu.Lock()
			o.cancels = append(o.cancels, cancel)
			o.mu.Unlock()
			return o.navigate(ctx, tabCtx, url)
		})
	}
	errs := o.pool.Wait()
	for _, err := range errs {
		o.logger.Warn("[salesfinder] %v", err)
	}

	o.logger.Info("[salesfinder] Opened %d of %d reports — download them, then press Ctrl+C to close the browser",
		len(urls)-len(errs), len(urls))

	<-ctx.Done()

	o.mu.Lock()
	for _, cancel := range o.cancels {
		cancel()
	}
	o.cancels = nil
	o.mu.Unlock()
	return nil
}

func (o *Opener) navigate(ctx, tabCtx context.Context, url string) error {
	return o.retry.Do(ctx, "open "+url, func() error {
		navCtx, cancel := context.WithTimeout(tabCtx, 60*time.Second)
		defer cancel()
		if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
			return fmt.Errorf("navigate %s: %w", url, err)
		}
		o.logger.Debug("[salesfinder] Opened %s", url)
		return nil
	})
}

// findChromeBinary locates a Chrome/Chromium binary on PATH or in the usual
// install locations. CHROME_BIN arrives through config and is checked by Open.
func findChromeBinary() string {
	names := []string{"google-chrome-stable", "google-chrome", "chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	var paths []string
	switch runtime.GOOS {
	case "windows":
		paths = []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		}
	case "darwin":
		paths = []string{"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"}
	default:
		paths = []string{
			"/usr/bin/google-chrome-stable",
			"/usr/bin/google-chrome",
			"/usr/bin/chromium-browser",
			"/usr/bin/chromium",
			"/snap/bin/chromium",
		}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
