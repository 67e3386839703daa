package host

import (
	"fmt"
	"io"

	"github.com/playwright-community/playwright-go"
)

// Default browser settings.
const (
	DefaultViewportWidth  = 1440
	DefaultViewportHeight = 900
	DefaultTimeout        = 30000 // milliseconds
)

// BrowserOptions configures the hosted Chromium instance.
type BrowserOptions struct {
	// Headless controls whether the browser runs without a visible window.
	Headless bool

	// Viewport sets the initial viewport size.
	Viewport *Viewport

	// Timeout is the default timeout for page operations in milliseconds.
	Timeout float64
}

// Viewport represents browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Browser owns the Playwright runtime and the single page rendering the
// canvas. One daemon drives exactly one page; multiple views of one record
// appear as multiple elements inside it, not as multiple pages.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

// LaunchBrowser installs (if needed) and starts Playwright, launches
// Chromium and opens a blank page. Callers navigate the page to the canvas
// application themselves.
func LaunchBrowser(opts BrowserOptions) (*Browser, error) {
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	if opts.Viewport == nil {
		opts.Viewport = &Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(opts.Timeout)

	return &Browser{pw: pw, browser: browser, context: context, page: page}, nil
}

// Page returns the canvas page.
func (b *Browser) Page() playwright.Page {
	return b.page
}

// Open navigates the canvas page to the given URL and waits for it to load.
func (b *Browser) Open(url string) error {
	if _, err := b.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("failed to open canvas page: %w", err)
	}
	return nil
}

// Shutdown closes the page, context and browser and stops Playwright.
func (b *Browser) Shutdown() error {
	_ = b.page.Close()
	_ = b.context.Close()
	_ = b.browser.Close()
	if err := b.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}
