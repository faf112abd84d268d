package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/yorozuya-cybersecurity/zap-report/internal/schema"
)

const chromePrintTimeout = 60 * time.Second

// ChromePDFRenderer prints the HTML report through headless Chrome.
type ChromePDFRenderer struct {
	ExecPath string
	HTML     HTMLRenderer
}

func NewChromePDFRenderer(execPath string) *ChromePDFRenderer {
	return &ChromePDFRenderer{ExecPath: execPath}
}

func (r *ChromePDFRenderer) Render(ctx context.Context, w io.Writer, data *schema.ScanData, meta Meta) error {
	var html bytes.Buffer
	if err := r.HTML.Render(ctx, &html, data, meta); err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", "zapreport-chrome-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	htmlPath := filepath.Join(dir, "report.html")
	if err := os.WriteFile(htmlPath, html.Bytes(), 0600); err != nil {
		return fmt.Errorf("write temp html: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(r.ExecPath),
		chromedp.UserDataDir(filepath.Join(dir, "profile")),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()
	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, chromePrintTimeout)
	defer cancelTimeout()

	var pdf []byte
	err = chromedp.Run(taskCtx,
		chromedp.Navigate("file://"+filepath.ToSlash(htmlPath)),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("chrome print: %w", err)
	}

	if _, err := w.Write(pdf); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
