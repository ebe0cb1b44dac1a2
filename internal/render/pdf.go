package render

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"

	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

// PDFExporter prints receipts to PDF files through headless Chrome. Export is
// the last fallback tier: nothing reaches paper, but the sale record survives
// in the export directory.
type PDFExporter struct {
	ChromePath string // empty means auto-detect
	ExportDir  string
}

// Available reports whether a Chrome or Chromium binary can be found.
func (e *PDFExporter) Available() bool {
	return e.chromePath() != ""
}

// Export writes the job as a PDF into the export directory and returns the
// file path. A fresh browser context is created per call and cancelled on
// every exit path.
func (e *PDFExporter) Export(ctx context.Context, job printjob.Job) (string, error) {
	html, err := ReceiptHTML(job)
	if err != nil {
		return "", printjob.WrapError(printjob.ErrProtocolRejected, "job has no document form", err)
	}

	chrome := e.chromePath()
	if chrome == "" {
		return "", printjob.NewError(printjob.ErrTransportUnavailable, "no chrome or chromium binary found")
	}

	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(chrome),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	cdpCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var pdfBytes []byte
	err = chromedp.Run(cdpCtx,
		chromedp.Navigate("data:text/html,"+urlEncode(html)),
		chromedp.Sleep(300*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithMarginTop(0.4).
				WithMarginBottom(0.4).
				WithMarginLeft(0.4).
				WithMarginRight(0.4).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBytes = buf
			return nil
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", printjob.WrapError(printjob.ErrTransportUnavailable, "pdf generation failed", err)
	}

	if err := os.MkdirAll(e.ExportDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	name := fmt.Sprintf("receipt-%s.pdf", exportStamp(job))
	outPath := filepath.Join(e.ExportDir, name)
	if err := os.WriteFile(outPath, pdfBytes, 0644); err != nil {
		return "", fmt.Errorf("failed to save pdf: %w", err)
	}
	return outPath, nil
}

func exportStamp(job printjob.Job) string {
	if job.Receipt != nil && job.Receipt.TicketNumber != "" {
		safe := strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
				return r
			}
			return '-'
		}, job.Receipt.TicketNumber)
		return safe + "-" + uuid.New().String()[:8]
	}
	return uuid.New().String()
}

// chromePath resolves the browser binary: explicit override, PATH lookup,
// then the usual install locations.
func (e *PDFExporter) chromePath() string {
	if e.ChromePath != "" {
		return e.ChromePath
	}

	binaries := []string{
		"google-chrome",
		"google-chrome-stable",
		"chromium",
		"chromium-browser",
	}
	for _, bin := range binaries {
		if path, err := exec.LookPath(bin); err == nil {
			return path
		}
	}

	for _, path := range commonChromePaths() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func commonChromePaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	case "linux":
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
		}
	case "windows":
		return []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files\Chromium\Application\chromium.exe`,
		}
	default:
		return nil
	}
}

func urlEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
