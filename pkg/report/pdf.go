package report

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// PDFOptions contains options for PDF generation
type PDFOptions struct {
	Landscape           bool
	PrintBackground     bool
	PreferCSSPageSize   bool
	PaperWidth          float64
	PaperHeight         float64
	MarginTop           float64
	MarginBottom        float64
	MarginLeft          float64
	MarginRight         float64
	HeaderTemplate      string
	FooterTemplate      string
	DisplayHeaderFooter bool
	Timeout             time.Duration
}

// DefaultPDFOptions returns default PDF options. The field table is wide, so
// pages are printed in landscape.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		Landscape:           true,
		PrintBackground:     true,
		PreferCSSPageSize:   false,
		PaperWidth:          8.5,  // Letter width in inches
		PaperHeight:         11.0, // Letter height in inches
		MarginTop:           0.4,
		MarginBottom:        0.4,
		MarginLeft:          0.4,
		MarginRight:         0.4,
		DisplayHeaderFooter: false,
		Timeout:             30 * time.Second,
	}
}

// GeneratePDF renders data to HTML and prints it with a headless Chrome
func GeneratePDF(ctx context.Context, data *Data, options *PDFOptions) ([]byte, error) {
	html, err := GenerateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	return htmlToPDF(ctx, html, options)
}

// htmlToPDF converts an HTML document to PDF using chromedp
func htmlToPDF(ctx context.Context, html string, options *PDFOptions) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	if options.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	// Navigate to data URL with HTML content
	dataURL := "data:text/html;charset=utf-8," + url.PathEscape(html)

	var pdfData []byte
	if err := chromedp.Run(ctx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			params := page.PrintToPDF().
				WithLandscape(options.Landscape).
				WithPrintBackground(options.PrintBackground).
				WithPreferCSSPageSize(options.PreferCSSPageSize).
				WithPaperWidth(options.PaperWidth).
				WithPaperHeight(options.PaperHeight).
				WithMarginTop(options.MarginTop).
				WithMarginBottom(options.MarginBottom).
				WithMarginLeft(options.MarginLeft).
				WithMarginRight(options.MarginRight).
				WithDisplayHeaderFooter(options.DisplayHeaderFooter)

			if options.HeaderTemplate != "" {
				params = params.WithHeaderTemplate(options.HeaderTemplate)
			}
			if options.FooterTemplate != "" {
				params = params.WithFooterTemplate(options.FooterTemplate)
			}

			var err error
			pdfData, _, err = params.Do(ctx)
			return err
		}),
	); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return pdfData, nil
}
