// Package report renders decoded timing registers as text, JSON, HTML or PDF.
package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/mscrnt/mchtimings/pkg/decoder"
	"github.com/mscrnt/mchtimings/pkg/register"
)

// Format selects an output renderer
type Format string

// Supported formats
const (
	FormatPlain   Format = "plain"
	FormatSimple  Format = "simple"
	FormatVerbose Format = "verbose"
	FormatJSON    Format = "json"
	FormatHTML    Format = "html"
	FormatPDF     Format = "pdf"
)

// Formats lists the supported formats in help order
var Formats = []Format{FormatPlain, FormatSimple, FormatVerbose, FormatJSON, FormatHTML, FormatPDF}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unknown format %q (want one of %s)", s, strings.Join(names, ", "))
}

// Binary reports whether the format is unsuitable for a terminal
func (f Format) Binary() bool {
	return f == FormatPDF
}

// Data contains all data needed for report generation
type Data struct {
	Title       string
	Report      *decoder.Report
	ClockMHz    int
	References  []decoder.Reference
	Host        *HostInfo
	GeneratedAt time.Time
}

// Options controls rendering
type Options struct {
	Color bool        // Highlight out-of-range values with ANSI escapes in text formats
	PDF   *PDFOptions // nil means DefaultPDFOptions
}

// Render writes data to w in format f
func Render(ctx context.Context, w io.Writer, data *Data, f Format, opts Options) error {
	switch f {
	case FormatPlain, FormatSimple, FormatVerbose:
		return WriteText(w, data, f, opts.Color)
	case FormatJSON:
		return WriteJSON(w, data)
	case FormatHTML:
		html, err := GenerateHTML(data)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	case FormatPDF:
		pdfOpts := DefaultPDFOptions()
		if opts.PDF != nil {
			pdfOpts = *opts.PDF
		}
		pdf, err := GeneratePDF(ctx, data, &pdfOpts)
		if err != nil {
			return err
		}
		_, err = w.Write(pdf)
		return err
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// GenerateHTML generates a standalone HTML page for data
func GenerateHTML(data *Data) (string, error) {
	tmpl, err := loadHTMLTemplate()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// loadHTMLTemplate parses the HTML report template
func loadHTMLTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04:05")
		},
		"hex32": func(v uint32) string {
			return fmt.Sprintf("0x%08X", v)
		},
		"hex3": func(v uint32) string {
			return fmt.Sprintf("0x%03X", v)
		},
		"nibbles": decoder.Nibbles,
		"rangeClass": func(inRange bool) string {
			if inRange {
				return ""
			}
			return "out-of-range"
		},
		"rangeText": func(r *register.Range) string {
			return r.String()
		},
	}

	tmpl := template.New("report").Funcs(funcMap)
	tmpl, err := tmpl.Parse(htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return tmpl, nil
}

// htmlTemplate is the HTML report template
const htmlTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            line-height: 1.5;
            color: #333;
            max-width: 1200px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f5f5f5;
        }
        .container {
            background-color: white;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
            padding: 30px;
        }
        h1, h2, h3 {
            color: #2c3e50;
        }
        .header {
            border-bottom: 3px solid #FF6B35;
            padding-bottom: 20px;
            margin-bottom: 30px;
        }
        .summary {
            font-family: Consolas, 'Courier New', monospace;
            font-size: 1.3em;
            font-weight: bold;
        }
        .register {
            margin-bottom: 25px;
        }
        .register h3 {
            background-color: #f0f0f0;
            padding: 10px;
            margin: 0 0 15px 0;
            border-radius: 4px;
        }
        .register h3 small {
            font-family: Consolas, 'Courier New', monospace;
            font-weight: normal;
            color: #666;
        }
        .fields-table {
            width: 100%;
            border-collapse: collapse;
        }
        .fields-table th,
        .fields-table td {
            padding: 6px 10px;
            text-align: left;
            border-bottom: 1px solid #e0e0e0;
        }
        .fields-table th {
            background-color: #f8f9fa;
            font-weight: 600;
            color: #666;
        }
        .fields-table td.mono {
            font-family: Consolas, 'Courier New', monospace;
        }
        .out-of-range {
            background-color: #FEE;
            color: #C00;
            font-weight: bold;
        }
        .note {
            color: #888;
            font-size: 0.9em;
        }
        .footer {
            margin-top: 40px;
            padding-top: 20px;
            border-top: 1px solid #e0e0e0;
            text-align: center;
            color: #666;
            font-size: 0.9em;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Title}}</h1>
            {{if .Host}}<p>Host: {{.Host.String}}</p>{{end}}
            <p class="summary">@ {{.ClockMHz}} MHz &nbsp; {{.Report.Summary.String}}</p>
        </div>

        {{range .Report.Registers}}
        <div class="register">
            <h3>{{.Register.Name}} <small>{{hex3 .Register.Address}} = {{hex32 .Raw}} ({{.Origin}}) &nbsp; {{nibbles .Raw}}</small></h3>
            <table class="fields-table">
                <thead>
                    <tr>
                        <th>Bits</th>
                        <th>ID</th>
                        <th>Description</th>
                        <th>Value</th>
                        <th>Raw</th>
                        <th>Binary</th>
                        <th>Range</th>
                    </tr>
                </thead>
                <tbody>
                    {{range .Fields}}
                    <tr class="{{rangeClass .InRange}}">
                        <td class="mono">{{.Field.Bits}}</td>
                        <td>{{.ID}}</td>
                        <td>{{.Field.Description}}{{if .Field.Note}}<br><span class="note">{{.Field.Note}}</span>{{end}}</td>
                        <td class="mono">{{.Value}}</td>
                        <td class="mono">{{.Raw}}</td>
                        <td class="mono">{{.Binary}}</td>
                        <td class="mono">{{rangeText .Field.Range}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
        </div>
        {{end}}

        {{if .Report.Derivations}}
        <div class="register">
            <h3>Derived</h3>
            <ul>
                {{range .Report.Derivations}}<li class="mono">{{.String}}</li>{{end}}
            </ul>
        </div>
        {{end}}

        {{if .References}}
        <div class="register">
            <h3>SPD Memory Timings</h3>
            <table class="fields-table">
                <thead>
                    <tr>
                        <th>Part</th>
                        <th>Clock</th>
                        <th>Timings</th>
                    </tr>
                </thead>
                <tbody>
                    {{range .References}}
                    <tr>
                        <td>{{.Part}}</td>
                        <td>{{.ClockMHz}} MHz</td>
                        <td class="mono">{{.Summary.String}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
        </div>
        {{end}}

        <div class="footer">
            <p>Generated by mchtimings on {{formatTime .GeneratedAt}}</p>
        </div>
    </div>
</body>
</html>
`
