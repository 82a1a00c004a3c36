package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mscrnt/mchtimings/internal/config"
	"github.com/mscrnt/mchtimings/pkg/chipset/i915"
	"github.com/mscrnt/mchtimings/pkg/decoder"
	"github.com/mscrnt/mchtimings/pkg/register"
	"github.com/mscrnt/mchtimings/pkg/report"
	"github.com/mscrnt/mchtimings/pkg/source"
)

const reportTitle = "Intel 91x DDR2 timings"

type decodeOptions struct {
	withRead         bool
	simple           bool
	verbose          bool
	noColor          bool
	fallbackDefaults bool
	format           string
	out              string
	configPath       string
	set              overrideList
}

func addDecodeFlags(cmd *cobra.Command, opts *decodeOptions) {
	flags := cmd.Flags()
	flags.BoolVar(&opts.withRead, "with-read", false, "Read the live registers with RWEverything (requires administrator)")
	flags.BoolVar(&opts.simple, "simple", false, "Short listing, same as --format simple")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log sources, ignored arguments and overwritten ids to stderr")
	flags.BoolVar(&opts.noColor, "no-color", false, "Do not highlight out-of-range values")
	flags.BoolVar(&opts.fallbackDefaults, "fallback-defaults", false, "Use the default value of registers that cannot be read")
	flags.StringVar(&opts.format, "format", string(report.FormatPlain), "Output format: plain, simple, verbose, json, html, pdf")
	flags.StringVarP(&opts.out, "out", "o", "", "Write the report to a file instead of stdout")
	flags.StringVar(&opts.configPath, "config", "", "Config file, YAML or TOML (default: $"+config.EnvVar+")")
	flags.Var(&opts.set, "set", "Register value as NNN=VALUE, may be repeated")
}

func (o *decodeOptions) resolveFormat() (report.Format, error) {
	if o.simple {
		return report.FormatSimple, nil
	}
	return report.ParseFormat(o.format)
}

func (o *decodeOptions) debugf(format string, args ...any) {
	if o.verbose {
		log.Printf(format, args...)
	}
}

func runDecode(ctx context.Context, opts *decodeOptions, args []string, stdout io.Writer) (err error) {
	cfg, err := config.Resolve(opts.configPath)
	if err != nil {
		return err
	}

	format, err := opts.resolveFormat()
	if err != nil {
		return err
	}
	if format.Binary() && opts.out == "" {
		return fmt.Errorf("%s output needs --out", format)
	}

	cat := i915.NewCatalog()

	overrides, ignored := source.ParseOverrides(args)
	for _, tok := range ignored {
		opts.debugf("ignoring argument %q, expected NNN=VALUE", tok)
	}
	overrides = append(overrides, opts.set...)
	for _, o := range source.Apply(cat, overrides) {
		log.Printf("warning: no register at offset 0x%03X, %q ignored", o.Address, o.Token)
	}
	for _, addr := range cat.Addresses() {
		if raw, overridden, _ := cat.Raw(addr); overridden {
			opts.debugf("0x%03X = 0x%08X from the command line", addr, raw)
		}
	}

	var src decoder.Source
	if opts.withRead {
		src, err = liveSource(cfg, cat, opts)
		if err != nil {
			return err
		}
	}

	rep, err := decoder.Run(ctx, cat, src, i915.Derivations(cfg.Timing.WTR, cfg.Timing.WR))
	if err != nil {
		return err
	}

	for _, rr := range rep.Registers {
		opts.debugf("%s = 0x%08X (%s)", rr.Register.Name, rr.Raw, rr.Origin)
	}
	for _, s := range rep.Shadowed {
		opts.debugf("%s = %s from %s overwritten by %s", s.ID, s.Previous, s.From, s.By)
	}
	for _, f := range rep.OutOfRange() {
		log.Printf("warning: %s %q = %s outside %s", f.Field.Bits, f.Field.Description, f.Value, f.Field.Range)
	}

	data := &report.Data{
		Title:       reportTitle,
		Report:      rep,
		ClockMHz:    cfg.Timing.ClockMHz,
		References:  i915.References(),
		GeneratedAt: time.Now(),
	}
	if format != report.FormatPlain && format != report.FormatSimple {
		host, err := report.CollectHost(ctx)
		if err != nil {
			opts.debugf("%v", err)
		}
		data.Host = host
	}

	w := stdout
	color := !opts.noColor && isTerminal(stdout)
	if opts.out != "" {
		f, createErr := os.Create(opts.out)
		if createErr != nil {
			return fmt.Errorf("failed to create output file: %w", createErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
		color = false
	}

	if err := report.Render(ctx, w, data, format, report.Options{Color: color}); err != nil {
		return err
	}
	if opts.out != "" {
		opts.debugf("report written to %s", opts.out)
	}
	return nil
}

// liveSource builds the RWEverything reader from cfg. With --fallback-defaults
// registers that cannot be read decode from their default instead.
func liveSource(cfg *config.Config, cat *register.Catalog, opts *decodeOptions) (decoder.Source, error) {
	rw, err := source.NewRWEverything(cfg.Tool.Path, cfg.Tool.Args, cfg.MCHBAR)
	if err != nil {
		return nil, err
	}
	rw.Timeout = cfg.Tool.Timeout
	rw.Retries = cfg.Tool.Retries
	rw.RetryMin = cfg.Tool.RetryMin
	rw.RetryMax = cfg.Tool.RetryMax
	rw.Logf = opts.debugf

	if !opts.fallbackDefaults {
		return rw, nil
	}
	return source.Fallback(rw, source.Defaults(cat), func(address uint32, err error) {
		log.Printf("warning: reading 0x%03X failed, using default: %v", address, err)
	}), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// overrideList collects repeated --set flags
type overrideList []source.Override

var _ pflag.Value = (*overrideList)(nil)

func (l *overrideList) String() string {
	parts := make([]string, len(*l))
	for i, o := range *l {
		parts[i] = o.String()
	}
	return strings.Join(parts, ",")
}

func (l *overrideList) Set(s string) error {
	o, ok := source.ParseOverride(s)
	if !ok {
		return fmt.Errorf("expected NNN=VALUE with hex offset and value, got %q", s)
	}
	*l = append(*l, o)
	return nil
}

func (l *overrideList) Type() string {
	return "NNN=VALUE"
}
