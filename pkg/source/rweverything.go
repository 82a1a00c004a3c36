package source

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/flynn/go-shlex"
	"github.com/jpillora/backoff"
)

// Default RWEverything invocation. AddressPlaceholder in the arguments is
// replaced by the physical address of the register being read.
const (
	DefaultToolPath    = `D:\bin\RwPortableV1.7\Rw.exe`
	DefaultToolArgs    = `/Min /Nologo /Stdout "/Command=r32 {addr}"`
	AddressPlaceholder = "{addr}"
)

var (
	// ErrNoDelimiter is returned when the tool output has no '=' before the value
	ErrNoDelimiter = errors.New("no '=' in tool output")
	// ErrNotElevated is returned when the process cannot access physical memory
	ErrNotElevated = errors.New("reading physical memory requires administrator privileges")
)

// Runner executes name with args and returns its standard output
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// RWEverything reads registers by running the RWEverything command-line tool
// against physical address Base + offset. Only one RWEverything instance may
// run at a time, so reads are strictly sequential.
type RWEverything struct {
	Base     uint32        // MCHBAR
	Path     string        // Tool executable
	Args     []string      // Tool arguments, may contain AddressPlaceholder
	Timeout  time.Duration // Per attempt, 0 means no timeout
	Retries  int           // Total attempts per register
	RetryMin time.Duration
	RetryMax time.Duration

	Run      Runner
	Elevated func() bool
	Logf     func(format string, args ...any)
}

// NewRWEverything creates a reader for the tool at path. args is split with
// shell quoting rules.
func NewRWEverything(path, args string, base uint32) (*RWEverything, error) {
	if path == "" {
		return nil, fmt.Errorf("tool path cannot be empty")
	}

	argv, err := shlex.Split(args)
	if err != nil {
		return nil, fmt.Errorf("invalid tool arguments %q: %w", args, err)
	}

	hasPlaceholder := false
	for _, a := range argv {
		if strings.Contains(a, AddressPlaceholder) {
			hasPlaceholder = true
			break
		}
	}
	if !hasPlaceholder {
		return nil, fmt.Errorf("tool arguments %q must contain %s", args, AddressPlaceholder)
	}

	return &RWEverything{
		Base:     base,
		Path:     path,
		Args:     argv,
		Timeout:  10 * time.Second,
		Retries:  3,
		RetryMin: 100 * time.Millisecond,
		RetryMax: time.Second,
		Run:      execRunner,
		Elevated: elevated,
	}, nil
}

// Command returns the arguments used to read the register at offset address
func (r *RWEverything) Command(address uint32) []string {
	phys := fmt.Sprintf("0x%X", r.Base+address)
	args := make([]string, len(r.Args))
	for i, a := range r.Args {
		args[i] = strings.ReplaceAll(a, AddressPlaceholder, phys)
	}
	return args
}

// ReadRegister implements Source. Failed tool runs are retried with
// exponential backoff; output without a value is not retried.
func (r *RWEverything) ReadRegister(ctx context.Context, address uint32) (uint32, error) {
	if r.Elevated != nil && !r.Elevated() {
		return 0, ErrNotElevated
	}

	args := r.Command(address)
	attempts := r.Retries
	if attempts < 1 {
		attempts = 1
	}

	b := &backoff.Backoff{
		Min:    r.RetryMin,
		Max:    r.RetryMax,
		Factor: 2,
		Jitter: false,
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := r.run(ctx, args)
		if err == nil {
			return ParseOutput(out)
		}
		lastErr = err

		if attempt == attempts || ctx.Err() != nil {
			break
		}

		delay := b.Duration()
		r.logf("read of 0x%X failed (attempt %d/%d): %v, retrying in %s",
			r.Base+address, attempt, attempts, err, delay)

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(delay):
		}
	}

	return 0, fmt.Errorf("%s %s: %w", r.Path, strings.Join(args, " "), lastErr)
}

func (r *RWEverything) run(ctx context.Context, args []string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	runner := r.Run
	if runner == nil {
		runner = execRunner
	}
	r.logf("%s %s", r.Path, strings.Join(args, " "))
	return runner(ctx, r.Path, args...)
}

func (r *RWEverything) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

func (r *RWEverything) String() string {
	return "rweverything"
}

// ParseOutput extracts the hexadecimal value following the first '=' of the
// tool output, e.g. "Read Memory Address 0xFED14110 = 0x88BC10D8".
func ParseOutput(out []byte) (uint32, error) {
	_, after, found := strings.Cut(string(out), "=")
	if !found {
		return 0, ErrNoDelimiter
	}
	if i := strings.IndexByte(after, '='); i >= 0 {
		after = after[:i]
	}

	fields := strings.Fields(after)
	if len(fields) == 0 {
		return 0, fmt.Errorf("no value after '=' in tool output")
	}

	digits := strings.TrimPrefix(strings.TrimPrefix(fields[0], "0x"), "0X")
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid register value %q: %w", fields[0], err)
	}
	return uint32(v), nil
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return out, nil
}
