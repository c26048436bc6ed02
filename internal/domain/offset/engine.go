package offset

import (
	"fmt"
	"time"

	"github.com/taskmaster/taskgrid/internal/infrastructure/logger"
)

// LocalLayout is the wire and display format of local timestamps.
const LocalLayout = "2006-01-02T15:04"

// Engine applies offset tokens to local timestamps in a fixed location.
type Engine struct {
	chain  Chain
	loc    *time.Location
	locale Locale
	logger *logger.Logger
	now    func() time.Time
}

// NewEngine creates an engine. A nil location means time.Local, a nil logger discards.
func NewEngine(chain Chain, loc *time.Location, locale Locale, log *logger.Logger) *Engine {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.Nop()
	}
	if locale == "" {
		locale = LocaleVietnamese
	}
	return &Engine{
		chain:  chain,
		loc:    loc,
		locale: locale,
		logger: log.WithComponent("offset"),
		now:    time.Now,
	}
}

// WithClock returns a copy of the engine reading the current time from now.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	cp := *e
	cp.now = now
	return &cp
}

func (e *Engine) Chain() Chain             { return e.chain }
func (e *Engine) Location() *time.Location { return e.loc }
func (e *Engine) Locale() Locale           { return e.locale }

// ParseLocal reads a YYYY-MM-DDTHH:mm string as wall-clock time in the engine location.
func (e *Engine) ParseLocal(value string) (time.Time, error) {
	t, err := time.ParseInLocation(LocalLayout, value, e.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
	}
	return t, nil
}

// FormatLocal renders t as wall-clock time in the engine location.
func (e *Engine) FormatLocal(t time.Time) string {
	return t.In(e.loc).Format(LocalLayout)
}

// Now returns the current time truncated to the minute, formatted.
func (e *Engine) Now() string {
	return e.FormatLocal(e.now())
}

// Derive is the strict form of Apply: it reports why the offset could not be applied.
func (e *Engine) Derive(base, token string) (string, error) {
	t, err := e.ParseLocal(base)
	if err != nil {
		return "", err
	}
	off, err := Parse(token)
	if err != nil {
		return "", err
	}
	base0, delta := t.UnixMilli(), off.Milliseconds()
	sum := base0 + delta
	if (delta > 0 && sum < base0) || (delta < 0 && sum > base0) {
		return "", fmt.Errorf("%w: %q overflows from %q", ErrInvalidFormat, token, base)
	}
	return e.FormatLocal(time.UnixMilli(sum)), nil
}

// Apply shifts base by token. On an unparseable base or an invalid token it
// logs and returns base unchanged.
func (e *Engine) Apply(base, token string) string {
	out, err := e.Derive(base, token)
	if err != nil {
		e.logger.Warnw("offset not applied", "base", base, "token", token, "error", err)
		return base
	}
	return out
}

// Label renders a token for display; unknown tokens are echoed unchanged.
func (e *Engine) Label(token string) string {
	off, err := Parse(token)
	if err != nil {
		return token
	}
	return off.Label(e.locale)
}

// Previous looks up the predecessor of field in the chain.
func (e *Engine) Previous(field string) (string, bool) {
	return e.chain.Previous(field)
}

// Consistent reports whether value is exactly predecessor+token.
func (e *Engine) Consistent(predecessor, token, value string) bool {
	derived, err := e.Derive(predecessor, token)
	return err == nil && derived == value
}
