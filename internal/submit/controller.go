package submit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/pdfdesk/internal/remote"
)

// Transport performs the remote operations. *remote.Client implements it.
type Transport interface {
	Store(ctx context.Context, f remote.File) (*remote.StoreResult, error)
	ValidateAndConvert(ctx context.Context, f remote.File) (*remote.ConvertResult, error)
}

// Controller owns one session and allows at most one request in flight.
type Controller struct {
	transport Transport
	timeout   time.Duration
	log       *slog.Logger

	mu       sync.Mutex
	session  Session
	inflight bool
	gen      uint64 // bumped on every file change; stale results are dropped
}

// NewController creates a controller in the Idle phase. A non-zero timeout
// bounds every request.
func NewController(t Transport, timeout time.Duration, log *slog.Logger) *Controller {
	return &Controller{
		transport: t,
		timeout:   timeout,
		log:       log,
		session:   Session{Phase: PhaseIdle},
	}
}

// Session returns a snapshot of the current state.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SelectFile replaces the selection and moves to Ready, clearing any prior
// outcome. If a request is outstanding its result will be discarded.
func (c *Controller) SelectFile(f *File) Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.session = Session{File: f, Phase: PhaseReady}
	if f == nil {
		c.session.Phase = PhaseIdle
	}
	c.log.Debug("file selected", "phase", c.session.Phase, "file", fileLabel(f), "in_flight", c.inflight)
	return c.session
}

// Reset abandons the session.
func (c *Controller) Reset() Session {
	return c.SelectFile(nil)
}

// Submit starts one request for the selected file. It fails synchronously
// with *UserInputError when no file is selected and with ErrInFlight while a
// request is outstanding. The returned channel delivers the settled session
// once and is then closed.
func (c *Controller) Submit(ctx context.Context, kind Kind) (<-chan Session, error) {
	c.mu.Lock()
	if c.session.File == nil {
		c.mu.Unlock()
		return nil, &UserInputError{Kind: kind}
	}
	if c.inflight {
		c.mu.Unlock()
		return nil, ErrInFlight
	}
	c.inflight = true
	c.session.Phase = PhaseSubmitting
	c.session.Kind = kind
	c.session.Outcome = nil
	c.session.Failure = nil
	gen := c.gen
	file := *c.session.File
	c.mu.Unlock()

	log := c.log.With("op", kind.String(), "file", file.Name)
	log.Debug("submitting", "bytes", len(file.Data), "type", file.Type)

	done := make(chan Session, 1)
	go func() {
		defer close(done)
		outcome, err := c.call(ctx, kind, file)
		done <- c.settle(log, gen, outcome, err)
	}()
	return done, nil
}

func (c *Controller) call(ctx context.Context, kind Kind, f File) (out *Outcome, err error) {
	defer func() {
		if v := recover(); v != nil {
			out, err = nil, panicError{v}
		}
	}()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	rf := remote.File{Name: f.Name, Data: f.Data}
	switch kind {
	case KindValidateConvert:
		res, err := c.transport.ValidateAndConvert(ctx, rf)
		if err != nil {
			return nil, err
		}
		if res.Compliant {
			return &Outcome{Kind: OutcomeNoConversionNeeded}, nil
		}
		return &Outcome{Kind: OutcomeConverted, Identifier: res.Identifier}, nil
	default:
		res, err := c.transport.Store(ctx, rf)
		if err != nil {
			return nil, err
		}
		return &Outcome{Kind: OutcomeStored, Identifier: res.Identifier}, nil
	}
}

func (c *Controller) settle(log *slog.Logger, gen uint64, outcome *Outcome, err error) Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight = false

	if gen != c.gen {
		log.Debug("discarding result for replaced file", "error", err)
		return c.session
	}
	if err != nil {
		c.session.Phase = PhaseFailed
		c.session.Failure = classify(err)
		log.Warn("request failed", "error_kind", c.session.Failure.ErrorKind, "error", err)
		return c.session
	}
	c.session.Phase = PhaseSucceeded
	c.session.Outcome = outcome
	log.Debug("request succeeded", "phase", c.session.Phase, "identifier", outcome.Identifier)
	return c.session
}

func fileLabel(f *File) string {
	if f == nil {
		return ""
	}
	return f.Name
}
