package admin

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jasperwreed/ai-assistant/internal/audit"
)

// notice is a transient success message that hides itself once its deadline
// passes. Readers pass the current time so tests control expiry.
type notice struct {
	text    string
	expires time.Time
}

func (n *notice) set(text string, ttl time.Duration, now time.Time) {
	n.text = text
	n.expires = now.Add(ttl)
}

func (n notice) at(now time.Time) string {
	if n.text == "" || !now.Before(n.expires) {
		return ""
	}
	return n.text
}

type options struct {
	noticeTTL   time.Duration
	concurrency int
	now         func() time.Time
	recorder    audit.Recorder
}

type Option func(*options)

// WithNoticeTTL sets how long a success notice stays visible.
func WithNoticeTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.noticeTTL = ttl
		}
	}
}

// WithConcurrency bounds the number of message-count fetches in flight while
// loading conversations.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRecorder sends every attempted mutation to r.
func WithRecorder(r audit.Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

func buildOptions(ttl time.Duration, opts []Option) options {
	o := options{
		noticeTTL:   ttl,
		concurrency: DefaultConcurrency,
		now:         time.Now,
		recorder:    audit.Discard,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// record reports a mutation outcome. A failing recorder never fails the
// mutation itself.
func (o options) record(action string, target int64, detail string, err error) {
	e := audit.Event{Action: action, Target: target, Detail: detail, Outcome: audit.OutcomeOK}
	if err != nil {
		e.Outcome = audit.OutcomeFailed
		e.Error = err.Error()
	}
	if rerr := o.recorder.Record(e); rerr != nil {
		log.Warn().Err(rerr).Str("action", action).Msg("failed to record audit event")
	}
}
