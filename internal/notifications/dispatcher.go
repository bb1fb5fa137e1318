package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/wooftrace/wooftrace-backend/pkg/config"
	pkgerrors "github.com/wooftrace/wooftrace-backend/pkg/errors"
	"github.com/wooftrace/wooftrace-backend/pkg/logger"
)

// Notifier accepts domain events for asynchronous delivery. Callers must not
// depend on delivery for correctness.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Sender delivers a single rendered message synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher drains a bounded in-process queue onto a Sender, retrying each
// event a fixed number of times before giving up.
type Dispatcher struct {
	sender      Sender
	logg        *logger.Logger
	frontendURL string
	queue       chan Event
	maxAttempts int
	backoff     time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewDispatcher builds a dispatcher; Start must be called before Notify
// delivers anything.
func NewDispatcher(cfg config.NotifyConfig, frontend config.FrontendConfig, sender Sender, logg *logger.Logger) *Dispatcher {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Dispatcher{
		sender:      sender,
		logg:        logg,
		frontendURL: frontend.BaseURL,
		queue:       make(chan Event, queueSize),
		maxAttempts: maxAttempts,
		backoff:     cfg.RetryBackoff,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Notify queues an event without blocking the request path. A full queue
// drops the event rather than stalling the caller.
func (d *Dispatcher) Notify(ctx context.Context, event Event) error {
	select {
	case <-d.stop:
		return pkgerrors.New(pkgerrors.CodeDependency, "notification dispatcher stopped")
	default:
	}
	select {
	case d.queue <- event:
		return nil
	default:
		if d.logg != nil {
			d.logg.Warn(d.logg.WithField(ctx, "kind", string(event.Kind)), "notify.queue_full")
		}
		return pkgerrors.New(pkgerrors.CodeDependency, "notification queue full")
	}
}

// Start launches the delivery worker.
func (d *Dispatcher) Start() {
	go d.run()
}

// Stop halts intake and waits for the in-flight event to finish.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.stopOnce.Do(func() { close(d.stop) })
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for {
		select {
		case <-d.stop:
			return
		case event := <-d.queue:
			d.deliver(event)
		}
	}
}

func (d *Dispatcher) deliver(event Event) {
	ctx := context.Background()
	if d.logg != nil {
		ctx = d.logg.WithFields(ctx, map[string]any{"kind": string(event.Kind), "to": event.To})
	}

	msg, ok := d.render(event)
	if !ok {
		// audit-only events produce no outbound mail
		if d.logg != nil {
			d.logg.Info(ctx, "notify.recorded")
		}
		return
	}

	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		lastErr = d.sender.Send(ctx, msg)
		if lastErr == nil {
			if d.logg != nil {
				d.logg.Info(ctx, "notify.delivered")
			}
			return
		}
		if attempt < d.maxAttempts && d.backoff > 0 {
			select {
			case <-d.stop:
				return
			case <-time.After(d.backoff * time.Duration(attempt)):
			}
		}
	}

	if d.logg != nil {
		d.logg.Error(d.logg.WithField(ctx, "attempts", d.maxAttempts), "notify.delivery_failed", lastErr)
	}
}

func (d *Dispatcher) render(event Event) (Message, bool) {
	switch event.Kind {
	case KindEmailVerification:
		return VerificationEmail(d.frontendURL, event.To, event.Name, event.Token), true
	case KindPasswordReset:
		return PasswordResetEmail(d.frontendURL, event.To, event.Name, event.Token), true
	case KindTagActivated:
		if event.To == "" {
			return Message{}, false
		}
		return TagActivatedEmail(d.frontendURL, event.To, event.Name, event.TagCode, event.ActivationCode), true
	case KindPetScanned:
		if event.To == "" {
			return Message{}, false
		}
		return ScanAlertEmail(event.To, event.PetName, event.Latitude, event.Longitude, event.At), true
	default:
		return Message{}, false
	}
}
