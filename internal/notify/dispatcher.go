package notify

import (
	"sync"

	"workshop-booking/pkg/logging"
	"workshop-booking/pkg/metrics"
)

// Dispatcher fans intents out to a Notifier on background goroutines.
// Failures are logged and counted, never propagated: by the time an intent
// exists the transaction has already committed.
type Dispatcher struct {
	notifier Notifier
	log      *logging.Logger
	wg       sync.WaitGroup

	mSent   *metrics.Counter
	mFailed *metrics.Counter
}

func NewDispatcher(notifier Notifier, log *logging.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		log:      log.WithComponent("notify.dispatcher"),
		mSent:    metrics.Default.Counter("notify_sent_total", "Total number of delivered notification intents"),
		mFailed:  metrics.Default.Counter("notify_failed_total", "Total number of failed notification intents"),
	}
}

// Dispatch queues intents for delivery and returns immediately.
func (d *Dispatcher) Dispatch(intents ...Intent) {
	for _, intent := range intents {
		d.wg.Add(1)
		go func(in Intent) {
			defer d.wg.Done()
			if err := d.notifier.Notify(in); err != nil {
				d.mFailed.Inc()
				d.log.Error("notification delivery failed", err,
					logging.String("intent_id", in.ID),
					logging.String("kind", string(in.Kind)))
				return
			}
			d.mSent.Inc()
		}(intent)
	}
}

// Wait blocks until all queued intents were attempted. Used on shutdown
// and in tests.
func (d *Dispatcher) Wait() { d.wg.Wait() }
