package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Outbox decouples notification delivery from request handling. Writes commit
// first; the message is queued afterwards, and a delivery failure is logged
// rather than propagated.
type Outbox struct {
	queue      chan Message
	dispatcher Dispatcher
	workers    int
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// NewOutbox creates an outbox with a bounded queue.
func NewOutbox(dispatcher Dispatcher, size, workers int) *Outbox {
	if size <= 0 {
		size = 64
	}
	if workers <= 0 {
		workers = 1
	}
	return &Outbox{
		queue:      make(chan Message, size),
		dispatcher: dispatcher,
		workers:    workers,
	}
}

// Start launches the delivery workers.
func (o *Outbox) Start() {
	for i := 0; i < o.workers; i++ {
		o.wg.Add(1)
		go o.worker()
	}
}

// Enqueue queues a message without blocking. A full queue drops the message
// and reports false so the caller can log a fallback.
func (o *Outbox) Enqueue(msg Message) bool {
	select {
	case o.queue <- msg:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"to":   msg.To,
			"kind": msg.Kind,
		}).Warn("outbox full, dropping notification")
		return false
	}
}

// Close stops accepting messages and waits for in-flight deliveries.
func (o *Outbox) Close() {
	o.closeOnce.Do(func() {
		close(o.queue)
	})
	o.wg.Wait()
}

func (o *Outbox) worker() {
	defer o.wg.Done()

	for msg := range o.queue {
		if err := o.deliver(msg); err != nil {
			// one retry, then give up
			if err := o.deliver(msg); err != nil {
				logrus.WithFields(logrus.Fields{
					"to":   msg.To,
					"kind": msg.Kind,
				}).WithError(err).Error("notification delivery failed")
			}
		}
	}
}

func (o *Outbox) deliver(msg Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return o.dispatcher.Send(ctx, msg)
}
