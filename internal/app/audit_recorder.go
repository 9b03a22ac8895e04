/**
 * @description
 * The audit recorder is the asynchronous half of the transaction log. Ledger
 * operations enqueue entries here and return without waiting; a single
 * background goroutine drains the queue, inserts the `transactions` row, and
 * publishes a `wallet.transaction.<type>` event for downstream consumers.
 *
 * Contract:
 * - Record never blocks the ledger path. A full queue drops the entry with a
 *   warn log; the balance mutation it describes stays committed.
 * - Append or publish failures are logged, never escalated to the caller.
 * - Close stops intake and drains everything already queued before returning.
 *
 * @dependencies
 * - context, log, sync, time: Standard Go libraries.
 * - internal/domain: audit entry model.
 * - pkg/rabbitmq: optional event publisher.
 */

package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/transfa/wallet-service/internal/domain"
	"github.com/transfa/wallet-service/pkg/rabbitmq"
)

const (
	// DefaultAuditQueueSize bounds the in-memory backlog of pending appends.
	DefaultAuditQueueSize = 256

	auditWriteTimeout = 5 * time.Second
	auditExchange     = "wallet.events"
)

// TransactionAppender is the slice of the repository the recorder needs.
type TransactionAppender interface {
	AppendTransaction(ctx context.Context, entry domain.AuditEntry) error
}

// AuditRecorder drains a bounded queue of transaction-log entries.
type AuditRecorder struct {
	appender TransactionAppender
	producer rabbitmq.Publisher

	entries chan domain.AuditEntry
	done    chan struct{}
	closing sync.Once
}

// NewAuditRecorder creates a recorder and starts its drain goroutine.
// producer may be nil, in which case entries are only written to the database.
func NewAuditRecorder(appender TransactionAppender, producer rabbitmq.Publisher, queueSize int) *AuditRecorder {
	if queueSize <= 0 {
		queueSize = DefaultAuditQueueSize
	}
	r := &AuditRecorder{
		appender: appender,
		producer: producer,
		entries:  make(chan domain.AuditEntry, queueSize),
		done:     make(chan struct{}),
	}
	go r.drain()
	return r
}

// Record enqueues an audit entry without blocking. Entries are dropped when
// the queue is full; a dropped log entry must not block or fail the ledger
// operation it describes.
func (r *AuditRecorder) Record(entry domain.AuditEntry) {
	select {
	case r.entries <- entry:
	default:
		log.Printf("level=warn component=audit msg=\"queue full; dropping entry\" user_id=%d type=%s amount=%d",
			entry.UserID, entry.Type, entry.Amount)
	}
}

// Close stops intake and blocks until every queued entry has been drained.
func (r *AuditRecorder) Close() {
	r.closing.Do(func() {
		close(r.entries)
	})
	<-r.done
}

func (r *AuditRecorder) drain() {
	defer close(r.done)
	for entry := range r.entries {
		r.persist(entry)
	}
}

func (r *AuditRecorder) persist(entry domain.AuditEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()

	if err := r.appender.AppendTransaction(ctx, entry); err != nil {
		log.Printf("level=error component=audit msg=\"transaction append failed\" user_id=%d type=%s amount=%d err=%v",
			entry.UserID, entry.Type, entry.Amount, err)
		return
	}

	if r.producer == nil {
		return
	}
	routingKey := "wallet.transaction." + string(entry.Type)
	if err := r.producer.Publish(ctx, auditExchange, routingKey, entry); err != nil {
		log.Printf("level=warn component=audit msg=\"event publish failed\" routing_key=%s err=%v", routingKey, err)
	}
}
