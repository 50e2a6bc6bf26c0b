package opensearch

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ecommkit/payflow/infra/logger"
	"github.com/ecommkit/payflow/provider"
)

// Logger indexes payment and system log entries into per-provider indices.
// Indexing is best-effort and asynchronous: a slow or unreachable cluster
// must never delay a payment.
type Logger struct {
	client *Client
}

// NewLogger creates a new OpenSearch log sink.
func NewLogger(client *Client) *Logger {
	return &Logger{client: client}
}

// LogPayment implements provider.PaymentLogger.
func (l *Logger) LogPayment(ctx context.Context, entry provider.PaymentLog) {
	body, err := json.Marshal(entry)
	if err != nil {
		return
	}

	go func() {
		indexCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := l.client.indexDocument(indexCtx, LogIndexName(entry.Provider), string(body)); err != nil {
			log.Printf("opensearch: failed to index payment log: %v", err)
		}
	}()
}

// IndexSystemLog implements logger.Sink.
func (l *Logger) IndexSystemLog(entry logger.SystemLog) {
	body, err := json.Marshal(entry)
	if err != nil {
		return
	}

	go func() {
		indexCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := l.client.indexDocument(indexCtx, LogIndexName(""), string(body)); err != nil {
			log.Printf("opensearch: failed to index system log: %v", err)
		}
	}()
}
