// Package events publishes bootstrap state transitions to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/cdm-client/internal/constants"
	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
)

// Publisher is the subset of *nats.Conn used by Observer.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Observer implements cdm.BootstrapObserver by publishing every event as
// JSON on cdm.bootstrap.<cluster>. Publish failures are logged and never
// interrupt the bootstrap.
type Observer struct {
	publisher Publisher
	logger    cdm.Logger
	conn      *nats.Conn
}

// NewObserver creates an observer on top of an existing publisher.
func NewObserver(publisher Publisher, logger cdm.Logger) *Observer {
	return &Observer{
		publisher: publisher,
		logger:    logger,
	}
}

// Connect dials the NATS server at url and returns an observer owning the
// connection. Call Close when the bootstrap is over.
func Connect(url string, logger cdm.Logger) (*Observer, error) {
	conn, err := nats.Connect(url,
		nats.Name("cdm"),
		nats.Timeout(constants.NATSConnectTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	observer := NewObserver(conn, logger)
	observer.conn = conn

	return observer, nil
}

// OnBootstrapEvent implements cdm.BootstrapObserver.
func (o *Observer) OnBootstrapEvent(_ context.Context, event cdm.BootstrapEvent) {
	subject := Subject(event.Cluster)

	data, err := json.Marshal(event)
	if err != nil {
		o.warn("encoding bootstrap event", subject, err)

		return
	}

	err = o.publisher.Publish(subject, data)
	if err != nil {
		o.warn("publishing bootstrap event", subject, err)
	}
}

// Close flushes pending events and closes a connection opened by Connect.
func (o *Observer) Close() error {
	if o.conn == nil {
		return nil
	}

	defer o.conn.Close()

	err := o.conn.Flush()
	if err != nil {
		return fmt.Errorf("flushing NATS connection: %w", err)
	}

	return nil
}

// Subject returns the subject events of cluster are published on. Characters
// that are not valid in a subject token are replaced with "_".
func Subject(cluster string) string {
	token := strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		default:
			return r
		}
	}, cluster)

	if token == "" {
		token = "_"
	}

	return constants.BootstrapSubjectPrefix + "." + token
}

func (o *Observer) warn(msg, subject string, err error) {
	if o.logger == nil {
		return
	}

	o.logger.Warn(msg, map[string]interface{}{
		"subject": subject,
		"error":   err.Error(),
	})
}
