package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/cdm-client/internal/events"
	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
)

var errPublish = errors.New("nats: connection closed")

var _ cdm.BootstrapObserver = (*events.Observer)(nil)

type message struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	messages []message
	err      error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}

	p.messages = append(p.messages, message{subject: subject, data: data})

	return nil
}

type warnLogger struct {
	warnings []map[string]interface{}
}

func (l *warnLogger) Debug(string, map[string]interface{}) {}
func (l *warnLogger) Info(string, map[string]interface{})  {}
func (l *warnLogger) Error(string, map[string]interface{}) {}

func (l *warnLogger) Warn(_ string, fields map[string]interface{}) {
	l.warnings = append(l.warnings, fields)
}

func TestObserver_Publishes(t *testing.T) {
	t.Parallel()

	publisher := &fakePublisher{}
	observer := events.NewObserver(publisher, nil)

	observer.OnBootstrapEvent(context.Background(), cdm.BootstrapEvent{
		Cluster:   "prod",
		Node:      "10.0.0.11",
		State:     cdm.BootstrapStatePolling,
		RequestID: "1",
		Status:    "IN_PROGRESS",
		Time:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	})

	require.Len(t, publisher.messages, 1)
	assert.Equal(t, "cdm.bootstrap.prod", publisher.messages[0].subject)

	var event cdm.BootstrapEvent

	require.NoError(t, json.Unmarshal(publisher.messages[0].data, &event))
	assert.Equal(t, cdm.BootstrapStatePolling, event.State)
	assert.Equal(t, "IN_PROGRESS", event.Status)
	assert.Equal(t, "10.0.0.11", event.Node)
}

func TestObserver_PublishFailureIsLogged(t *testing.T) {
	t.Parallel()

	logger := &warnLogger{}
	observer := events.NewObserver(&fakePublisher{err: errPublish}, logger)

	observer.OnBootstrapEvent(context.Background(), cdm.BootstrapEvent{Cluster: "prod", State: cdm.BootstrapStateSubmitting})

	require.Len(t, logger.warnings, 1)
	assert.Equal(t, "cdm.bootstrap.prod", logger.warnings[0]["subject"])
	assert.Equal(t, errPublish.Error(), logger.warnings[0]["error"])
	assert.NoError(t, observer.Close())
}

func TestSubject(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "cdm.bootstrap.prod-cluster", events.Subject("prod-cluster"))
	assert.Equal(t, "cdm.bootstrap.lab_east_1", events.Subject("lab.east 1"))
	assert.Equal(t, "cdm.bootstrap.__", events.Subject("*>"))
	assert.Equal(t, "cdm.bootstrap._", events.Subject(""))
}

func TestConnect_Unreachable(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	_, err = events.Connect("nats://"+addr, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connecting to NATS")
}
