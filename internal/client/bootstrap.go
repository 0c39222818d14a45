package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/fivetwenty-io/cdm-client/internal/constants"
	"github.com/fivetwenty-io/cdm-client/internal/http"
	"github.com/fivetwenty-io/cdm-client/pkg/cdm"
)

const (
	bootstrapPath = "/cluster/me/bootstrap"
	discoverPath  = "/cluster/me/discover"
)

var errAlreadyBootstrapped = errors.New("cluster already bootstrapped")

// BootstrapClient implements cdm.BootstrapClient.
type BootstrapClient struct {
	httpClient *http.Client
	nodeIP     string
	logger     cdm.Logger
	observer   cdm.BootstrapObserver

	retryInterval time.Duration
	pollInterval  time.Duration
	maxAttempts   int

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// BootstrapOption configures a BootstrapClient.
type BootstrapOption func(*BootstrapClient)

// WithBootstrapCadence overrides the retry interval, poll interval and
// submission attempt limit. Zero values keep the defaults.
func WithBootstrapCadence(retryInterval, pollInterval time.Duration, maxAttempts int) BootstrapOption {
	return func(c *BootstrapClient) {
		if retryInterval > 0 {
			c.retryInterval = retryInterval
		}

		if pollInterval > 0 {
			c.pollInterval = pollInterval
		}

		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
	}
}

// WithBootstrapLogger sets the logger used for progress messages.
func WithBootstrapLogger(logger cdm.Logger) BootstrapOption {
	return func(c *BootstrapClient) {
		c.logger = logger
	}
}

// WithBootstrapObserver registers a receiver for state transitions.
func WithBootstrapObserver(observer cdm.BootstrapObserver) BootstrapOption {
	return func(c *BootstrapClient) {
		c.observer = observer
	}
}

// NewBootstrapClient creates a new bootstrap client.
func NewBootstrapClient(httpClient *http.Client, nodeIP string, opts ...BootstrapOption) *BootstrapClient {
	client := &BootstrapClient{
		httpClient:    httpClient,
		nodeIP:        nodeIP,
		retryInterval: constants.BootstrapRetryInterval,
		pollInterval:  constants.BootstrapPollInterval,
		maxAttempts:   constants.BootstrapMaxAttempts,
		sleep:         sleepContext,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Setup implements cdm.BootstrapClient.Setup.
func (c *BootstrapClient) Setup(ctx context.Context, config *cdm.BootstrapConfig, wait bool) (*cdm.BootstrapResult, error) {
	if config == nil {
		return nil, cdm.ErrConfigRequired
	}

	payload, err := config.Request()
	if err != nil {
		return nil, err
	}

	submission, err := c.submit(ctx, config.ClusterName, payload)
	if errors.Is(err, errAlreadyBootstrapped) {
		c.emit(ctx, cdm.BootstrapEvent{
			Cluster: config.ClusterName,
			State:   cdm.BootstrapStateAlreadyBootstrapped,
			Message: constants.AlreadyBootstrappedMessage,
		})

		return &cdm.BootstrapResult{
			AlreadyBootstrapped: true,
			Message:             constants.AlreadyBootstrappedMessage,
		}, nil
	}

	if err != nil {
		c.emit(ctx, cdm.BootstrapEvent{Cluster: config.ClusterName, State: cdm.BootstrapStateFailed, Message: err.Error()})

		return nil, err
	}

	result := &cdm.BootstrapResult{
		RequestID:  submission.ID.String(),
		Submission: submission,
	}

	if !wait {
		c.emit(ctx, cdm.BootstrapEvent{
			Cluster:   config.ClusterName,
			State:     cdm.BootstrapStateSubmitted,
			RequestID: result.RequestID,
			Status:    submission.Status,
		})

		return result, nil
	}

	if result.RequestID == "" {
		return nil, cdm.ErrMissingRequestID
	}

	c.logInfo("bootstrap: waiting for the bootstrap process to complete", map[string]interface{}{
		"cluster":    config.ClusterName,
		"request_id": result.RequestID,
	})

	status, err := c.poll(ctx, config.ClusterName, result.RequestID)
	if err != nil {
		return nil, err
	}

	result.Status = status
	result.Message = status.Message

	return result, nil
}

// Status implements cdm.BootstrapClient.Status. An empty requestID queries
// request "1".
func (c *BootstrapClient) Status(ctx context.Context, requestID string) (*cdm.BootstrapStatus, error) {
	if requestID == "" {
		requestID = constants.DefaultBootstrapRequestID
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method:   "GET",
		Version:  cdm.APIVersionInternal,
		Path:     bootstrapPath,
		Query:    url.Values{"request_id": []string{requestID}},
		Timeout:  constants.BootstrapStatusTimeout,
		SkipAuth: true,
	})
	if err != nil {
		return nil, fmt.Errorf("getting bootstrap status: %w", err)
	}

	var status cdm.BootstrapStatus

	err = json.Unmarshal(resp.Body, &status)
	if err != nil {
		return nil, fmt.Errorf("parsing bootstrap status: %w", err)
	}

	status.Raw = resp.Body

	return &status, nil
}

// Discover implements cdm.BootstrapClient.Discover.
func (c *BootstrapClient) Discover(ctx context.Context) (*cdm.DiscoverResponse, error) {
	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method:   "GET",
		Version:  cdm.APIVersionInternal,
		Path:     discoverPath,
		Timeout:  constants.BootstrapSubmitTimeout,
		SkipAuth: true,
	})
	if err != nil {
		return nil, fmt.Errorf("discovering nodes: %w", err)
	}

	var discovered cdm.DiscoverResponse

	err = json.Unmarshal(resp.Body, &discovered)
	if err != nil {
		return nil, fmt.Errorf("parsing discover response: %w", err)
	}

	discovered.Raw = resp.Body

	return &discovered, nil
}

// submit posts the bootstrap request, retrying while the node refuses
// connections. It returns errAlreadyBootstrapped when the node is already
// part of a cluster.
func (c *BootstrapClient) submit(ctx context.Context, cluster string, payload *cdm.BootstrapRequest) (*cdm.BootstrapSubmission, error) {
	for attempt := 1; ; attempt++ {
		c.emit(ctx, cdm.BootstrapEvent{Cluster: cluster, State: cdm.BootstrapStateSubmitting, Attempt: attempt})
		c.logInfo("bootstrap: starting the bootstrap process", map[string]interface{}{
			"cluster": cluster,
			"attempt": attempt,
		})

		resp, err := c.httpClient.Do(ctx, &http.Request{
			Method:   "POST",
			Version:  cdm.APIVersionInternal,
			Path:     bootstrapPath,
			Body:     payload,
			Timeout:  constants.BootstrapSubmitTimeout,
			SkipAuth: true,
		})
		if err == nil {
			return parseSubmission(resp.Body)
		}

		switch {
		case cdm.IsAlreadyBootstrapped(err):
			return nil, errAlreadyBootstrapped
		case !cdm.IsConnectionRefused(err):
			return nil, &cdm.ClusterError{Operation: "bootstrap", Err: err}
		case attempt >= c.maxAttempts:
			return nil, &cdm.APICallError{Message: constants.ConnectionUnavailableMessage, Err: err}
		}

		c.emit(ctx, cdm.BootstrapEvent{Cluster: cluster, State: cdm.BootstrapStateRetryWait, Attempt: attempt, Message: err.Error()})
		c.logInfo("bootstrap: connection refused, waiting for the node to initialize", map[string]interface{}{
			"attempt": attempt,
			"wait":    c.retryInterval.String(),
		})

		err = c.sleep(ctx, c.retryInterval)
		if err != nil {
			return nil, fmt.Errorf("waiting to retry bootstrap: %w", err)
		}
	}
}

// poll queries the status of requestID until it leaves IN_PROGRESS.
func (c *BootstrapClient) poll(ctx context.Context, cluster, requestID string) (*cdm.BootstrapStatus, error) {
	for {
		status, err := c.Status(ctx, requestID)
		if err != nil {
			return nil, err
		}

		event := cdm.BootstrapEvent{
			Cluster:   cluster,
			RequestID: requestID,
			Status:    status.Status,
			Message:   status.Message,
		}

		switch status.Status {
		case constants.BootstrapStatusInProgress:
			event.State = cdm.BootstrapStatePolling
			c.emit(ctx, event)
			c.logInfo("bootstrap: in progress", map[string]interface{}{"request_id": requestID})

			err = c.sleep(ctx, c.pollInterval)
			if err != nil {
				return nil, fmt.Errorf("waiting for bootstrap status: %w", err)
			}
		case constants.BootstrapStatusFailure, constants.BootstrapStatusFailed:
			event.State = cdm.BootstrapStateFailed
			c.emit(ctx, event)

			return nil, &cdm.ClusterError{Operation: "bootstrap", Message: status.Message}
		default:
			event.State = cdm.BootstrapStateSucceeded
			c.emit(ctx, event)
			c.logInfo("bootstrap: complete", map[string]interface{}{
				"request_id": requestID,
				"status":     status.Status,
			})

			return status, nil
		}
	}
}

func parseSubmission(body []byte) (*cdm.BootstrapSubmission, error) {
	var submission cdm.BootstrapSubmission

	err := json.Unmarshal(body, &submission)
	if err != nil {
		return nil, fmt.Errorf("parsing bootstrap response: %w", err)
	}

	submission.Raw = body

	return &submission, nil
}

func (c *BootstrapClient) emit(ctx context.Context, event cdm.BootstrapEvent) {
	if c.observer == nil {
		return
	}

	event.Node = c.nodeIP
	event.Time = c.now()
	c.observer.OnBootstrapEvent(ctx, event)
}

func (c *BootstrapClient) logInfo(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Info(msg, fields)
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
