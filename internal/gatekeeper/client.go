package gatekeeper

import (
	types "MuseLink/pkg"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client talks to a local MuseTalk gatekeeper: one HTTP POST to submit a
// job, then one websocket subscription per job to learn its outcome.
type Client struct {
	baseURL string
	httpc   *http.Client
	dialer  *websocket.Dialer
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a gatekeeper client from config.
func NewClient(cfg types.GatekeeperConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		dialer:  websocket.DefaultDialer,
		timeout: time.Duration(cfg.ResultTimeoutSec) * time.Second,
		logger:  logger,
	}
}

// ResultTimeout returns the configured wait for a completion message.
func (c *Client) ResultTimeout() time.Duration {
	return c.timeout
}

// Submit sends one job request and returns the job handle the gatekeeper
// assigned. The handle is used for exactly one completion subscription.
func (c *Client) Submit(ctx context.Context, req *JobRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrSubmission, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: gatekeeper returned %d: %s", ErrSubmission, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var submitResp submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrSubmission, err)
	}
	if submitResp.JobID == "" {
		return "", fmt.Errorf("%w: response contained no job id", ErrSubmission)
	}

	c.logger.Info("Job submitted",
		zap.String("job_id", submitResp.JobID),
		zap.String("video", req.VideoPath),
		zap.String("audio", req.AudioPath),
	)

	return submitResp.JobID, nil
}

// Subscribe opens the per-job completion channel. It must be called
// immediately after Submit so no completion push can be missed.
func (c *Client) Subscribe(ctx context.Context, jobID string) (*Subscription, error) {
	wsURL, err := c.resultURL(jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	conn, resp, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnection, wsURL, err)
	}

	c.logger.Debug("Completion channel opened", zap.String("job_id", jobID))

	return &Subscription{
		jobID:  jobID,
		conn:   conn,
		logger: c.logger,
	}, nil
}

// resultURL maps the HTTP base URL to the websocket endpoint for a job.
func (c *Client) resultURL(jobID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/" + jobID
	return u.String(), nil
}

// Subscription is a one-shot completion channel for a single job.
type Subscription struct {
	jobID  string
	conn   *websocket.Conn
	logger *zap.Logger
}

// Await blocks until the gatekeeper pushes the job's outcome, the channel
// fails, the timeout elapses, or ctx is cancelled; whichever settles first
// wins and every other path is torn down. The connection is closed on all
// paths, so a late message on a timed-out subscription is never observed.
func (s *Subscription) Await(ctx context.Context, timeout time.Duration) (*Outcome, error) {
	type readResult struct {
		data []byte
		err  error
	}
	readCh := make(chan readResult, 1)

	go func() {
		_, data, err := s.conn.ReadMessage()
		readCh <- readResult{data: data, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-readCh:
		s.conn.Close()
		if r.err != nil {
			return nil, fmt.Errorf("%w: job %s: %v", ErrConnection, s.jobID, r.err)
		}
		return parseOutcome(r.data)

	case <-timer.C:
		// Closing the socket unblocks the reader goroutine; its result
		// lands in the buffered channel and is discarded.
		s.conn.Close()
		s.logger.Warn("Gave up waiting for job result",
			zap.String("job_id", s.jobID),
			zap.Duration("timeout", timeout),
		)
		return nil, fmt.Errorf("%w: job %s after %s", ErrTimeout, s.jobID, timeout)

	case <-ctx.Done():
		s.conn.Close()
		return nil, ctx.Err()
	}
}

// Close tears the channel down. Safe to call after Await on any path.
func (s *Subscription) Close() error {
	return s.conn.Close()
}

func parseOutcome(data []byte) (*Outcome, error) {
	var msg resultMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	switch msg.Format {
	case "error":
		return &Outcome{Err: msg.Error}, nil
	case "filePath":
		if msg.Data == "" {
			return nil, fmt.Errorf("%w: success message without a result path", ErrParse)
		}
		return &Outcome{ResultPath: msg.Data, Filename: msg.Filename}, nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrParse, msg.Format)
	}
}
