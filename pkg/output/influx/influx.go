// Package influx submits snapshots to an InfluxDB v2 write endpoint in line
// protocol.
package influx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ericogr/enviro-node/pkg/config"
	"github.com/ericogr/enviro-node/pkg/output"
	"github.com/ericogr/enviro-node/pkg/telemetry"
)

const (
	// The write endpoint answers exactly 204 on success; anything else is a
	// reportable failure.
	statusSuccess = http.StatusNoContent
	// diagLimit bounds how much of an error response body is kept for logs.
	diagLimit = 512

	requestTimeout = 10 * time.Second
)

type InfluxOutput struct {
	client  *http.Client
	url     string
	token   string
	node    string
	version string
}

func NewInflux(cfg config.InfluxConfig, node, version string) (output.Output, error) {
	if cfg.URL == "" {
		return nil, errors.New("influx url is required")
	}
	writeURL := fmt.Sprintf("%s/api/v2/write?org=%s&bucket=%s",
		strings.TrimRight(cfg.URL, "/"),
		url.QueryEscape(cfg.Org),
		url.QueryEscape(cfg.Bucket))
	return &InfluxOutput{
		client:  &http.Client{Timeout: requestTimeout},
		url:     writeURL,
		token:   cfg.Token,
		node:    node,
		version: version,
	}, nil
}

// Publish encodes the snapshot and POSTs it. An empty payload (every sensor
// failed this cycle) is still submitted.
func (o *InfluxOutput) Publish(snap telemetry.Snapshot) error {
	payload := telemetry.Encode(snap, o.node, o.version)

	req, err := http.NewRequest(http.MethodPost, o.url, strings.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+o.token)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.ContentLength = int64(len(payload))
	req.Close = true

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	// Whatever the outcome, the body is drained to completion before the
	// connection is dropped; unread bytes poison connection release in the
	// transport.
	defer drain(resp.Body)

	if resp.StatusCode != statusSuccess {
		diag, _ := io.ReadAll(io.LimitReader(resp.Body, diagLimit))
		return fmt.Errorf("write: status %d: %s", resp.StatusCode, strings.TrimSpace(string(diag)))
	}
	return nil
}

func (o *InfluxOutput) Close() error {
	o.client.CloseIdleConnections()
	return nil
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
