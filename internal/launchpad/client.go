// Package launchpad submits constructed workflows to the external execution
// engine over HTTP. Scheduling, retries and persistence are the engine's
// business; this client only hands over the graph.
package launchpad

import (
	"context"
	"fmt"

	"resty.dev/v3"

	"github.com/vk/adsorbgridgo/internal/ctxlog"
	"github.com/vk/adsorbgridgo/internal/workflow"
)

// Client talks to one engine endpoint.
type Client struct {
	http *resty.Client
}

// NewClient builds a client for the engine at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		http: resty.New().SetBaseURL(baseURL),
	}
}

// submitResponse is the engine's acknowledgment of an accepted workflow.
type submitResponse struct {
	WorkflowID string `json:"workflow_id"`
}

// Submit posts the workflow and returns the engine-assigned workflow ID.
func (c *Client) Submit(ctx context.Context, wf *workflow.Workflow) (string, error) {
	var out submitResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(wf).
		SetResult(&out).
		Post("/workflows")
	if err != nil {
		return "", fmt.Errorf("submitting workflow %q: %w", wf.Name(), err)
	}
	if !res.IsSuccess() {
		return "", fmt.Errorf("submitting workflow %q: engine returned %s", wf.Name(), res.Status())
	}
	ctxlog.FromContext(ctx).Info("workflow submitted",
		"name", wf.Name(), "jobs", wf.Len(), "workflow_id", out.WorkflowID)
	return out.WorkflowID, nil
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error { return c.http.Close() }
