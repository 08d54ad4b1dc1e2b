// Package client talks to the public form API: it fetches published forms
// and performs the wizard's final submission.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/parisxmas/OxiDB/OxiForms/internal/jsonx"
	"github.com/parisxmas/OxiDB/OxiForms/internal/models"
	"github.com/parisxmas/OxiDB/OxiForms/internal/wizard"
)

// ErrFormNotFound is returned by FetchForm for unknown or unpublished slugs.
var ErrFormNotFound = errors.New("client: form not found")

// UnavailableReason replaces the endpoint message when the form is gone or
// no longer published.
const UnavailableReason = "This form cannot accept submissions right now"

// maxBody bounds response bodies read by the client.
const maxBody = 4 << 20

// PublicForm is a published form with its wizard steps.
type PublicForm struct {
	Form  models.Form   `json:"form"`
	Steps []wizard.Step `json:"steps"`
}

// Client is safe for concurrent use.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for the API rooted at baseURL. A nil hc uses a
// client with a 30s timeout.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

// FetchForm loads a published form by slug.
func (c *Client) FetchForm(ctx context.Context, slug string) (*PublicForm, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/forms/"+url.PathEscape(slug), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: fetch form: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("client: read form: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrFormNotFound
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("client: fetch form: unexpected status %d", resp.StatusCode)
	}

	var out PublicForm
	if err := jsonx.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("client: decode form: %w", err)
	}
	if len(out.Steps) == 0 {
		return nil, fmt.Errorf("client: form %q has no steps", slug)
	}
	return &out, nil
}

type submitBody struct {
	FormID string `json:"formId"`
	Data   any    `json:"data"`
}

type submitResponse struct {
	Success      bool   `json:"success"`
	SubmissionID int64  `json:"submissionId"`
	Message      string `json:"message"`
	Error        string `json:"error"`
	Code         string `json:"code"`
}

// Submit posts the aggregated wizard data. It makes exactly one request.
// Refusals come back as *wizard.RejectedError.
func (c *Client) Submit(ctx context.Context, formID string, data any) (*wizard.Receipt, error) {
	payload, err := jsonx.Marshal(submitBody{FormID: formID, Data: data})
	if err != nil {
		return nil, fmt.Errorf("client: encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/forms/submit", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: submit: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	var out submitResponse
	decodeErr := jsonx.Unmarshal(body, &out)

	if resp.StatusCode/100 != 2 {
		rejected := &wizard.RejectedError{Status: resp.StatusCode}
		if decodeErr == nil {
			rejected.Code = out.Code
			rejected.Reason = out.Error
		}
		switch rejected.Code {
		case "form_not_found", "form_not_available":
			rejected.Reason = UnavailableReason
		}
		return nil, rejected
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("client: decode submit response: %w", decodeErr)
	}
	return &wizard.Receipt{SubmissionID: out.SubmissionID, Message: out.Message}, nil
}

var _ wizard.Submitter = (*Client)(nil)
