// Package client talks to the MedFund API. Client is a thin typed wrapper over
// the HTTP endpoints; Manager layers the request lifecycle on top of a shared
// Store so every view built on that store sees the server's canonical state.
package client

import (
	"MedFund-Backend/domain"
	"MedFund-Backend/pkg/lifecycle"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Session identifies the caller. It is fixed for the lifetime of a Client.
type Session struct {
	Token  string
	UserID string
	Role   string
}

type Client struct {
	baseURL string
	http    *http.Client
	session Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, session Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		session: session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Session() Session { return c.session }

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(bytes.TrimSpace(raw), &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Message = env.Message
			apiErr.Detail = env.Error
		}
		return apiErr
	}

	if out != nil {
		if decodeErr != nil {
			return fmt.Errorf("%w: decode response: %w", ErrServer, decodeErr)
		}
		if len(env.Data) == 0 {
			return nil
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: decode data: %w", ErrServer, err)
		}
	}
	return nil
}

func (c *Client) ListRequests(ctx context.Context) ([]domain.DonationRequestResponse, error) {
	var out []domain.DonationRequestResponse
	err := c.do(ctx, http.MethodGet, "/admin/GetAllDonationRequest", nil, &out)
	return out, err
}

func (c *Client) GetRequest(ctx context.Context, id string) (domain.DonationRequestResponse, error) {
	var out domain.DonationRequestResponse
	err := c.do(ctx, http.MethodGet, "/admin/GetSingleDonationRequest/"+url.PathEscape(id), nil, &out)
	return out, err
}

// UpdateStatus asks the server for a transition. A positive version is sent as
// If-Match so the write fails if the request changed since it was read.
func (c *Client) UpdateStatus(ctx context.Context, id string, status lifecycle.Status, version int) (domain.StatusUpdateResult, error) {
	header := http.Header{}
	if version > 0 {
		header.Set("If-Match", strconv.Quote(strconv.Itoa(version)))
	}

	var out domain.StatusUpdateResult
	path := "/admin/UpdateRequestStatus/" + url.PathEscape(id) + "/" + url.PathEscape(status.String())
	err := c.do(ctx, http.MethodPut, path, header, &out)
	return out, err
}

func (c *Client) DeleteRequest(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/admin/deleteDonationRequest/"+url.PathEscape(id), nil, nil)
}

func (c *Client) RequestDonations(ctx context.Context, id string) (domain.RequestDonationsResponse, error) {
	var out domain.RequestDonationsResponse
	err := c.do(ctx, http.MethodGet, "/admin/GetRequestDonations/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) DonationStatus(ctx context.Context, id string) (domain.DonationStatusResponse, error) {
	var out domain.DonationStatusResponse
	err := c.do(ctx, http.MethodGet, "/Home/GetdonationStatus/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) ApprovedRequests(ctx context.Context) ([]domain.DonationRequestResponse, error) {
	var out []domain.DonationRequestResponse
	err := c.do(ctx, http.MethodGet, "/Home/GetApprovedRequests", nil, &out)
	return out, err
}
