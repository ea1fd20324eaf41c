// Package scoring implements the ScoringClient port against the remote
// résumé scoring HTTP API.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gregjones/httpcache"
	"github.com/tidwall/gjson"

	"github.com/ericfisherdev/jobmatch/internal/domain/model"
	"github.com/ericfisherdev/jobmatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ScoringClient = (*Client)(nil)

// Client implements driven.ScoringClient using resty.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient creates a scoring client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. resty (JSON encoding, bearer auth)
//
// httpcache keys entries by URL alone, so every request carries
// Cache-Control: no-cache. A stored response is never served for another
// key or after the balance has moved.
//
// timeout bounds each individual HTTP call.
func NewClient(baseURL string, timeout time.Duration) *Client {
	httpClient := &http.Client{
		Transport: httpcache.NewMemoryCacheTransport(),
		Timeout:   timeout,
	}
	return NewClientWithHTTPClient(httpClient, baseURL)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// Intended for tests that point the client at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) *Client {
	base := strings.TrimRight(baseURL, "/")
	r := resty.NewWithClient(httpClient).
		SetBaseURL(base).
		SetHeader("Accept", "application/json").
		SetHeader("Cache-Control", "no-cache")

	return &Client{http: r, baseURL: base}
}

type resumeResponse struct {
	ResumeText string `json:"resume_text"`
}

type evaluateRequest struct {
	JobText       string `json:"job_text"`
	CandidateText string `json:"candidate_text"`
}

type creditsResponse struct {
	Credits int    `json:"credits"`
	Email   string `json:"email"`
}

type authStatusResponse struct {
	APIKey string `json:"apiKey"`
	Email  string `json:"email"`
}

// FetchResume retrieves the résumé text stored for the account.
func (c *Client) FetchResume(ctx context.Context, apiKey string) (string, error) {
	var out resumeResponse
	resp, err := c.authorized(ctx, apiKey).
		SetResult(&out).
		Get("/api/me/resume")
	if err != nil {
		return "", fmt.Errorf("fetch resume: %w", err)
	}
	if err := classify(resp); err != nil {
		return "", fmt.Errorf("fetch resume: %w", err)
	}
	return out.ResumeText, nil
}

// Evaluate posts the job and résumé texts for scoring.
func (c *Client) Evaluate(ctx context.Context, apiKey, jobText, resumeText string) (model.EvaluationResult, error) {
	var out model.EvaluationResult
	resp, err := c.authorized(ctx, apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(evaluateRequest{JobText: jobText, CandidateText: resumeText}).
		SetResult(&out).
		Post("/api/evaluate")
	if err != nil {
		return model.EvaluationResult{}, fmt.Errorf("evaluate: %w", err)
	}
	if err := classify(resp); err != nil {
		return model.EvaluationResult{}, fmt.Errorf("evaluate: %w", err)
	}
	return out, nil
}

// FetchCredits retrieves the remaining credit balance.
func (c *Client) FetchCredits(ctx context.Context, apiKey string) (model.CreditLookup, error) {
	var out creditsResponse
	resp, err := c.authorized(ctx, apiKey).
		SetResult(&out).
		Get("/api/me/credits")
	if err != nil {
		return model.CreditLookup{}, fmt.Errorf("fetch credits: %w", err)
	}
	if err := classify(resp); err != nil {
		return model.CreditLookup{}, fmt.Errorf("fetch credits: %w", err)
	}
	return model.CreditLookup{Credits: out.Credits, Email: out.Email}, nil
}

// AuthPageURL returns the interactive magic-link page for token.
func (c *Client) AuthPageURL(token string) string {
	return c.baseURL + "/auth/extension?token=" + token
}

// CheckAuthStatus asks whether the handshake for token has completed.
// A 2xx without an issued key is reported as an error so pollers keep going.
func (c *Client) CheckAuthStatus(ctx context.Context, token string) (model.IssuedCredential, error) {
	var out authStatusResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("token", token).
		SetResult(&out).
		Get("/api/auth/extension")
	if err != nil {
		return model.IssuedCredential{}, fmt.Errorf("check auth status: %w", err)
	}
	if err := classify(resp); err != nil {
		return model.IssuedCredential{}, fmt.Errorf("check auth status: %w", err)
	}
	if out.APIKey == "" {
		return model.IssuedCredential{}, errors.New("check auth status: no api key issued yet")
	}
	return model.IssuedCredential{APIKey: out.APIKey, Email: out.Email}, nil
}

// authorized starts a request carrying the bearer token when one is present.
func (c *Client) authorized(ctx context.Context, apiKey string) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if apiKey != "" {
		req.SetAuthToken(apiKey)
	}
	return req
}

// classify maps a response onto the port's error vocabulary.
func classify(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		return driven.ErrUnauthorized
	case http.StatusPaymentRequired:
		return driven.ErrInsufficientCredits
	}

	return &driven.StatusError{
		StatusCode: resp.StatusCode(),
		Message:    gjson.GetBytes(resp.Body(), "error").String(),
	}
}
