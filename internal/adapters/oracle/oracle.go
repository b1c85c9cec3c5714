// Package oracle calls the remote scoring model through an OpenAI-compatible
// chat completions endpoint and checks the reply shape strictly
package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"grantwise/internal/core/scoring"
	"grantwise/internal/core/version"
	"grantwise/internal/platform/config"
	perr "grantwise/internal/platform/errors"
	pstrings "grantwise/internal/platform/strings"

	openai "github.com/sashabaranov/go-openai"
)

// Config for the oracle client
type Config struct {
	Enabled     bool
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float32
}

// ConfigFromEnv reads CORE_ORACLE_*. The oracle is enabled by default only
// when an API key is present
func ConfigFromEnv(root config.Conf) Config {
	c := root.Prefix("CORE_ORACLE_")
	key := c.MayString("API_KEY", "")
	return Config{
		Enabled:     c.MayBool("ENABLED", key != ""),
		BaseURL:     c.MayString("BASE_URL", "https://api.openai.com/v1"),
		APIKey:      key,
		Model:       c.MayString("MODEL", openai.GPT4oMini),
		Timeout:     c.MayDuration("TIMEOUT", 8*time.Second),
		Temperature: float32(c.MayFloat64("TEMPERATURE", 0.2)),
	}
}

// Request is the applicant profile sent to the oracle
type Request struct {
	OrganizationType  string  `json:"organizationType"`
	FundingAmount     float64 `json:"fundingAmount"`
	ExperienceLevel   string  `json:"experienceLevel"`
	HasPartnership    bool    `json:"hasPartnership"`
	HasPreviousGrants bool    `json:"hasPreviousGrants"`

	// Proposal is an optional excerpt, clipped before sending
	Proposal string `json:"-"`
}

// Client is the scoring oracle
type Client struct {
	api     *openai.Client
	cfg     Config
	timeout time.Duration
}

// New builds a client; the http client carries the user agent and no timeout
// of its own since each call is bounded by cfg.Timeout
func New(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{Transport: uaTransport{next: http.DefaultTransport}}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	return &Client{api: openai.NewClientWithConfig(oc), cfg: cfg, timeout: cfg.Timeout}
}

// Enabled reports whether the orchestrator should try the oracle
func (c *Client) Enabled() bool { return c != nil && c.cfg.Enabled }

// Timeout is the bound on one Score call
func (c *Client) Timeout() time.Duration { return c.timeout }

const systemPrompt = `You estimate the probability that a grant application succeeds.
Reply with one JSON object and nothing else:
{"successProbability": <number 0-100>, "confidence": "high" | "medium" | "low", "recommendations": [<exactly 4 short strings>]}`

func prompt(r Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Organization type: %s\n", r.OrganizationType)
	fmt.Fprintf(&b, "Requested funding: $%.0f\n", r.FundingAmount)
	fmt.Fprintf(&b, "Grant-writing experience: %s\n", r.ExperienceLevel)
	fmt.Fprintf(&b, "Has partnership: %t\n", r.HasPartnership)
	fmt.Fprintf(&b, "Has received grants before: %t\n", r.HasPreviousGrants)
	if p := strings.TrimSpace(r.Proposal); p != "" {
		fmt.Fprintf(&b, "Proposal excerpt:\n%s\n", pstrings.Clip(p, 2000))
	}
	return b.String()
}

// Score asks the oracle for a prediction. Transport failures return an
// upstream-classed error; a reply that arrives but fails the shape check
// returns an Invalid verdict and a nil error
func (c *Client) Score(ctx context.Context, r Request) (Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt(r)},
		},
	})
	if err != nil {
		return Verdict{}, classify(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return Invalid("no choices in completion"), nil
	}
	return Parse(resp.Choices[0].Message.Content), nil
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return perr.FromUpstream(ctx.Err(), "oracle call")
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return perr.Newf(perr.ErrorCodeUpstreamUnavailable, "oracle status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return perr.Newf(perr.ErrorCodeUpstreamUnavailable, "oracle status %d", reqErr.HTTPStatusCode)
	}
	return perr.FromUpstream(err, "oracle call")
}

// RequestFor maps a scorer profile onto the oracle request
func RequestFor(p scoring.Profile, proposal string) Request {
	return Request{
		OrganizationType:  string(p.OrgType),
		FundingAmount:     p.Amount,
		ExperienceLevel:   string(p.Experience),
		HasPartnership:    p.Partnership,
		HasPreviousGrants: p.PriorGrants,
		Proposal:          proposal,
	}
}

type uaTransport struct{ next http.RoundTripper }

func (t uaTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("User-Agent", version.UserAgent())
	return t.next.RoundTrip(r)
}
