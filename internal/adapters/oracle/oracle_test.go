package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"grantwise/internal/core/scoring"
	"grantwise/internal/platform/config"
	perr "grantwise/internal/platform/errors"
)

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1767225600,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(b)
}

func newClient(t *testing.T, timeout time.Duration, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{Enabled: true, BaseURL: srv.URL, APIKey: "k", Model: "test-model", Timeout: timeout})
}

var profile = Request{
	OrganizationType: "nonprofit", FundingAmount: 120000, ExperienceLevel: "intermediate",
	HasPartnership: true, Proposal: "After-school literacy tutoring for 300 students",
}

func TestScoreValid(t *testing.T) {
	var prompt string
	c := newClient(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer k") {
			t.Errorf("missing bearer token")
		}
		var req struct {
			Messages []struct{ Content string } `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) == 2 {
			prompt = req.Messages[1].Content
		}
		_, _ = w.Write([]byte(completion(`{"successProbability": 82.4, "confidence": "high", "recommendations": ["a","b","c","d"]}`)))
	})

	v, err := c.Score(context.Background(), profile)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !v.OK() {
		t.Fatalf("verdict invalid: %s", v.Reason())
	}
	out := v.Output()
	if out.Probability != 82 || out.Confidence != scoring.ConfidenceHigh || len(out.Recommendations) != 4 {
		t.Fatalf("output = %+v", out)
	}
	if !strings.Contains(prompt, "nonprofit") || !strings.Contains(prompt, "literacy tutoring") {
		t.Fatalf("prompt missing profile:\n%s", prompt)
	}
}

func TestScoreShapeFailures(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"three recommendations", `{"successProbability": 60, "confidence": "low", "recommendations": ["a","b","c"]}`},
		{"five recommendations", `{"successProbability": 60, "recommendations": ["a","b","c","d","e"]}`},
		{"string probability", `{"successProbability": "60", "recommendations": ["a","b","c","d"]}`},
		{"missing probability", `{"confidence": "low", "recommendations": ["a","b","c","d"]}`},
		{"unknown confidence", `{"successProbability": 60, "confidence": "certain", "recommendations": ["a","b","c","d"]}`},
		{"non-string recommendation", `{"successProbability": 60, "recommendations": ["a","b","c",4]}`},
		{"blank recommendation", `{"successProbability": 60, "recommendations": ["a","b"," ","d"]}`},
		{"prose", `Sure! Here is my estimate: 70%`},
		{"fenced", "```json\n{\"successProbability\": 60}\n```"},
		{"empty", ``},
		{"trailing brace", `{"successProbability": 60, "recommendations": ["a","b","c","d"]}}`},
		{"trailing bracket", `{"successProbability": 60, "recommendations": ["a","b","c","d"]}]`},
		{"second object", `{"successProbability": 60, "recommendations": ["a","b","c","d"]} {"successProbability": 10}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newClient(t, time.Second, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(completion(tc.content)))
			})
			v, err := c.Score(context.Background(), profile)
			if err != nil {
				t.Fatalf("shape failures are verdicts, not errors: %v", err)
			}
			if v.OK() || v.Reason() == "" {
				t.Fatalf("want Invalid with reason, got %+v", v)
			}
		})
	}
}

func TestParseClampAndDerive(t *testing.T) {
	cases := []struct {
		name     string
		content  string
		wantProb int
		wantConf scoring.Confidence
	}{
		{"above range", `{"successProbability": 140, "recommendations": ["a","b","c","d"]}`, 95, scoring.ConfidenceHigh},
		{"below range", `{"successProbability": -3, "recommendations": ["a","b","c","d"]}`, 25, scoring.ConfidenceLow},
		{"derived medium", `{"successProbability": 75, "recommendations": ["a","b","c","d"]}`, 75, scoring.ConfidenceMedium},
		{"explicit kept", `{"successProbability": 30, "confidence": "medium", "recommendations": ["a","b","c","d"]}`, 30, scoring.ConfidenceMedium},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := Parse(tc.content)
			if !v.OK() {
				t.Fatalf("invalid: %s", v.Reason())
			}
			if v.Output().Probability != tc.wantProb || v.Output().Confidence != tc.wantConf {
				t.Fatalf("output = %+v", v.Output())
			}
		})
	}
}

func TestScoreTransportFailures(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		c := newClient(t, time.Second, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
		})
		_, err := c.Score(context.Background(), profile)
		if perr.CodeOf(err) != perr.ErrorCodeUpstreamUnavailable {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		c := newClient(t, 30*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		defer close(release)

		start := time.Now()
		_, err := c.Score(context.Background(), profile)
		if perr.CodeOf(err) != perr.ErrorCodeUpstreamTimeout {
			t.Fatalf("err = %v, want upstream timeout", err)
		}
		if time.Since(start) > 2*time.Second {
			t.Fatalf("timeout not enforced")
		}
	})

	t.Run("no choices", func(t *testing.T) {
		c := newClient(t, time.Second, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
		})
		v, err := c.Score(context.Background(), profile)
		if err != nil || v.OK() {
			t.Fatalf("v = %+v err = %v", v, err)
		}
	})
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("CORE_ORACLE_API_KEY", "")
	if ConfigFromEnv(configRoot()).Enabled {
		t.Fatalf("oracle should be disabled without a key")
	}
	t.Setenv("CORE_ORACLE_API_KEY", "sk-test")
	t.Setenv("CORE_ORACLE_TIMEOUT", "3s")
	cfg := ConfigFromEnv(configRoot())
	if !cfg.Enabled || cfg.Timeout != 3*time.Second || cfg.Model == "" {
		t.Fatalf("cfg = %+v", cfg)
	}
	t.Setenv("CORE_ORACLE_ENABLED", "false")
	if ConfigFromEnv(configRoot()).Enabled {
		t.Fatalf("explicit disable ignored")
	}
	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatalf("nil client must read as disabled")
	}
}

func configRoot() config.Conf { return config.New() }
