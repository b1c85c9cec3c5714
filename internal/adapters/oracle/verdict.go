package oracle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"grantwise/internal/core/scoring"
)

// RecommendationCount is the exact number of recommendations a reply must carry
const RecommendationCount = 4

// Output is a validated oracle prediction
type Output struct {
	Probability     int
	Confidence      scoring.Confidence
	Recommendations []string
}

// Verdict is the result of checking a reply: Valid with an Output, or
// Invalid with the reason the shape was rejected
type Verdict struct {
	out    Output
	reason string
	ok     bool
}

// Valid wraps a checked output
func Valid(o Output) Verdict { return Verdict{out: o, ok: true} }

// Invalid records why a reply was rejected
func Invalid(format string, a ...any) Verdict {
	return Verdict{reason: fmt.Sprintf(format, a...)}
}

// OK reports whether the verdict is Valid
func (v Verdict) OK() bool { return v.ok }

// Output returns the checked output; only meaningful when OK
func (v Verdict) Output() Output { return v.out }

// Reason returns why the verdict is Invalid
func (v Verdict) Reason() string { return v.reason }

type reply struct {
	SuccessProbability *float64 `json:"successProbability"`
	Confidence         *string  `json:"confidence"`
	Recommendations    []string `json:"recommendations"`
}

// Parse checks a reply body. A string where a number belongs, a wrong
// recommendation count, a blank recommendation or an unknown confidence is
// Invalid; a missing confidence is derived from the clamped probability
func Parse(content string) Verdict {
	body := strings.TrimSpace(content)
	if body == "" {
		return Invalid("empty reply")
	}
	var r reply
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	if err := dec.Decode(&r); err != nil {
		return Invalid("decode: %v", err)
	}
	if err := dec.Decode(&json.RawMessage{}); err != io.EOF {
		return Invalid("trailing data after reply object")
	}
	if r.SuccessProbability == nil {
		return Invalid("successProbability missing")
	}
	if len(r.Recommendations) != RecommendationCount {
		return Invalid("recommendations: got %d, want %d", len(r.Recommendations), RecommendationCount)
	}
	recs := make([]string, len(r.Recommendations))
	for i, s := range r.Recommendations {
		if strings.TrimSpace(s) == "" {
			return Invalid("recommendations[%d] is blank", i)
		}
		recs[i] = s
	}

	prob := scoring.Clamp(*r.SuccessProbability)
	conf := scoring.Derive(prob)
	if r.Confidence != nil {
		conf = scoring.Confidence(*r.Confidence)
		if !conf.Valid() {
			return Invalid("confidence %q not one of high, medium, low", *r.Confidence)
		}
	}
	return Valid(Output{Probability: prob, Confidence: conf, Recommendations: recs})
}
