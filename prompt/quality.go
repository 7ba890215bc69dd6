package prompt

import (
	"fmt"
	"strings"
)

// FormatCheck reports whether a generated policy follows the numbered,
// sectioned example format.
type FormatCheck struct {
	Numbered   bool
	Structured bool
}

// CheckFormat looks for numbered sections and the example's section names.
func CheckFormat(text string) FormatCheck {
	lower := strings.ToLower(text)
	structured := true
	for _, kw := range []string{"eligibility", "conditions", "process", "timeline"} {
		if !strings.Contains(lower, kw) {
			structured = false
			break
		}
	}
	return FormatCheck{Numbered: hasNumbered(text, 5), Structured: structured}
}

// SupportCheck scores a support reply against the few-shot examples' pattern.
type SupportCheck struct {
	Empathy  bool
	Action   bool
	Timeline bool
}

// Score counts the satisfied checks out of 3.
func (c SupportCheck) Score() int {
	n := 0
	for _, ok := range []bool{c.Empathy, c.Action, c.Timeline} {
		if ok {
			n++
		}
	}
	return n
}

// CheckSupport looks for empathy, action and timeline words.
func CheckSupport(text string) SupportCheck {
	lower := strings.ToLower(text)
	return SupportCheck{
		Empathy:  containsAny(lower, "understand", "apologize", "help"),
		Action:   containsAny(lower, "check", "process", "send", "reset"),
		Timeline: containsAny(lower, "immediately", "hour", "days", "now"),
	}
}

// ReasoningCheck describes a chain-of-thought answer.
type ReasoningCheck struct {
	Steps           bool
	Analysis        bool
	Recommendations bool
}

// CheckReasoning looks for step mentions, requirements and recommendations.
func CheckReasoning(text string) ReasoningCheck {
	lower := strings.ToLower(text)
	steps := false
	for i := 1; i <= 5; i++ {
		if strings.Contains(text, fmt.Sprintf("Step %d", i)) {
			steps = true
			break
		}
	}
	return ReasoningCheck{
		Steps:           steps,
		Analysis:        strings.Contains(lower, "requirement"),
		Recommendations: strings.Contains(lower, "recommend"),
	}
}

func hasNumbered(text string, upTo int) bool {
	for i := 1; i <= upTo; i++ {
		if strings.Contains(text, fmt.Sprintf("%d.", i)) {
			return true
		}
	}
	return false
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
