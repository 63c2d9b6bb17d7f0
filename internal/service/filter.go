package service

import (
	"regexp"
	"strings"
)

// Content filter for inbound texts. Filtering runs before persistence:
// a rejected message is never written to the transcript.

// shortAllow lists short messages that bypass the minimum-length check.
var shortAllow = map[string]bool{
	"hi": true, "yo": true, "ok": true, "no": true, "ty": true,
}

// spamKeywords flag promotional texts. The question override below
// rescues legitimate questions that happen to contain one of these
// ("What is free will?").
var spamKeywords = []string{
	"winner",
	"prize",
	"claim",
	"free",
	"cash now",
	"click here",
	"act now",
	"limited time",
	"congratulations",
	"selected to receive",
	"urgent reply",
}

// questionRe matches question or philosophical phrasing. Texts that
// match are never classified as spam regardless of keywords.
var questionRe = regexp.MustCompile(`(?i)^(what|who|whom|whose|why|how|when|where|which|is|are|was|were|do|does|did|can|could|should|would|will|tell me|explain)\b`)

// CheckContent validates an inbound text. It returns (false, reason)
// for messages that should be dropped before any persistence: outside
// the 2..500 length bounds (with the short allow-list bypass) or
// matching the spam keyword list without question phrasing.
func CheckContent(text string) (bool, string) {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	if len(trimmed) < 2 && !shortAllow[lower] {
		return false, "too_short"
	}
	if len(trimmed) > 500 {
		return false, "too_long"
	}
	if questionRe.MatchString(trimmed) || strings.HasSuffix(trimmed, "?") {
		return true, ""
	}
	for _, kw := range spamKeywords {
		if strings.Contains(lower, kw) {
			return false, "spam"
		}
	}
	return true, ""
}
