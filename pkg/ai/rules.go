package ai

import "regexp"

// rule pairs a label with the pattern that selects it. Order matters: the
// first matching rule wins.
type rule struct {
	label   string
	pattern *regexp.Regexp
}

// rules is evaluated top to bottom against the full text. Patterns and
// priority are fixed so the fallback stays deterministic.
var rules = []rule{
	{"offer", regexp.MustCompile(`(?i)\boffer\b|compensation|package`)},
	{"interview_invite", regexp.MustCompile(`(?i)\b(interview|invite|phone screen|onsite|loop)\b`)},
	{"oa", regexp.MustCompile(`(?i)(hacker ?rank|codility|codesignal|karat|online assessment|challenge|take-?home)`)},
	{"recruiter_reply", regexp.MustCompile(`(?i)(connect|schedule|chat|next steps|availability)`)},
	{"rejection", regexp.MustCompile(`(?i)(regret to inform|unfortunately|not moving forward)`)},
	{"auto_ack", regexp.MustCompile(`(?i)(thank you for applying|we received your application|application received)`)},
}

// ClassifyByRules runs the deterministic fallback. The result carries no
// confidence and is always attributed to "rules".
func ClassifyByRules(text string) Classification {
	for _, r := range rules {
		if r.pattern.MatchString(text) {
			return Classification{Label: r.label, Source: "rules"}
		}
	}
	return Classification{Label: "other", Source: "rules"}
}
