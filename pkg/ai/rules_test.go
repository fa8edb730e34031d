package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyByRules_Labels(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"offer", "We are pleased to extend an offer with a competitive compensation package", "offer"},
		{"interview", "We'd like to invite you to a phone screen next week", "interview_invite"},
		{"oa hackerrank", "Please complete the HackerRank assessment within 5 days", "oa"},
		{"oa take-home", "Here is your take-home challenge", "oa"},
		{"recruiter reply", "What is your availability to chat about next steps?", "recruiter_reply"},
		{"rejection", "We regret to inform you that we are not moving forward", "rejection"},
		{"auto ack", "Thank you for applying to Acme! We received your application.", "auto_ack"},
		{"no match", "Weekly newsletter: top 10 gardening tips", "other"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := ClassifyByRules(tc.text)
			assert.Equal(t, tc.want, result.Label)
			assert.Equal(t, "rules", result.Source)
		})
	}
}

func TestClassifyByRules_PriorityOrder(t *testing.T) {
	// "offer" outranks rejection wording when both appear.
	result := ClassifyByRules("Unfortunately we cannot raise the offer compensation further")
	assert.Equal(t, "offer", result.Label)

	// Interview wording outranks recruiter chatter.
	result = ClassifyByRules("Can we schedule your onsite interview?")
	assert.Equal(t, "interview_invite", result.Label)
}

func TestClassifyByRules_AlwaysValidLabel(t *testing.T) {
	texts := []string{"", "hello", "OFFER", "random noise 123", "interview"}
	for _, text := range texts {
		result := ClassifyByRules(text)
		_, ok := ValidLabel(result.Label)
		assert.True(t, ok, "label %q must be a known category", result.Label)
	}
}

func TestValidLabel(t *testing.T) {
	label, ok := ValidLabel(" Interview_Invite ")
	assert.True(t, ok)
	assert.Equal(t, "interview_invite", label)

	_, ok = ValidLabel("spam")
	assert.False(t, ok)
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, ClampConfidence(-0.5))
	assert.Equal(t, 1.0, ClampConfidence(1.5))
	assert.Equal(t, 0.82, ClampConfidence(0.82))
}
