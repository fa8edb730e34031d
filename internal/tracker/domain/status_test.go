package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusForClassification(t *testing.T) {
	cases := map[string]ApplicationStatus{
		"auto_ack":         StatusAutoAck,
		"recruiter_reply":  StatusRecruiterReplied,
		"oa":               StatusOAAssigned,
		"interview_invite": StatusInterviewScheduled,
		"rejection":        StatusRejected,
		"offer":            StatusOffer,
	}
	for label, want := range cases {
		status, ok := StatusForClassification(label)
		assert.True(t, ok, label)
		assert.Equal(t, want, status)
	}

	// Labels without a pipeline meaning leave the status alone.
	_, ok := StatusForClassification("not_job_related")
	assert.False(t, ok)
	_, ok = StatusForClassification("other")
	assert.False(t, ok)
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusOffer.Terminal())
	assert.False(t, StatusApplied.Terminal())
	assert.False(t, StatusInterviewScheduled.Terminal())
}
