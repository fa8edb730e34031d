package domain

// ApplicationStatus tracks where an application thread sits in its lifecycle.
type ApplicationStatus string

const (
	StatusApplied            ApplicationStatus = "applied"
	StatusAutoAck            ApplicationStatus = "auto_ack"
	StatusRecruiterReplied   ApplicationStatus = "recruiter_replied"
	StatusOAAssigned         ApplicationStatus = "oa_assigned"
	StatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	StatusRejected           ApplicationStatus = "rejected"
	StatusOffer              ApplicationStatus = "offer"
)

// statusByClassification maps a classification label to the status it drives.
// Labels with no entry (other, not_job_related) leave the status unchanged.
var statusByClassification = map[string]ApplicationStatus{
	"auto_ack":         StatusAutoAck,
	"recruiter_reply":  StatusRecruiterReplied,
	"oa":               StatusOAAssigned,
	"interview_invite": StatusInterviewScheduled,
	"rejection":        StatusRejected,
	"offer":            StatusOffer,
}

// StatusForClassification returns the target status for a classification
// label, or ok=false when the label drives no transition. Terminal statuses
// are not protected: a later classification may overwrite rejected/offer,
// matching the observed source behavior.
func StatusForClassification(label string) (ApplicationStatus, bool) {
	s, ok := statusByClassification[label]
	return s, ok
}

// Terminal reports whether no further transition is defined out of s.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusRejected || s == StatusOffer
}

// RepliedStatuses are the statuses counted as a company response in insights.
var RepliedStatuses = []ApplicationStatus{
	StatusRecruiterReplied,
	StatusOAAssigned,
	StatusInterviewScheduled,
	StatusOffer,
}
