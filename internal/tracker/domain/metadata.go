package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Metadata is the semi-structured side-channel stored on a message. Only the
// "classification" and "triage" keys are interpreted here; anything else other
// writers put in the document is carried through untouched on read-merge-write.
type Metadata map[string]json.RawMessage

// Value implements driver.Valuer
func (m Metadata) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = Metadata{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	if len(bytes) == 0 {
		*m = Metadata{}
		return nil
	}
	return json.Unmarshal(bytes, m)
}

const (
	metaKeyClassification = "classification"
	metaKeyTriage         = "triage"
)

// ClassificationMeta records how a message got its label.
type ClassificationMeta struct {
	Source     string     `json:"source"`
	Confidence *float64   `json:"confidence,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Raw        string     `json:"raw,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// TriageClaim is the optimistic reviewer lock kept alongside classification
// metadata.
type TriageClaim struct {
	InProgress bool      `json:"in_progress"`
	ClaimedBy  string    `json:"claimed_by"`
	ClaimedAt  time.Time `json:"claimed_at"`
}

// Classification decodes the classification sub-object, if present.
func (m Metadata) Classification() (*ClassificationMeta, bool) {
	raw, ok := m[metaKeyClassification]
	if !ok {
		return nil, false
	}
	var cm ClassificationMeta
	if err := json.Unmarshal(raw, &cm); err != nil {
		return nil, false
	}
	return &cm, true
}

// Triage decodes the triage sub-object, if present.
func (m Metadata) Triage() (*TriageClaim, bool) {
	raw, ok := m[metaKeyTriage]
	if !ok {
		return nil, false
	}
	var tc TriageClaim
	if err := json.Unmarshal(raw, &tc); err != nil {
		return nil, false
	}
	return &tc, true
}

// WithClassification returns the document with the classification sub-object
// replaced, allocating when the receiver is nil.
func (m Metadata) WithClassification(cm ClassificationMeta) Metadata {
	return m.set(metaKeyClassification, cm)
}

// WithTriage returns the document with the triage sub-object replaced.
func (m Metadata) WithTriage(tc TriageClaim) Metadata {
	return m.set(metaKeyTriage, tc)
}

// WithoutTriage returns the document with any triage claim removed. Used when
// a classification is finalized: finalization always clears the claim,
// regardless of holder.
func (m Metadata) WithoutTriage() Metadata {
	if m == nil {
		return Metadata{}
	}
	delete(m, metaKeyTriage)
	return m
}

func (m Metadata) set(key string, v interface{}) Metadata {
	out := m
	if out == nil {
		out = Metadata{}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return out
	}
	out[key] = raw
	return out
}
