package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_UnknownKeysSurviveMerge(t *testing.T) {
	var md Metadata
	require.NoError(t, md.Scan([]byte(`{"notes":"hand-written","classification":{"source":"rules"}}`)))

	md = md.WithClassification(ClassificationMeta{Source: "llm"})
	md = md.WithTriage(TriageClaim{InProgress: true, ClaimedBy: "alice", ClaimedAt: time.Now()})

	// The foreign key written by another tool is still there.
	assert.Equal(t, json.RawMessage(`"hand-written"`), md["notes"])

	cm, ok := md.Classification()
	require.True(t, ok)
	assert.Equal(t, "llm", cm.Source)
}

func TestMetadata_WithoutTriage(t *testing.T) {
	md := Metadata{}.WithTriage(TriageClaim{InProgress: true, ClaimedBy: "alice", ClaimedAt: time.Now()})
	_, ok := md.Triage()
	require.True(t, ok)

	md = md.WithoutTriage()
	_, ok = md.Triage()
	assert.False(t, ok)

	// Nil receiver is fine too.
	var nilMD Metadata
	assert.NotNil(t, nilMD.WithoutTriage())
}

func TestMetadata_NilReceiversAllocate(t *testing.T) {
	var md Metadata
	md = md.WithClassification(ClassificationMeta{Source: "rules"})
	cm, ok := md.Classification()
	require.True(t, ok)
	assert.Equal(t, "rules", cm.Source)
}

func TestMetadata_ValueAndScanRoundTrip(t *testing.T) {
	confidence := 0.75
	now := time.Now().UTC().Truncate(time.Second)
	md := Metadata{}.WithClassification(ClassificationMeta{
		Source:     "llm",
		Confidence: &confidence,
		UpdatedAt:  &now,
	})

	value, err := md.Value()
	require.NoError(t, err)

	var decoded Metadata
	require.NoError(t, decoded.Scan(value))

	cm, ok := decoded.Classification()
	require.True(t, ok)
	assert.Equal(t, "llm", cm.Source)
	require.NotNil(t, cm.Confidence)
	assert.Equal(t, 0.75, *cm.Confidence)
}

func TestMetadata_EmptyValue(t *testing.T) {
	var md Metadata
	value, err := md.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", value)
}
