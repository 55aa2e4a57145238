package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotationKeepsOpaquePayload(t *testing.T) {
	raw := `{"type":"expense","amount":20.5,"currency":"USD"}`

	var a Annotation
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Equal(t, AnnotationKindExpense, a.Kind)
	assert.JSONEq(t, raw, string(a.Payload), "payload passes through untouched")

	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestMessageDecodesAnnotation(t *testing.T) {
	raw := `{"id":5,"sender_id":2,"receiver_id":1,"content":"lunch was 20","created_at":"2026-08-29T10:00:00Z","ai_analysis":{"type":"task","item":"pay back"}}`

	var m Message
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	require.NotNil(t, m.Annotation)
	assert.Equal(t, AnnotationKindTask, m.Annotation.Kind)
}

func TestInboundFrameToMessage(t *testing.T) {
	var frame InboundFrame
	require.NoError(t, json.Unmarshal([]byte(
		`{"type":"message","id":9,"sender_id":2,"receiver_id":1,"content":"hi","created_at":"2026-08-29T10:00:00Z"}`,
	), &frame))

	msg := frame.Message()
	assert.Equal(t, int64(9), msg.ID)
	assert.Equal(t, int64(2), msg.SenderID)
	assert.Equal(t, MessageStatusRead, msg.Status, "inbound messages arrive already read")
}
