package producer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/sports-betslip/pkg/contracts/events"
)

type recordingWriter struct{ msgs []kafka.Message }

func (r *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	r.msgs = append(r.msgs, msgs...)
	return nil
}

func TestPublishSlipPlaced(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{Writer: w, Topic: "slip_placed"}

	err := p.PublishSlipPlaced(context.Background(), events.SlipPlaced{SlipID: "s-1", Mode: "parlay", TotalOdds: 377})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "s-1", string(w.msgs[0].Key))

	var got events.SlipPlaced
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, 377, got.TotalOdds)
	assert.NotZero(t, got.TsUnixMs)
}
