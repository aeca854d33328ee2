package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyHandler struct {
	failures int
	calls    int
	err      error
	panics   bool
}

func (h *flakyHandler) Topic() string { return "records" }

func (h *flakyHandler) Handle(context.Context, []byte) error {
	h.calls++
	if h.panics {
		panic("boom")
	}
	if h.calls <= h.failures {
		if h.err != nil {
			return h.err
		}
		return errors.New("transient")
	}
	return nil
}

func TestHandleWithRetryRecovers(t *testing.T) {
	h := &flakyHandler{failures: 2}
	attempts, err := handleWithRetry(context.Background(), h, nil, 3, time.Millisecond, 2*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestHandleWithRetryGivesUp(t *testing.T) {
	h := &flakyHandler{failures: 10}
	attempts, err := handleWithRetry(context.Background(), h, nil, 2, time.Millisecond, time.Millisecond)
	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, h.calls)
}

func TestHandleWithRetrySkipsPermanent(t *testing.T) {
	h := &flakyHandler{failures: 10, err: fmt.Errorf("decode: %w", ErrPermanent)}
	attempts, err := handleWithRetry(context.Background(), h, nil, 5, time.Millisecond, time.Millisecond)
	assert.ErrorIs(t, err, ErrPermanent)
	assert.Equal(t, 1, attempts)
}

func TestHandleWithRetryTurnsPanicIntoError(t *testing.T) {
	h := &flakyHandler{panics: true}
	_, err := handleWithRetry(context.Background(), h, nil, 0, time.Millisecond, time.Millisecond)
	assert.ErrorContains(t, err, "handler panic")
}

func TestBackoffWithJitterBounds(t *testing.T) {
	min, max := 10*time.Millisecond, 80*time.Millisecond
	for attempt := 1; attempt <= 40; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		assert.LessOrEqual(t, d, max)
		assert.Greater(t, d, time.Duration(0))
	}
	d := backoffWithJitter(min, max, 1)
	assert.GreaterOrEqual(t, d, min/2)
}

func TestEncodeValue(t *testing.T) {
	b, err := encodeValue([]byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, "raw", string(b))

	b, err = encodeValue(map[string]int{"n": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(b))

	_, err = encodeValue(func() {})
	assert.Error(t, err)
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Gzip, parseCompression(""))
}

func TestConstructorsRequireBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
	_, err = NewConsumer(nil)
	assert.Error(t, err)

	c, err := NewConsumer(nil, WithConsumerBrokers([]string{"localhost:9092"}))
	require.NoError(t, err)
	require.NoError(t, c.RegisterHandler(&flakyHandler{}))
	assert.Error(t, c.RegisterHandler(&flakyHandler{}))
}
