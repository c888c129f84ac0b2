package kafka_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	kafkax "github.com/afterclass/lessons-api/internal/kafka"
)

func waitClosed(t *testing.T, p *kafkax.Producer) {
	t.Helper()
	done := make(chan struct{})
	go func() { p.WaitClosed(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "producer did not shut down")
	}
}

// Shutdown runs Close and context cancellation back to back; neither order
// may panic or hang, however the flush loop interleaves with them.
func TestProducerCloseThenCancel(t *testing.T) {
	for i := 0; i < 25; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		p := kafkax.NewProducer([]string{"localhost:9"}, "orders-test", 4)
		p.Start(ctx)
		p.Close()
		cancel()
		waitClosed(t, p)
	}
}

func TestProducerCancelThenClose(t *testing.T) {
	for i := 0; i < 25; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		p := kafkax.NewProducer([]string{"localhost:9"}, "orders-test", 4)
		p.Start(ctx)
		cancel()
		p.Close()
		waitClosed(t, p)
	}
}

func TestProducerCloseIsIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := kafkax.NewProducer([]string{"localhost:9"}, "orders-test", 4)
	p.Start(ctx)
	p.Close()
	p.Close()
	waitClosed(t, p)
}
