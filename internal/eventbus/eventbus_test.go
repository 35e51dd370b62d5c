package eventbus

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type ping struct{ N int }
type pong struct{ S string }

func TestOnAndEmit(t *testing.T) {
	b := New()
	var got []string
	offA := On(b, func(ctx context.Context, e ping) { got = append(got, "a") })
	On(b, func(ctx context.Context, e ping) { got = append(got, "b") })
	On(b, func(ctx context.Context, e pong) { got = append(got, "pong:"+e.S) })

	Emit(context.Background(), b, ping{N: 1})
	Emit(context.Background(), b, pong{S: "x"})
	offA()
	offA()
	Emit(context.Background(), b, ping{N: 2})

	if diff := cmp.Diff([]string{"a", "b", "pong:x", "b"}, got); diff != "" {
		t.Fatalf("dispatch mismatch (-want +got):\n%s", diff)
	}
}

func TestGlobalBus(t *testing.T) {
	t.Cleanup(func() { Use(nil) })

	Use(nil)
	Subscribe(func(ctx context.Context, e ping) { t.Fatalf("subscribed without a bus") })
	Publish(context.Background(), ping{})

	Use(New())
	var n int
	off := Subscribe(func(ctx context.Context, e ping) { n += e.N })
	Publish(context.Background(), ping{N: 2})
	off()
	Publish(context.Background(), ping{N: 5})
	if n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}
}

func TestNilBusEmit(t *testing.T) {
	Emit(context.Background(), (*Bus)(nil), ping{})
}
