package event

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type fakeChannel struct {
	published []amqp.Publishing
	keys      []string
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	f.keys = append(f.keys, exchange+"/"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := NewRabbitPublisher(ch, "movie.activity")
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), Event{Type: ReviewUpserted, UserID: "u1", MovieID: "550", ReviewID: "r1", Rating: 9, OccurredAt: at})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(ch.published) != 1 || ch.keys[0] != "/movie.activity" {
		t.Fatalf("unexpected publishes: %v", ch.keys)
	}
	msg := ch.published[0]
	if msg.ContentType != "application/json" || msg.DeliveryMode != amqp.Persistent || msg.Type != ReviewUpserted {
		t.Errorf("unexpected message properties: %+v", msg)
	}
	var got Event
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if got.MovieID != "550" || got.Rating != 9 || !got.OccurredAt.Equal(at) {
		t.Errorf("decoded event = %+v", got)
	}
	if !strings.Contains(string(msg.Body), `"movieId":"550"`) {
		t.Errorf("body should use camelCase keys: %s", msg.Body)
	}
}

func TestRabbitPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	if err := NewRabbitPublisher(ch, "q").Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !ch.closed {
		t.Error("channel should be closed")
	}
}

type fakeConn struct{ closed bool }

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

// scriptedDialer hands out the given channels in order and fails once they
// run out.
type scriptedDialer struct {
	channels []*fakeChannel
	conns    []*fakeConn
	calls    int
}

func (d *scriptedDialer) dial() (Channel, io.Closer, error) {
	d.calls++
	if len(d.channels) == 0 {
		return nil, nil, errors.New("connection refused")
	}
	ch := d.channels[0]
	d.channels = d.channels[1:]
	conn := &fakeConn{}
	d.conns = append(d.conns, conn)
	return ch, conn, nil
}

func TestRabbitPublisher_RedialsAfterBrokerDrop(t *testing.T) {
	broken := &fakeChannel{err: amqp.ErrClosed}
	fresh := &fakeChannel{}
	d := &scriptedDialer{channels: []*fakeChannel{broken, fresh}}

	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	p := newRedialingPublisher("q", d.dial)
	p.now = func() time.Time { return clock }
	if err := p.connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}

	clock = clock.Add(time.Minute)
	if err := p.Publish(context.Background(), Event{Type: FavoriteAdded, MovieID: "550"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if d.calls != 2 {
		t.Errorf("dial calls = %d, want 2", d.calls)
	}
	if !broken.closed || !d.conns[0].closed {
		t.Error("broken session should be released")
	}
	if len(fresh.published) != 1 {
		t.Fatalf("expected the event on the new channel, got %d", len(fresh.published))
	}
}

func TestRabbitPublisher_RedialCooldown(t *testing.T) {
	d := &scriptedDialer{channels: []*fakeChannel{{err: amqp.ErrClosed}}}

	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	p := newRedialingPublisher("q", d.dial)
	p.now = func() time.Time { return clock }
	if err := p.connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}

	clock = clock.Add(time.Minute)
	if err := p.Publish(context.Background(), Event{Type: FavoriteAdded}); err == nil {
		t.Fatal("expected error while the broker is down")
	}
	if d.calls != 2 {
		t.Fatalf("dial calls = %d, want 2", d.calls)
	}

	clock = clock.Add(time.Second)
	if err := p.Publish(context.Background(), Event{Type: FavoriteAdded}); err == nil {
		t.Fatal("expected error inside the cooldown")
	}
	if d.calls != 2 {
		t.Errorf("dial calls = %d, want no redial inside the cooldown", d.calls)
	}

	clock = clock.Add(redialCooldown)
	d.channels = []*fakeChannel{{}}
	if err := p.Publish(context.Background(), Event{Type: FavoriteAdded}); err != nil {
		t.Fatalf("Publish after recovery: %v", err)
	}
	if d.calls != 3 {
		t.Errorf("dial calls = %d, want 3", d.calls)
	}
}

func TestRabbitPublisher_FixedChannelDoesNotRedial(t *testing.T) {
	p := NewRabbitPublisher(&fakeChannel{err: amqp.ErrClosed}, "q")
	if err := p.Publish(context.Background(), Event{Type: FavoriteAdded}); !errors.Is(err, amqp.ErrClosed) {
		t.Fatalf("Publish error = %v, want %v", err, amqp.ErrClosed)
	}
}

func TestRabbitPublisher_PublishAfterClose(t *testing.T) {
	d := &scriptedDialer{channels: []*fakeChannel{{}}}
	p := newRedialingPublisher("q", d.dial)
	if err := p.connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !d.conns[0].closed {
		t.Error("connection should be closed")
	}
	if err := p.Publish(context.Background(), Event{Type: FavoriteAdded}); !errors.Is(err, errPublisherClosed) {
		t.Fatalf("Publish after Close = %v, want %v", err, errPublisherClosed)
	}
	if d.calls != 1 {
		t.Errorf("closed publisher must not redial, dial calls = %d", d.calls)
	}
}

type recordingPublisher struct {
	events []Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingPublisher) Close() error { return nil }

func TestEmit_StampsTime(t *testing.T) {
	rec := &recordingPublisher{}
	Emit(context.Background(), rec, Event{Type: FavoriteAdded, UserID: "u1", MovieID: "550"})

	if len(rec.events) != 1 || rec.events[0].OccurredAt.IsZero() {
		t.Fatalf("event not published with timestamp: %+v", rec.events)
	}
}

func TestEmit_FailureIsLoggedOnly(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	Emit(context.Background(), &recordingPublisher{err: errors.New("broker down")}, Event{Type: FavoriteRemoved, MovieID: "550"})

	out := buf.String()
	if !strings.Contains(out, "activity event not published") || !strings.Contains(out, "broker down") {
		t.Errorf("expected warning log, got:\n%s", out)
	}
}

func TestEmit_NilAndNop(t *testing.T) {
	Emit(context.Background(), nil, Event{Type: FavoriteAdded})
	Emit(context.Background(), Nop{}, Event{Type: FavoriteAdded})
	if err := (Nop{}).Close(); err != nil {
		t.Fatalf("Nop.Close: %v", err)
	}
}
