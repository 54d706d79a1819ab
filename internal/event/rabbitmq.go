package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	publishTimeout = 3 * time.Second
	// redialCooldown bounds how often a broken publisher tries to reconnect.
	redialCooldown = 5 * time.Second
)

var errPublisherClosed = errors.New("event publisher is closed")

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// dialFunc opens a channel with the queue declared. conn releases the
// underlying connection and may be nil.
type dialFunc func() (ch Channel, conn io.Closer, err error)

// RabbitPublisher sends events as persistent JSON messages to a durable queue
// through the default exchange. A publisher created by DialRabbit reconnects
// after the broker drops the connection.
type RabbitPublisher struct {
	mu         sync.Mutex
	ch         Channel
	conn       io.Closer
	queue      string
	dial       dialFunc
	lastDialAt time.Time
	closed     bool
	now        func() time.Time
}

// DialRabbit connects to url and declares queue.
func DialRabbit(url, queue string) (*RabbitPublisher, error) {
	p := newRedialingPublisher(queue, func() (Channel, io.Closer, error) {
		return openChannel(url, queue)
	})
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func openChannel(url, queue string) (Channel, io.Closer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare queue %q: %w", queue, err)
	}
	return ch, conn, nil
}

// NewRabbitPublisher publishes on an already opened channel. It does not
// reconnect.
func NewRabbitPublisher(ch Channel, queue string) *RabbitPublisher {
	return &RabbitPublisher{ch: ch, queue: queue, now: time.Now}
}

func newRedialingPublisher(queue string, dial dialFunc) *RabbitPublisher {
	return &RabbitPublisher{queue: queue, dial: dial, now: time.Now}
}

// Publish sends e. amqp channels are not safe for concurrent publishing, so
// calls are serialized. When the channel has been closed by the broker the
// publisher redials once and retries.
func (p *RabbitPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.OccurredAt,
		Type:         e.Type,
		Body:         body,
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errPublisherClosed
	}
	if p.ch == nil {
		if err := p.redial(); err != nil {
			return err
		}
	}

	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg)
	if !errors.Is(err, amqp.ErrClosed) || p.dial == nil {
		return err
	}

	p.release()
	if err := p.redial(); err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg)
}

// connect dials unconditionally. Callers hold mu or own p exclusively.
func (p *RabbitPublisher) connect() error {
	p.lastDialAt = p.now()
	ch, conn, err := p.dial()
	if err != nil {
		return err
	}
	p.ch, p.conn = ch, conn
	return nil
}

// redial reconnects unless the last attempt was within redialCooldown.
func (p *RabbitPublisher) redial() error {
	if p.dial == nil {
		return amqp.ErrClosed
	}
	if since := p.now().Sub(p.lastDialAt); since < redialCooldown {
		return fmt.Errorf("rabbitmq unavailable, next reconnect in %s", (redialCooldown - since).Round(time.Second))
	}
	if err := p.connect(); err != nil {
		return fmt.Errorf("reconnect: %w", err)
	}
	return nil
}

// release drops the current channel and connection, ignoring close errors
// from an already broken session.
func (p *RabbitPublisher) release() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Close closes the channel and, when owned, the connection.
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true

	var err error
	if p.ch != nil {
		err = p.ch.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	p.ch, p.conn = nil, nil
	return err
}
