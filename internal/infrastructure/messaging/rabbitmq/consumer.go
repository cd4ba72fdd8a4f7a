package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/baechuer/sports-portal/services/auth-service/internal/application/auth"
)

// Handler is the app-layer contract that the consumer calls.
type Handler interface {
	UserRegistered(ctx context.Context, evt auth.UserRegisteredEvent) error
}

type ConsumerConfig struct {
	RabbitURL string
	Exchange  string
	Queue     string
	Prefetch  int
	Tag       string
}

// Consumer reads UserRegistered events from a durable queue bound to the
// auth exchange. It reconnects with backoff until Stop or ctx cancellation.
// Failed messages are retried once; a second failure, or a permanent one,
// dead-letters them to "<queue>.dlq".
type Consumer struct {
	url      string
	exchange string
	queue    string
	prefetch int
	tag      string

	lg      zerolog.Logger
	handler Handler

	mu      sync.Mutex
	running bool
	doneCh  chan struct{}
	// stopCh is closed by Stop; it wakes a consume loop or backoff sleep
	// that has no connection for closeConn to break.
	stopCh chan struct{}

	conn       *amqp.Connection
	ch         *amqp.Channel
	deliveries <-chan amqp.Delivery
}

func NewConsumer(cfg ConsumerConfig, h Handler, lg zerolog.Logger) *Consumer {
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &Consumer{
		url:      cfg.RabbitURL,
		exchange: exchange,
		queue:    cfg.Queue,
		prefetch: cfg.Prefetch,
		tag:      cfg.Tag,
		handler:  h,
		lg:       lg.With().Str("component", "rabbitmq_consumer").Logger(),
	}
}

var errStopped = errors.New("consumer stopped")

func (c *Consumer) dlqName() string { return c.queue + ".dlq" }

func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}
	if c.handler == nil {
		return fmt.Errorf("nil handler")
	}
	if c.queue == "" {
		return fmt.Errorf("empty queue name")
	}

	c.doneCh = make(chan struct{})
	c.stopCh = make(chan struct{})
	c.running = true
	go c.run(ctx)
	return nil
}

// Done is closed once the supervisor loop exits.
func (c *Consumer) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doneCh
}

func (c *Consumer) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	doneCh := c.doneCh
	c.running = false
	close(c.stopCh)
	c.mu.Unlock()

	c.closeConn()

	select {
	case <-doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Consumer) run(ctx context.Context) {
	c.mu.Lock()
	doneCh := c.doneCh
	stopCh := c.stopCh
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		close(doneCh)
	}()

	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		if ctx.Err() != nil || !c.isRunning() {
			c.lg.Info().Msg("consumer supervisor exiting")
			return
		}

		if err := c.connectAndDeclare(); err != nil {
			if errors.Is(err, errStopped) {
				return
			}
			c.lg.Error().Err(err).Dur("backoff", backoff).Msg("connectAndDeclare failed; retrying")
			if !sleepOrDone(ctx, stopCh, backoff) {
				return
			}
			backoff = minDur(backoff*2, maxBackoff)
			continue
		}

		backoff = 1 * time.Second
		c.consumeLoop(ctx, stopCh)

		if ctx.Err() != nil || !c.isRunning() {
			return
		}

		c.lg.Warn().Dur("backoff", backoff).Msg("deliveries closed; reconnecting")
		c.closeConn()
		if !sleepOrDone(ctx, stopCh, backoff) {
			return
		}
		backoff = minDur(backoff*2, maxBackoff)
	}
}

func (c *Consumer) isRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Consumer) connectAndDeclare() error {
	c.closeConn()

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("consume channel: %w", err)
	}
	fail := func(err error) error {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	if err := declareExchange(ch, c.exchange); err != nil {
		return fail(err)
	}

	// dead letters go through the default exchange straight to the DLQ
	if _, err := ch.QueueDeclare(c.dlqName(), true, false, false, false, nil); err != nil {
		return fail(fmt.Errorf("dlq declare: %w", err))
	}
	mainArgs := amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": c.dlqName(),
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, mainArgs); err != nil {
		return fail(fmt.Errorf("queue declare: %w", err))
	}
	if err := ch.QueueBind(c.queue, RoutingKeyUserRegistered, c.exchange, false, nil); err != nil {
		return fail(fmt.Errorf("queue bind: %w", err))
	}

	if c.prefetch > 0 {
		if err := ch.Qos(c.prefetch, 0, false); err != nil {
			return fail(fmt.Errorf("qos: %w", err))
		}
	}

	dlv, err := ch.Consume(c.queue, c.tag, false, false, false, false, nil)
	if err != nil {
		return fail(fmt.Errorf("consume: %w", err))
	}

	c.mu.Lock()
	if !c.running {
		// Stop ran while we were dialing and found nothing to close
		c.mu.Unlock()
		_ = ch.Close()
		_ = conn.Close()
		return errStopped
	}
	c.conn = conn
	c.ch = ch
	c.deliveries = dlv
	c.mu.Unlock()

	c.lg.Info().
		Str("exchange", c.exchange).
		Str("queue", c.queue).
		Int("prefetch", c.prefetch).
		Msg("rabbitmq consumer ready")
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context, stopCh <-chan struct{}) {
	c.mu.Lock()
	deliveries := c.deliveries
	c.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return

		case <-stopCh:
			return

		case d, ok := <-deliveries:
			if !ok {
				return
			}

			start := time.Now()
			switch c.decide(ctx, d) {
			case outcomeAck:
				_ = d.Ack(false)
				c.lg.Info().Str("routing_key", d.RoutingKey).Dur("took", time.Since(start)).Msg("message processed")
			case outcomeRetry:
				_ = d.Nack(false, true)
			case outcomeDeadLetter:
				_ = d.Nack(false, false)
			}
		}
	}
}

type outcome int

const (
	outcomeAck outcome = iota
	outcomeRetry
	outcomeDeadLetter
)

// decide handles one delivery and reports what to do with it.
func (c *Consumer) decide(ctx context.Context, d amqp.Delivery) outcome {
	rk := strings.TrimSpace(d.RoutingKey)
	if rk != RoutingKeyUserRegistered {
		c.lg.Warn().Str("routing_key", truncateString(rk, 100)).Msg("unknown routing key; dropping")
		return outcomeAck
	}

	var evt auth.UserRegisteredEvent
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		c.lg.Error().Err(err).Msg("bad json; dead-lettering")
		return outcomeDeadLetter
	}
	if evt.Email == "" {
		c.lg.Warn().Str("user_id", evt.UserID).Msg("user registered event without email; dropping")
		return outcomeAck
	}

	err := c.handler.UserRegistered(ctx, evt)
	switch {
	case err == nil:
		return outcomeAck
	case isPermanent(err):
		c.lg.Error().Err(err).Str("user_id", evt.UserID).Msg("permanent failure; dead-lettering")
		return outcomeDeadLetter
	case d.Redelivered:
		c.lg.Error().Err(err).Str("user_id", evt.UserID).Msg("retry failed; dead-lettering")
		return outcomeDeadLetter
	default:
		c.lg.Warn().Err(err).Str("user_id", evt.UserID).Msg("handle failed; requeue")
		return outcomeRetry
	}
}

func isPermanent(err error) bool {
	var per interface{ Permanent() bool }
	return errors.As(err, &per) && per.Permanent()
}

func sleepOrDone(ctx context.Context, stopCh <-chan struct{}, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	case <-stopCh:
		return false
	}
}

func minDur(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func (c *Consumer) closeConn() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ch != nil {
		_ = c.ch.Close()
		c.ch = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.deliveries = nil
}

func truncateString(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
