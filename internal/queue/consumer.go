package queue

import (
    "context"
    "errors"
    "fmt"
    "log"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// retryHeader counts how many times a message has been redelivered by
// us.  Once maxRetries is spent the message is parked on the queue's
// dead-letter counterpart instead of being dropped.
const (
    retryHeader = "x-retries"
    maxRetries  = 3
)

// Handler processes one dequeued message body.  Returning an error
// requeues the message (bounded by maxRetries); returning nil acks it.
type Handler func(ctx context.Context, body []byte) error

// Consumer drains one or more durable queues and dispatches each
// message to its registered handler.  It runs a reconnect loop with
// exponential backoff so a broker restart does not take the workers
// down with it.
type Consumer struct {
    url      string
    handlers map[string]Handler
}

// NewConsumer returns a Consumer for the given broker URL.
func NewConsumer(url string) *Consumer {
    if url == "" {
        url = BrokerURL()
    }
    return &Consumer{url: url, handlers: make(map[string]Handler)}
}

// Handle registers the handler for a queue.  Must be called before
// Start.
func (c *Consumer) Handle(queueName string, h Handler) {
    c.handlers[queueName] = h
}

// Start connects to the broker, declares every registered queue (and
// its dead-letter counterpart) and consumes until ctx is cancelled.
// Connection failures are retried with capped exponential backoff;
// handler errors are dealt with per message and never stop the loop.
func (c *Consumer) Start(ctx context.Context) error {
    backoff := time.Second
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        default:
        }
        conn, err := amqp.Dial(c.url)
        if err != nil {
            log.Printf("queue-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            select {
            case <-ctx.Done():
                return ctx.Err()
            case <-time.After(backoff):
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := c.consumeLoop(ctx, conn); err != nil {
            log.Printf("queue-consumer: consume loop ended: %v; reconnecting", err)
            _ = conn.Close()
            select {
            case <-ctx.Done():
                return ctx.Err()
            case <-time.After(2 * time.Second):
            }
            continue
        }
        _ = conn.Close()
        return nil
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("queue-consumer: set QoS failed: %v", err)
    }

    deliveries := make(chan amqp.Delivery)
    var forwarders sync.WaitGroup
    for name := range c.handlers {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("declare %s: %w", name, err)
        }
        if _, err := ch.QueueDeclare(name+DLQSuffix, true, false, false, false, nil); err != nil {
            return fmt.Errorf("declare %s: %w", name+DLQSuffix, err)
        }
        msgs, err := ch.Consume(name, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("consume %s: %w", name, err)
        }
        forwarders.Add(1)
        go forward(ctx, msgs, deliveries, &forwarders)
    }
    // When the connection drops the broker closes every msgs channel
    // and the forwarders drain out; closing deliveries here is what
    // hands control back to Start so it can reconnect.
    go func() {
        forwarders.Wait()
        close(deliveries)
    }()

    for {
        select {
        case <-ctx.Done():
            return nil
        case d, ok := <-deliveries:
            if !ok {
                return errors.New("broker connection lost")
            }
            c.dispatch(ctx, ch, d)
        }
    }
}

// forward funnels one queue's deliveries into the shared fan-in
// channel until the source closes or ctx is cancelled.
func forward(ctx context.Context, msgs <-chan amqp.Delivery, out chan<- amqp.Delivery, wg *sync.WaitGroup) {
    defer wg.Done()
    for d := range msgs {
        select {
        case out <- d:
        case <-ctx.Done():
            return
        }
    }
}

// dispatch runs the handler for one delivery and settles the message.
// A failing message is republished with an incremented retry counter
// so the bounded-retry accounting survives broker restarts; once the
// budget is spent it is parked on the dead-letter queue.
func (c *Consumer) dispatch(ctx context.Context, ch *amqp.Channel, d amqp.Delivery) {
    h, ok := c.handlers[d.RoutingKey]
    if !ok {
        log.Printf("queue-consumer: no handler for %s, dropping", d.RoutingKey)
        _ = d.Nack(false, false)
        return
    }
    err := h(ctx, d.Body)
    if err == nil {
        _ = d.Ack(false)
        return
    }

    retries := retryCount(d)
    log.Printf("queue-consumer: handle %s failed (attempt %d): %v", d.RoutingKey, retries+1, err)
    target := d.RoutingKey
    if retries+1 >= maxRetries {
        target = d.RoutingKey + DLQSuffix
        log.Printf("queue-consumer: retry budget spent for %s, routing to %s", d.RoutingKey, target)
    }
    pub := amqp.Publishing{
        ContentType:  d.ContentType,
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Headers:      amqp.Table{retryHeader: int32(retries + 1)},
        Body:         d.Body,
    }
    if pubErr := ch.PublishWithContext(ctx, "", target, false, false, pub); pubErr != nil {
        log.Printf("queue-consumer: republish to %s failed: %v; requeueing original", target, pubErr)
        _ = d.Nack(false, true)
        return
    }
    _ = d.Ack(false)
}

// retryCount reads the retry header from a delivery, tolerating the
// integer widths AMQP clients use for table values.
func retryCount(d amqp.Delivery) int {
    v, ok := d.Headers[retryHeader]
    if !ok {
        return 0
    }
    switch n := v.(type) {
    case int32:
        return int(n)
    case int64:
        return int(n)
    case int:
        return n
    }
    return 0
}
