package events

import (
	"context"
	"encoding/json"
	"server/config"
	"server/internal/database"
	"server/internal/logger"
	"sync"

	"github.com/valkey-io/valkey-go"
)

const (
	ChannelImports = "imports"

	TypeImportProgress = "import:progress"
	TypeImportComplete = "import:complete"
	TypeImportError    = "import:error"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// EventBus publishes and consumes events over valkey pub/sub, so import
// progress reaches every server instance, not just the one running the
// submission.
type EventBus struct {
	client database.CacheClient
	config config.Config
	log    logger.Logger

	cancel context.CancelFunc
	ctx    context.Context
	wg     sync.WaitGroup
}

func New(client database.CacheClient, config config.Config) *EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventBus{
		client: client,
		config: config,
		log:    logger.New("events"),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (b *EventBus) Publish(ctx context.Context, channel string, event Event) error {
	log := b.log.Function("Publish")

	payload, err := json.Marshal(event)
	if err != nil {
		return log.Err("failed to marshal event", err, "type", event.Type)
	}

	cmd := b.client.B().Publish().Channel(channel).Message(string(payload)).Build()
	if err := b.client.Do(ctx, cmd).Error(); err != nil {
		return log.Err("failed to publish event", err, "channel", channel, "type", event.Type)
	}

	return nil
}

// Subscribe consumes a channel in a background goroutine until Close.
func (b *EventBus) Subscribe(channel string, handler func(Event)) {
	log := b.log.Function("Subscribe")

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		cmd := b.client.B().Subscribe().Channel(channel).Build()
		err := b.client.Receive(b.ctx, cmd, func(msg valkey.PubSubMessage) {
			var event Event
			if err := json.Unmarshal([]byte(msg.Message), &event); err != nil {
				log.Er("failed to unmarshal event", err, "channel", channel)
				return
			}
			handler(event)
		})
		if err != nil && b.ctx.Err() == nil {
			log.Er("subscription ended unexpectedly", err, "channel", channel)
		}
	}()
}

func (b *EventBus) Close() error {
	b.cancel()
	b.wg.Wait()
	return nil
}
