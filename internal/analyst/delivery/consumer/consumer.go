package consumer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"dealflow-analyst/internal/analyst/config"
	"dealflow-analyst/internal/analyst/service"
	"dealflow-analyst/pkg/common"
	"dealflow-analyst/pkg/logger"
	"dealflow-analyst/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// RedisConsumer manages the consumption of work from the Redis streams: new
// documents awaiting reconciliation and note regenerations being retried.
type RedisConsumer struct {
	cfg           *config.Config
	redisClient   *redis.Client
	ingestService service.IngestService
	noteService   service.NoteService
	logger        *logger.Logger
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(
	cfg *config.Config,
	redisClient *redis.Client,
	ingestService service.IngestService,
	noteService service.NoteService,
	log *logger.Logger,
) *RedisConsumer {
	return &RedisConsumer{
		cfg:           cfg,
		redisClient:   redisClient,
		ingestService: ingestService,
		noteService:   noteService,
		logger:        log,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the consumer loops.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.RegisterStreamHandler(ctx, common.RedisStreamDocumentIngest, c.cfg.Engine.RedisStreamDocumentTimeout, c.handleDocumentMessage)
	c.RegisterStreamHandler(ctx, common.RedisStreamNoteRetry, c.cfg.Engine.RedisStreamNoteRetryTimeout, c.handleNoteRetryMessage)
}

// RegisterStreamHandler runs a loop reading one message at a time from the
// stream and dispatching it to fn under a per-message timeout.
func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, streamName string, timeout time.Duration, fn func(ctx context.Context, payload string)) {
	c.logger.Info("Registering stream handler", logger.Field("stream", streamName))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation", logger.Field("stream", streamName))
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping", logger.Field("stream", streamName))
				return
			default:
				c.consumeOne(ctx, streamName, timeout, fn)
			}
		}
	})
}

func (c *RedisConsumer) consumeOne(ctx context.Context, streamName string, timeout time.Duration, fn func(ctx context.Context, payload string)) {
	streams, err := c.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{streamName, ">"}, // ">" means only new messages
		Count:    1,
		Block:    2 * time.Second, // Block for 2 seconds to allow graceful shutdown
		NoAck:    true,
	}).Result()

	if err != nil {
		// Ignore context cancellation and timeout errors, as they are expected during shutdown or idle periods.
		if err == context.Canceled || err == redis.Nil {
			return
		}
		c.logger.Error("Failed to read from stream", logger.ErrorField(err), logger.Field("stream", streamName))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]
	payload, ok := message.Values["payload"].(string)
	if !ok {
		c.logger.Error("field 'payload' not found or not a string in stream message", logger.Field("message_id", message.ID), logger.Field("stream", streamName))
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	fn(ctxTimeout, payload)
}

func (c *RedisConsumer) handleDocumentMessage(ctx context.Context, payload string) {
	var msg struct {
		SourceID string `json:"source_id"`
	}
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		c.logger.Error("Failed to unmarshal document message", logger.ErrorField(err))
		return
	}

	if err := c.ingestService.ProcessDocument(ctx, msg.SourceID); err != nil {
		c.logger.Error("Failed to process document", logger.ErrorField(err), logger.StringField("source_id", msg.SourceID))
	}
}

func (c *RedisConsumer) handleNoteRetryMessage(ctx context.Context, payload string) {
	var msg struct {
		CompanyID string `json:"company_id"`
	}
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		c.logger.Error("Failed to unmarshal note retry message", logger.ErrorField(err))
		return
	}

	if _, err := c.noteService.Generate(ctx, msg.CompanyID); err != nil {
		c.logger.Error("Note retry failed", logger.ErrorField(err), logger.StringField("company_id", msg.CompanyID))
	}
}

// Stop gracefully stops the consumer loops.
func (c *RedisConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
