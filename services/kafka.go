package services

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	sharedKafka "reelsmith/shared/kafka"
	"reelsmith/types"
)

// KafkaConfig holds the reel consumer configuration.
type KafkaConfig struct {
	Brokers   []string
	Topic     string
	GroupID   string
	Processor *ReelProcessor
}

// NewReelConsumer creates a Kafka consumer that feeds reel requests into
// the processor. Processing failures leave the message unmarked so the
// request is retried; structurally invalid messages are marked and dropped.
func NewReelConsumer(cfg KafkaConfig) (*sharedKafka.Consumer, error) {
	handler := &sharedKafka.TypedMessageHandler[types.ReelRequest]{
		Validate: func(msg *types.ReelRequest) bool {
			if msg.RequestID == "" {
				log.Printf("Skipping message without request_id")
				return false
			}
			if msg.BackgroundKey == "" || len(msg.OverlayConfig) == 0 {
				log.Printf("Skipping request %s: missing background or overlay config", msg.RequestID)
				return false
			}
			return true
		},
		Process: func(ctx context.Context, msg *types.ReelRequest) error {
			log.Printf("Processing reel request: %s", msg.RequestID)
			if err := cfg.Processor.ProcessRequest(ctx, *msg); err != nil {
				log.Printf("Failed to process reel %s: %v", msg.RequestID, err)
				return err
			}
			return nil
		},
		AlwaysMark: true,
	}

	return sharedKafka.NewConsumer(sharedKafka.ConsumerConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
		Handler: handler,
	})
}

// StartConsumerWithGracefulShutdown runs the consumer until SIGINT/SIGTERM.
func StartConsumerWithGracefulShutdown(cfg KafkaConfig) error {
	consumer, err := NewReelConsumer(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		return err
	}

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	<-sigchan

	log.Println("Shutting down Kafka consumer...")
	cancel()
	time.Sleep(2 * time.Second)

	return consumer.Close()
}

// GetKafkaBrokers parses the Kafka broker list from the environment.
func GetKafkaBrokers() []string {
	brokers := os.Getenv("KAFKA_BOOTSTRAP_SERVERS")
	if brokers == "" {
		brokers = "localhost:9093"
	}
	return strings.Split(brokers, ",")
}

// GetKafkaTopic returns the reel request topic name.
func GetKafkaTopic() string {
	topic := os.Getenv("KAFKA_TOPIC_REEL_REQUESTS")
	if topic == "" {
		topic = "reel-generation-requests"
	}
	return topic
}

// GetKafkaGroupID returns the consumer group ID.
func GetKafkaGroupID() string {
	groupID := os.Getenv("KAFKA_CONSUMER_GROUP_ID")
	if groupID == "" {
		groupID = "reelsmith-consumer-group"
	}
	return groupID
}
