package kafkaclient

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaReader defines the interface for a Kafka message reader.
// This allows for easy mocking in unit tests.
type KafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer pumps messages from a KafkaReader into a channel. Offsets are
// committed explicitly by the caller through CommitOffset.
type KafkaConsumer struct {
	reader KafkaReader
	// stop cancels the consume loop; set by StartConsuming.
	stop context.CancelFunc
	wg   sync.WaitGroup
	// messageChan is closed when the consume loop exits.
	messageChan chan kafka.Message
	// retryDelay is the pause after a failed read.
	retryDelay time.Duration
}

// NewKafkaConsumer creates a consumer group reader. broker may hold a
// comma-separated list of addresses.
func NewKafkaConsumer(topic, groupID, broker string) (*KafkaConsumer, error) {
	if topic == "" || groupID == "" || broker == "" {
		return nil, errors.New("kafka topic, group ID and broker are required")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: strings.Split(broker, ","),
		Topic:   topic,
		GroupID: groupID,
		// Offsets are committed manually once a document has been loaded.
		CommitInterval: 0,
		MinBytes:       1,
		MaxBytes:       10e6,
	})
	return newConsumer(reader), nil
}

func newConsumer(reader KafkaReader) *KafkaConsumer {
	return &KafkaConsumer{
		reader:      reader,
		messageChan: make(chan kafka.Message),
		retryDelay:  time.Second,
	}
}

// Messages returns the channel fed by the consume loop.
func (kc *KafkaConsumer) Messages() <-chan kafka.Message {
	return kc.messageChan
}

// CommitOffset commits the offset of msg.
func (kc *KafkaConsumer) CommitOffset(ctx context.Context, msg kafka.Message) error {
	log.Printf("Committing offset for topic=%s, partition=%d, offset=%d", msg.Topic, msg.Partition, msg.Offset)
	return kc.reader.CommitMessages(ctx, msg)
}

// StartConsuming begins the Kafka message consumption loop in a separate goroutine.
func (kc *KafkaConsumer) StartConsuming(ctx context.Context) {
	ctx, kc.stop = context.WithCancel(ctx)
	kc.wg.Add(1)
	go func() {
		defer kc.wg.Done()
		defer close(kc.messageChan)

		log.Println("Starting Kafka consumer loop...")
		for {
			msg, err := kc.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					log.Println("Context canceled, stopping consumer loop.")
					return
				}
				if errors.Is(err, io.EOF) {
					log.Println("Kafka reader closed, stopping consumer loop.")
					return
				}
				log.Printf("Error reading message: %v", err)
				// Back off to avoid a tight error loop.
				select {
				case <-time.After(kc.retryDelay):
					continue
				case <-ctx.Done():
					return
				}
			}

			select {
			case kc.messageChan <- msg:
				log.Printf("Message received: topic=%s, partition=%d, offset=%d", msg.Topic, msg.Partition, msg.Offset)
			case <-ctx.Done():
				log.Println("Context canceled, stopping consumer before sending message.")
				return
			}
		}
	}()
}

// Stop ends the consume loop, waits for it to exit and closes the reader.
func (kc *KafkaConsumer) Stop() {
	log.Println("Attempting to stop Kafka consumer...")
	if kc.stop != nil {
		kc.stop()
	}
	kc.wg.Wait()
	if err := kc.reader.Close(); err != nil {
		log.Printf("Failed to close Kafka reader: %v", err)
	}
	log.Println("Kafka consumer stopped gracefully.")
}
