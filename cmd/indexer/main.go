package main

import (
	"context"
	"log"
	"parking/internal/database"
	"parking/internal/enrich"
	"parking/internal/env"
	"parking/internal/service"
	"parking/internal/storage"
	"parking/pkg/graceful"
	"parking/pkg/kafkaclient"
)

func main() {
	env.LoadEnv()
	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	kafkaBroker := env.MustGetEnv("KAFKA_BROKER")
	kafkaTopic := env.MustGetEnv("KAFKA_TOPIC")
	kafkaGroupID := env.MustGetEnv("KAFKA_GROUP_ID")
	databaseURL := env.MustGetEnv("DATABASE_URL")

	pool, err := database.Connect(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	store := database.NewSpaceStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to prepare schema: %v", err)
	}

	s3Service, err := storage.NewS3Service()
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("Connecting to Kafka broker: %s on topic: %s with group ID: %s", kafkaBroker, kafkaTopic, kafkaGroupID)
	consumer, err := kafkaclient.NewKafkaConsumer(kafkaTopic, kafkaGroupID, kafkaBroker)
	if err != nil {
		log.Fatalf("Failed to create kafka consumer %v", err)
	}
	consumer.StartConsuming(ctx)

	iterator := service.NewIterator(consumer, "minified/", s3Service.GetSpaces)
	pipeline := enrich.NewPipeline(
		enrich.NewStage("locate", locateSpaces),
		enrich.NewStage("persist", persistSpaces(store)),
		enrich.NewStage("report", reportItem),
	)

	items := make(chan *IndexItem)
	go func() {
		defer close(items)
		for obj := range iterator.Objects(ctx) {
			select {
			case items <- NewIndexItem(obj.Key, obj.Data):
			case <-ctx.Done():
				return
			}
		}
	}()

	processed := pipeline.Process(ctx, items)

	consumer.Stop()
	log.Printf("Indexer finished after %d documents.", processed)
}
