// Package service turns object storage notifications delivered over Kafka
// into loaded objects. The Iterator consumes MinIO bucket events (e.g. from
// pkg/kafkaclient) and fetches the referenced objects with a LoaderFunc.
package service

import (
	"context"
	"encoding/json"
	"github.com/minio/minio-go/v7/pkg/notification"
	"log"
	"net/url"
	"strings"
)

// Iterator is generic over the loaded item type T. It does not manage the
// lifecycle of the underlying message source.
type Iterator[T any] struct {
	msgIterator MessageIterator
	loader      LoaderFunc[T]
	prefix      string
}

// NewIterator constructs an Iterator. Only objects whose key starts with
// prefix are loaded; an empty prefix accepts every key.
func NewIterator[T any](iterator MessageIterator, prefix string, loader LoaderFunc[T]) *Iterator[T] {
	return &Iterator[T]{
		msgIterator: iterator,
		loader:      loader,
		prefix:      prefix,
	}
}

// Objects streams a FetchedObject for every object-created record in the
// incoming notifications. A message's offset is committed once all of its
// records loaded; undecodable messages and failed loads are logged and
// skipped. The returned channel is closed when the message channel closes.
func (it *Iterator[T]) Objects(ctx context.Context) <-chan *FetchedObject[T] {
	out := make(chan *FetchedObject[T])
	go func() {
		defer close(out)

		for msg := range it.msgIterator.Messages() {
			var info notification.Info
			if err := json.Unmarshal(msg.Value, &info); err != nil {
				log.Printf("Error unmarshalling JSON: %v", err)
				continue
			}

			loaded := true
			for _, event := range info.Records {
				if !strings.HasPrefix(event.EventName, "s3:ObjectCreated:") {
					continue
				}
				objectKey, err := url.QueryUnescape(event.S3.Object.Key)
				if err != nil {
					log.Printf("Error decoding object key %q: %v", event.S3.Object.Key, err)
					loaded = false
					continue
				}
				if !strings.HasPrefix(objectKey, it.prefix) {
					continue
				}
				data, err := it.loader(ctx, event.S3.Bucket.Name, objectKey)
				if err != nil {
					log.Printf("Error loading object: %v", err)
					loaded = false
					continue
				}

				select {
				case out <- &FetchedObject[T]{Data: data, Key: objectKey, Event: event}:
				case <-ctx.Done():
					return
				}
			}

			if !loaded {
				continue
			}
			if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
				log.Printf("Failed to commit offset: %v", err)
			}
		}
	}()
	return out
}
