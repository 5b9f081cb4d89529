package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"parking/internal/env"
	"parking/internal/keys"
	"parking/internal/minify"
	"parking/internal/storage"
	"parking/pkg/graceful"
)

func main() {
	env.LoadEnv()

	res, err := minify.Run(minify.SourcePath, minify.DestPath)
	minify.Report(os.Stdout, res, err)
	if err != nil {
		os.Exit(1)
	}

	// Publishing is optional and only happens when object storage is configured.
	if !env.Enabled("MINIO_ENDPOINT") {
		return
	}
	ctx, cancel := graceful.Context(context.Background())
	err = publish(ctx, minify.DestPath)
	cancel()
	if err != nil {
		log.Printf("Failed to publish %s: %v", minify.DestPath, err)
		os.Exit(1)
	}
}

// documentStore is the part of storage.S3Service used for publishing.
type documentStore interface {
	CreateBucket(ctx context.Context, bucketName string, location string) (bool, error)
	PutDocument(ctx context.Context, bucketName, objectKey string, data []byte) error
}

func publish(ctx context.Context, path string) error {
	s3Service, err := storage.NewS3Service()
	if err != nil {
		return err
	}
	return publishDocument(ctx, s3Service, env.GetEnv("PARKING_BUCKET_NAME", "parking"), path)
}

// publishDocument uploads the file at path unchanged under its document key.
func publishDocument(ctx context.Context, store documentStore, bucketName, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read minified document: %w", err)
	}
	if _, err := store.CreateBucket(ctx, bucketName, ""); err != nil {
		return err
	}
	return store.PutDocument(ctx, bucketName, keys.Document(path), data)
}
