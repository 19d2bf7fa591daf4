package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/synthmed/radgen/internal/image"
	"github.com/synthmed/radgen/internal/log"
)

// S3Store uploads artifacts and sidecars to a bucket prefix, mirroring the
// DirStore layout. Key names carry a uuid so concurrent runs cannot collide.
type S3Store struct {
	Client *s3.Client
	Bucket string
	Prefix string

	now func() time.Time
}

func NewS3Store(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{Client: client, Bucket: bucket, Prefix: prefix, now: time.Now}
}

func (s *S3Store) Store(ctx context.Context, art image.Artifact) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("store").With("bucket", s.Bucket)

	name := fmt.Sprintf("%s_%s_%s_%s",
		art.Request.Modality, art.Request.Region,
		s.now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
	key := path.Join(s.Prefix, name+".png")

	objMeta := map[string]string{
		"modality": string(art.Request.Modality),
		"region":   art.Request.Region,
		"seed":     strconv.FormatInt(art.Seed, 10),
	}
	if err := s.put(ctx, key, art.Data, "image/png", objMeta); err != nil {
		return "", err
	}

	meta, err := json.MarshalIndent(metadataFor(art), "", "  ")
	if err != nil {
		return "", err
	}
	if err := s.put(ctx, path.Join(s.Prefix, name+".json"), meta, "application/json", objMeta); err != nil {
		return "", err
	}

	log.Info("uploaded artifact", "key", key, "seed", art.Seed)
	return "s3://" + s.Bucket + "/" + key, nil
}

func (s *S3Store) Put(ctx context.Context, params PutParams) (string, error) {
	key := path.Join(s.Prefix, params.Name)
	if err := s.put(ctx, key, params.Data, params.ContentType, nil); err != nil {
		return "", err
	}
	return "s3://" + s.Bucket + "/" + key, nil
}

func (s *S3Store) put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        bytes.NewReader(data),
		Metadata:    metadata,
	})
	return err
}
