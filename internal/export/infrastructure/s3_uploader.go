package infrastructure

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter sous-ensemble du client S3 utilisé pour publier les exports
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader publie des fichiers dans un bucket
type S3Uploader struct {
	client ObjectPutter
	bucket string
}

// NewS3Uploader charge la configuration AWS par défaut (env, profil, rôle)
func NewS3Uploader(ctx context.Context, region, bucket string) (*S3Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3UploaderWithClient(s3.NewFromConfig(cfg), bucket), nil
}

// NewS3UploaderWithClient crée l'uploader sur un client existant
func NewS3UploaderWithClient(client ObjectPutter, bucket string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket}
}

// Bucket retourne le bucket cible
func (u *S3Uploader) Bucket() string {
	return u.bucket
}

// Upload envoie le fichier path sous la clé key
func (u *S3Uploader) Upload(ctx context.Context, key, path, contentType string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return err
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(stat.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", u.bucket, key, err)
	}
	return nil
}
