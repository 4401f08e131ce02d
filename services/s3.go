package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// AWSServiceProvider is the blob store for item illustrations and profile
// pictures, backed by Cloudflare R2 through the S3 API.
type AWSServiceProvider interface {
	InitPresignClient(ctx context.Context) error
	PresignLink(ctx context.Context, bucketName string, fileName string) (string, error)
	GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error)
	PutObject(ctx context.Context, bucketName, key string, body []byte, contentType string) error
	DeleteObject(ctx context.Context, bucketName, key string) error
}

type AWSService struct {
	S3Client        *s3.Client
	S3PresignClient *s3.PresignClient
}

func (awsService *AWSService) InitPresignClient(ctx context.Context) error {
	var accountId = GetEnv("R2_ACCOUNT_ID", "")
	var accessKeyId = GetEnv("R2_ACCESS_KEY_ID", "")
	var accessKeySecret = GetEnv("R2_ACCESS_KEY_SECRET", "")
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountId),
		}, nil
	})
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyId, accessKeySecret, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %w", err)
	}

	awsService.S3Client = s3.NewFromConfig(cfg)
	awsService.S3PresignClient = s3.NewPresignClient(awsService.S3Client)
	return nil
}

func (awsService *AWSService) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {
	request, err := awsService.S3PresignClient.PresignPutObject(ctx, &s3.PutObjectInput{Bucket: &bucketName, Key: &fileName})
	if err != nil {
		return "", fmt.Errorf("failed to presign upload: %w", err)
	}
	return request.URL, nil
}

func (awsService *AWSService) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	presignedGetRequest, err := awsService.S3PresignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(fileKey),
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign request: %v", err)
	}
	return presignedGetRequest.URL, nil
}

func (awsService *AWSService) PutObject(ctx context.Context, bucketName, key string, body []byte, contentType string) error {
	_, err := awsService.S3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

func (awsService *AWSService) DeleteObject(ctx context.Context, bucketName, key string) error {
	_, err := awsService.S3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
