package oss

import (
	"bytes"
	"fmt"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"

	"github.com/framelab/train_go_server/config"
)

// Client uploads result artifacts (prediction CSVs, topic keyword
// sheets) to OSS. It is optional: when not configured the worker falls
// back to local download URLs served by the API.
type Client struct {
	client     *oss.Client
	bucket     *oss.Bucket
	bucketName string
	cdnDomain  string
}

func NewClient(cfg *config.OSSConfig) (*Client, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &Client{
		client:     client,
		bucket:     bucket,
		bucketName: cfg.BucketName,
		cdnDomain:  cfg.CDNDomain,
	}, nil
}

// UploadPredictions uploads a finished predictions CSV for a test set.
func (c *Client) UploadPredictions(classifierID, testSetID int64, data []byte) (string, error) {
	objectKey := fmt.Sprintf("predictions/%d/%d/%s.csv", classifierID, testSetID, uuid.NewString())

	err := c.bucket.PutObject(objectKey, bytes.NewReader(data), oss.ContentType("text/csv"))
	if err != nil {
		return "", fmt.Errorf("failed to upload predictions: %w", err)
	}

	return c.GetURL(objectKey), nil
}

// UploadTopicKeywords uploads the per-topic keyword sheet produced by
// topic-model training.
func (c *Client) UploadTopicKeywords(topicModelID int64, data []byte) (string, error) {
	objectKey := fmt.Sprintf("topic_models/%d/keywords_%s.csv", topicModelID, uuid.NewString())

	err := c.bucket.PutObject(objectKey, bytes.NewReader(data), oss.ContentType("text/csv"))
	if err != nil {
		return "", fmt.Errorf("failed to upload topic keywords: %w", err)
	}

	return c.GetURL(objectKey), nil
}

// Delete removes an object.
func (c *Client) Delete(objectKey string) error {
	if err := c.bucket.DeleteObject(objectKey); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// GetURL builds a public URL, preferring the CDN domain when set.
func (c *Client) GetURL(objectKey string) string {
	if c.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", c.cdnDomain, objectKey)
	}
	return fmt.Sprintf("https://%s.%s/%s", c.bucketName, c.client.Config.Endpoint, objectKey)
}
