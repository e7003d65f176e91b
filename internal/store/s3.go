package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3API is the subset of *s3.Client the backend uses.
type s3API interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds bucket and credentials for the S3 backend. Empty keys fall
// back to the default AWS credential chain.
type S3Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

// S3 keeps results as objects:
//
//	{user}/{doc}/meta.json, outline.txt, terms.json
//	{user}/by_hash/{hash}
type S3 struct {
	client   s3API
	uploader *manager.Uploader
	bucket   string
}

func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket name not set")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("AWS_REGION not set")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3WithClient(client, cfg.Bucket), nil
}

func newS3WithClient(client s3API, bucket string) *S3 {
	return &S3{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
	}
}

func (s *S3) Name() string { return "s3" }

func objectPrefix(userID, docID string) string {
	return userID + "/" + docID + "/"
}

func hashObject(userID, hash string) string {
	return userID + "/by_hash/" + hash
}

func (s *S3) upload(ctx context.Context, key string, data []byte, contentType string) error {
	ctxUpload, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	_, err := s.uploader.Upload(ctxUpload, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s: %w", key, err)
	}
	return nil
}

func (s *S3) download(ctx context.Context, key string) ([]byte, error) {
	ctxGet, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := s.client.GetObject(ctxGet, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (s *S3) remove(ctx context.Context, key string) error {
	ctxDel, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.client.DeleteObject(ctxDel, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

func (s *S3) Put(ctx context.Context, res *Result) error {
	rec := res.Record
	prefix := objectPrefix(rec.UserID, rec.DocID)

	terms, err := json.Marshal(res.Terms)
	if err != nil {
		return fmt.Errorf("marshal terms: %w", err)
	}
	meta, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	if err := s.upload(ctx, prefix+"outline.txt", []byte(res.Outline), "text/plain; charset=utf-8"); err != nil {
		return err
	}
	if err := s.upload(ctx, prefix+"terms.json", terms, "application/json"); err != nil {
		return err
	}
	if err := s.upload(ctx, prefix+"meta.json", meta, "application/json"); err != nil {
		return err
	}
	if rec.ContentHash != "" {
		if err := s.upload(ctx, hashObject(rec.UserID, rec.ContentHash), []byte(rec.DocID), "text/plain"); err != nil {
			return err
		}
	}
	return nil
}

func (s *S3) record(ctx context.Context, key string) (Record, error) {
	var rec Record
	data, err := s.download(ctx, key)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("decode %s: %w", key, err)
	}
	return rec, nil
}

func (s *S3) Get(ctx context.Context, userID, docID string) (*Result, error) {
	prefix := objectPrefix(userID, docID)
	rec, err := s.record(ctx, prefix+"meta.json")
	if err != nil {
		return nil, err
	}
	res := &Result{Record: rec}

	out, err := s.download(ctx, prefix+"outline.txt")
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	res.Outline = string(out)

	terms, err := s.download(ctx, prefix+"terms.json")
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(terms, &res.Terms); err != nil {
			return nil, fmt.Errorf("decode terms: %w", err)
		}
	}
	return res, nil
}

func (s *S3) FindByHash(ctx context.Context, userID, contentHash string) (*Result, error) {
	docID, err := s.download(ctx, hashObject(userID, contentHash))
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, strings.TrimSpace(string(docID)))
}

func (s *S3) List(ctx context.Context, userID string) ([]Record, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(userID + "/"),
	})

	var recs []Record
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, "/meta.json") {
				continue
			}
			rec, err := s.record(ctx, key)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			recs = append(recs, rec)
		}
	}
	sortRecords(recs)
	return recs, nil
}

func (s *S3) Delete(ctx context.Context, userID, docID string) error {
	prefix := objectPrefix(userID, docID)
	rec, err := s.record(ctx, prefix+"meta.json")
	if err != nil {
		return err
	}

	for _, name := range []string{"meta.json", "outline.txt", "terms.json"} {
		if err := s.remove(ctx, prefix+name); err != nil {
			return err
		}
	}
	if rec.ContentHash != "" {
		owner, err := s.download(ctx, hashObject(userID, rec.ContentHash))
		if err == nil && strings.TrimSpace(string(owner)) == docID {
			return s.remove(ctx, hashObject(userID, rec.ContentHash))
		}
	}
	return nil
}
