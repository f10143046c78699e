package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"salli-go/internal/config"
	"salli-go/internal/model"
	"salli-go/internal/salli"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	manager.UploadAPIClient
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

const versionMetaKey = "salli-version"

// S3Store keeps objects in an S3 bucket under the same content paths as
// FileSystemStore:
//
//	<prefix>/objects/ab/cd/<sha1>.pdf
//	<prefix>/metadata/<hostID>/<name>
//
// Content is staged and digested locally first, since the key depends on
// the digest.
type S3Store struct {
	client     S3API
	uploader   *manager.Uploader
	bucket     string
	prefix     string
	stagingDir string
	maxSize    int64
}

// NewS3Store wraps an existing client. An empty stagingDir uses the system
// temp directory.
func NewS3Store(client S3API, bucket, prefix, stagingDir string, maxSize int64) *S3Store {
	return &S3Store{
		client:     client,
		uploader:   manager.NewUploader(client),
		bucket:     bucket,
		prefix:     prefix,
		stagingDir: stagingDir,
		maxSize:    maxSize,
	}
}

// NewS3StoreFromConfig builds the AWS client from the store config. Static
// credentials are used when both keys are set; otherwise the default AWS
// credential chain applies.
func NewS3StoreFromConfig(cfg config.StoreConfig, maxSize int64) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	return NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix, cfg.S3StagingDir, maxSize), nil
}

func (s *S3Store) key(parts ...string) string {
	return path.Join(append([]string{s.prefix}, parts...)...)
}

// Put stages r, then uploads it unless an object already sits at its key.
func (s *S3Store) Put(r io.Reader, ext string) (*model.StoredObject, error) {
	staged, digests, size, err := stageObject(s.stagingDir, r, s.maxSize)
	if err != nil {
		return nil, err
	}
	defer os.Remove(staged)

	rel, err := salli.ContentPath(digests.SHA1, ext)
	if err != nil {
		return nil, err
	}
	key := s.key("objects", rel)

	exists, err := s.headObject(key)
	if err != nil {
		return nil, err
	}
	if exists {
		return &model.StoredObject{Path: rel, Digests: digests, Size: size, Existed: true}, nil
	}

	f, err := os.Open(staged)
	if err != nil {
		return nil, fmt.Errorf("opening staged object: %w", err)
	}
	defer f.Close()

	_, err = s.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading object %s: %w", rel, err)
	}

	return &model.StoredObject{Path: rel, Digests: digests, Size: size}, nil
}

func (s *S3Store) Open(rel string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key("objects", rel)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("opening object %s: %w", rel, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("opening object %s: %w", rel, err)
	}
	return out.Body, nil
}

func (s *S3Store) Exists(rel string) (bool, error) {
	return s.headObject(s.key("objects", rel))
}

func (s *S3Store) headObject(key string) (bool, error) {
	_, err := s.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking object %s: %w", key, err)
	}
	return true, nil
}

// PutMetadata stores the item with its version as object metadata.
func (s *S3Store) PutMetadata(hostID string, name string, r io.Reader, size int64, version int64) error {
	_, err := s.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key("metadata", hostID, name)),
		Body:          r,
		ContentLength: aws.Int64(size),
		Metadata:      map[string]string{versionMetaKey: strconv.FormatInt(version, 10)},
	})
	if err != nil {
		return fmt.Errorf("uploading metadata %q: %w", name, err)
	}
	return nil
}

func (s *S3Store) GetMetadata(hostID string, name string, w io.Writer) error {
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key("metadata", hostID, name)),
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("metadata %q not found for host %s: %w", name, hostID, fs.ErrNotExist)
		}
		return fmt.Errorf("fetching metadata %q: %w", name, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}
	return nil
}

// GetMetadataVersion returns 0 if the item does not exist.
func (s *S3Store) GetMetadataVersion(hostID string, name string) (int64, error) {
	out, err := s.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key("metadata", hostID, name)),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("checking metadata %q: %w", name, err)
	}

	raw, ok := out.Metadata[versionMetaKey]
	if !ok {
		return 0, nil
	}
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

// ValidateSetup checks that the bucket is reachable with the configured credentials.
func (s *S3Store) ValidateSetup() error {
	if s.bucket == "" {
		return fmt.Errorf("s3 store requires s3_bucket to be set")
	}
	_, err := s.client.HeadBucket(context.Background(), &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3 bucket %s not accessible: %w", s.bucket, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	if errors.As(err, &nf) || errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

var _ salli.ContentStore = (*S3Store)(nil)
