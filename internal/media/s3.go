package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"

	"github.com/riverhouse-belgrade/riverhouse/config"
)

// S3 hosts images in an S3 compatible bucket with public read access
type S3 struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3(ctx context.Context, mc config.MediaConfig) (*S3, error) {
	if mc.Bucket == "" {
		return nil, errors.Wrap(ErrNotConfigured, "s3 bucket missing")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(mc.Region)}
	if mc.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(mc.AccessKey, mc.SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if mc.Endpoint != "" {
			o.BaseEndpoint = aws.String(mc.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := mc.PublicURL
	switch {
	case publicURL != "":
	case mc.Endpoint != "":
		publicURL = strings.TrimRight(mc.Endpoint, "/") + "/" + mc.Bucket
	default:
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", mc.Bucket, mc.Region)
	}
	return &S3{client: client, bucket: mc.Bucket, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *S3) Name() string { return "s3" }

func (s *S3) url(key string) string {
	return s.publicURL + "/" + key
}

func (s *S3) Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (*Asset, error) {
	key, err := objectName(folder, filename, contentType)
	if err != nil {
		return nil, err
	}
	// the SDK needs a seekable body to sign the payload
	rs, ok := body.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, errors.Wrap(err, "read upload")
		}
		rs = bytes.NewReader(data)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        rs,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, errors.Wrap(ErrUpstream, err.Error())
	}
	return &Asset{PublicID: key, URL: s.url(key)}, nil
}

func (s *S3) List(ctx context.Context, folder string, max int) ([]Asset, error) {
	folder, err := cleanFolder(folder)
	if err != nil {
		return nil, err
	}
	max = normalizeMax(max)
	prefix := ""
	if folder != "" {
		prefix = folder + "/"
	}
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(int32(pageSize(max))),
	})
	assets := make([]Asset, 0)
	for paginator.HasMorePages() && len(assets) < max {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(ErrUpstream, err.Error())
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			assets = append(assets, Asset{PublicID: key, URL: s.url(key)})
			if len(assets) >= max {
				break
			}
		}
	}
	return assets, nil
}

func (s *S3) Delete(ctx context.Context, publicID string) (string, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return ResultNotFound, nil
		}
		return "", errors.Wrap(ErrUpstream, err.Error())
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return "", errors.Wrap(ErrUpstream, err.Error())
	}
	return ResultOK, nil
}

func (s *S3) PublicID(url string) (string, bool) {
	return stripPrefix(url, s.publicURL)
}
