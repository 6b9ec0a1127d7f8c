package dataset

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5"

	"github.com/matzehuels/jengatower/pkg/errors"
	"github.com/matzehuels/jengatower/pkg/httputil"
)

// Source yields the rows of one table.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string
	Rows(ctx context.Context) ([]Row, error)
}

// SourceOptions configures the remote source kinds.
type SourceOptions struct {
	HTTP *httputil.Client
	// S3Endpoint overrides the S3 endpoint, e.g. for MinIO. Path-style
	// addressing is used whenever it is set.
	S3Endpoint string
	S3Region   string
}

// OpenSource picks a Source implementation from the location's scheme:
// a bare path or file:// reads a local CSV file, http(s):// fetches a CSV
// document, s3://bucket/key reads a CSV object and postgres://...?table=t
// selects every row of table t.
func OpenSource(location string, opts SourceOptions) (Source, error) {
	if err := errors.ValidateSourceURL(location); err != nil {
		return nil, err
	}
	u, err := url.Parse(location)
	if err != nil || len(u.Scheme) <= 1 {
		return &FileSource{Path: location}, nil
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return &FileSource{Path: u.Path}, nil
	case "http", "https":
		client := opts.HTTP
		if client == nil {
			client = httputil.NewClient()
		}
		return &HTTPSource{URL: location, Client: client}, nil
	case "s3":
		return &S3Source{
			Bucket:   u.Host,
			Key:      strings.TrimPrefix(u.Path, "/"),
			Endpoint: opts.S3Endpoint,
			Region:   opts.S3Region,
		}, nil
	case "postgres", "postgresql":
		q := u.Query()
		table := q.Get("table")
		if table == "" {
			return nil, errors.New(errors.ErrCodeInvalidSource, "postgres source needs a ?table= parameter")
		}
		q.Del("table")
		u.RawQuery = q.Encode()
		return &PostgresSource{DSN: u.String(), Table: table}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidSource, "unsupported source %q", location)
}

// FileSource reads a local CSV file.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return s.Path }

func (s *FileSource) Rows(ctx context.Context) ([]Row, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// HTTPSource fetches a CSV document with retry.
type HTTPSource struct {
	URL    string
	Client *httputil.Client
}

func (s *HTTPSource) Name() string { return s.URL }

func (s *HTTPSource) Rows(ctx context.Context) ([]Row, error) {
	data, err := s.Client.Fetch(ctx, s.URL)
	if err != nil {
		return nil, err
	}
	return ReadCSV(bytes.NewReader(data))
}

// S3Source reads a CSV object using the default AWS credential chain.
type S3Source struct {
	Bucket   string
	Key      string
	Endpoint string
	Region   string
}

func (s *S3Source) Name() string { return "s3://" + s.Bucket + "/" + s.Key }

func (s *S3Source) Rows(ctx context.Context) ([]Row, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if s.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(s.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
			o.UsePathStyle = true
		}
	})

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return ReadCSV(out.Body)
}

// PostgresSource selects every row of a table. Column values are rendered
// with fmt so numeric columns pass through the same sanitation as CSV text.
type PostgresSource struct {
	DSN   string
	Table string
}

func (s *PostgresSource) Name() string { return "postgres:" + s.Table }

func (s *PostgresSource) Rows(ctx context.Context) ([]Row, error) {
	conn, err := pgx.Connect(ctx, s.DSN)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, "SELECT * FROM "+pgx.Identifier{s.Table}.Sanitize())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []Row
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(Row, len(fields))
		for i, f := range fields {
			if vals[i] != nil {
				row[strings.ToLower(f.Name)] = fmt.Sprint(vals[i])
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
