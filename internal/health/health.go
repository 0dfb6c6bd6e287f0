package health

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type TableDescriber interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

type BucketHeader interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

type Resource struct {
	Kind   string `json:"kind"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type Report struct {
	OK        bool       `json:"ok"`
	Resources []Resource `json:"resources"`
}

// Checker probes the managed backend resources the app is configured with.
type Checker struct {
	ddb    TableDescriber
	s3     BucketHeader
	table  string
	bucket string
}

func NewChecker(ddb TableDescriber, s3c BucketHeader, table, bucket string) *Checker {
	return &Checker{
		ddb:    ddb,
		s3:     s3c,
		table:  strings.TrimSpace(table),
		bucket: strings.TrimSpace(bucket),
	}
}

func (c *Checker) Check(ctx context.Context) Report {
	rep := Report{OK: true}
	rep.Resources = append(rep.Resources, c.checkData(ctx), c.checkStorage(ctx))
	for _, r := range rep.Resources {
		if r.Status == StatusError {
			rep.OK = false
		}
	}
	return rep
}

func (c *Checker) checkData(ctx context.Context) Resource {
	r := Resource{Kind: "data", Name: c.table}
	if c.table == "" || c.ddb == nil {
		r.Status = StatusSkipped
		return r
	}

	out, err := c.ddb.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(c.table),
	})
	if err != nil {
		r.Status = StatusError
		r.Detail = err.Error()
		return r
	}
	r.Status = StatusOK
	if out.Table != nil {
		r.Detail = string(out.Table.TableStatus)
	}
	return r
}

func (c *Checker) checkStorage(ctx context.Context) Resource {
	r := Resource{Kind: "storage", Name: c.bucket}
	if c.bucket == "" || c.s3 == nil {
		r.Status = StatusSkipped
		return r
	}

	if _, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)}); err != nil {
		r.Status = StatusError
		r.Detail = err.Error()
		return r
	}
	r.Status = StatusOK
	return r
}
