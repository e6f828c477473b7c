package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	"github.com/fd1az/arbgraph/business/arbitrage/infra"
	graph "github.com/fd1az/arbgraph/business/graph/domain"
)

// ObjectPutter is the subset of *s3.Client used by the archiver.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver uploads every snapshot as DOT and the metrics table as CSV under
// <prefix>/<run id>/.
type Archiver struct {
	infra.NopExporter
	client ObjectPutter
	bucket string
	prefix string
}

// NewArchiver creates an archiver writing into bucket under prefix.
func NewArchiver(client ObjectPutter, bucket, prefix string) *Archiver {
	return &Archiver{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key for name within the run of ctx.
func (a *Archiver) Key(ctx context.Context, name string) string {
	runID := domain.RunIDFromContext(ctx)
	if runID == "" {
		runID = "unknown"
	}
	return path.Join(a.prefix, runID, name)
}

func (a *Archiver) Snapshot(ctx context.Context, iteration int, g graph.View) error {
	var buf bytes.Buffer
	if err := infra.WriteDOT(&buf, g); err != nil {
		return fmt.Errorf("s3: render snapshot %d: %w", iteration, err)
	}
	return a.put(ctx, a.Key(ctx, infra.SnapshotName(iteration)), &buf, "text/vnd.graphviz")
}

func (a *Archiver) Finish(ctx context.Context, rows []domain.MetricsRow) error {
	var buf bytes.Buffer
	if err := infra.WriteCSV(&buf, rows); err != nil {
		return fmt.Errorf("s3: render metrics: %w", err)
	}
	return a.put(ctx, a.Key(ctx, "metrics.csv"), &buf, "text/csv")
}

func (a *Archiver) put(ctx context.Context, key string, body *bytes.Buffer, contentType string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3: put object %s: %w", key, err)
	}
	return nil
}
