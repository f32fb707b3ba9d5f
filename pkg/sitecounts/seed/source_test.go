package seed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_File(t *testing.T) {
	ctx := context.Background()
	abs, err := filepath.Abs(filepath.Join("testdata", "site.json"))
	require.NoError(t, err)

	for _, raw := range []string{filepath.Join("testdata", "site.json"), "file://" + abs} {
		t.Run(raw, func(t *testing.T) {
			rc, err := Open(ctx, raw, S3Config{})
			require.NoError(t, err)
			defer rc.Close()

			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Contains(t, string(data), `"types"`)
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, "", S3Config{})
	assert.Error(t, err)

	_, err = Open(ctx, filepath.Join(t.TempDir(), "missing.json"), S3Config{})
	assert.ErrorIs(t, err, ErrSeedNotFound)

	_, err = Open(ctx, "https://example.com/seed.json", S3Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported seed url scheme")

	_, err = Open(ctx, "s3://bucket-only", S3Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket and key are required")
}

// fakeGetter serves objects from memory
type fakeGetter struct {
	objects map[string][]byte
	keys    []string
}

func (f *fakeGetter) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.keys = append(f.keys, key)
	data, ok := f.objects[key]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "The specified key does not exist."}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
		ContentRange:  aws.String(fmt.Sprintf("bytes 0-%d/%d", len(data)-1, len(data))),
	}, nil
}

func TestDownload(t *testing.T) {
	ctx := context.Background()
	client := &fakeGetter{objects: map[string][]byte{
		"seeds/site/seed.json": []byte(`{"types":[{"slug":"post"}]}`),
	}}

	rc, err := download(ctx, client, "seeds", "site/seed.json")
	require.NoError(t, err)
	defer rc.Close()

	ds, err := Decode(rc)
	require.NoError(t, err)
	assert.Len(t, ds.Types, 1)
	assert.Contains(t, client.keys, "seeds/site/seed.json")
}

func TestDownload_NotFound(t *testing.T) {
	client := &fakeGetter{objects: map[string][]byte{}}

	_, err := download(context.Background(), client, "seeds", "missing.json")
	assert.ErrorIs(t, err, ErrSeedNotFound)
}
