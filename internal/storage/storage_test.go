package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/go-cmp/cmp"
)

// fakeS3 keeps objects in memory and mimics ListObjectsV2 with a "/" delimiter.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := aws.ToString(in.Prefix)
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) && !strings.Contains(strings.TrimPrefix(k, prefix), "/") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestFS(t *testing.T) *FS {
	t.Helper()
	f, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("new fs: %v", err)
	}
	return f
}

func backends(t *testing.T) map[string]Blobs {
	t.Helper()
	return map[string]Blobs{
		"fs":     newTestFS(t),
		"sqlite": newTestSQLite(t),
		"s3":     NewS3(newFakeS3(), "vault", "prod/"),
	}
}

func TestBlobs(t *testing.T) {
	ctx := context.Background()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := b.Get(ctx, "items/1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
			}

			for _, kv := range []struct{ key, val string }{
				{"items/2", `["b"]`},
				{"items/1", `["a"]`},
				{"items/1", `["a","c"]`},
				{"users/1", `{}`},
				{"items/nested/3", `[]`},
			} {
				if err := b.Put(ctx, kv.key, []byte(kv.val)); err != nil {
					t.Fatalf("Put(%s): %v", kv.key, err)
				}
			}

			got, err := b.Get(ctx, "items/1")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != `["a","c"]` {
				t.Errorf("Get() = %s, want overwritten value", got)
			}

			keys, err := b.List(ctx, "items/")
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if diff := cmp.Diff([]string{"items/1", "items/2"}, keys); diff != "" {
				t.Errorf("List() mismatch (-want +got):\n%s", diff)
			}

			keys, err = b.List(ctx, "missing/")
			if err != nil {
				t.Fatalf("List(missing): %v", err)
			}
			if len(keys) != 0 {
				t.Errorf("List(missing) = %v, want empty", keys)
			}
		})
	}
}

func TestFSPutLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f, err := NewFS(dir)
	if err != nil {
		t.Fatalf("new fs: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := f.Put(ctx, "items/42", []byte(`[]`)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	entries, err := os.ReadDir(dir + "/items")
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if diff := cmp.Diff([]string{"42.json"}, names); diff != "" {
		t.Errorf("directory contents mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr bool
	}{
		{name: "fs", opts: Options{Backend: BackendFS, DataDir: filepath.Join(dir, "fs")}, want: "*storage.FS"},
		{name: "default is fs", opts: Options{DataDir: filepath.Join(dir, "default")}, want: "*storage.FS"},
		{name: "sqlite creates parent dir", opts: Options{Backend: BackendSQLite, DatabasePath: filepath.Join(dir, "db", "vault.db")}, want: "*storage.SQLite"},
		{
			name: "s3 with static credentials",
			opts: Options{Backend: BackendS3, S3: S3Config{
				Bucket: "vault", Region: "us-east-1", Endpoint: "http://localhost:9000",
				AccessKey: "minio", SecretKey: "minio123",
			}},
			want: "*storage.S3",
		},
		{name: "unknown", opts: Options{Backend: "redis"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Open(ctx, tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			t.Cleanup(func() { _ = b.Close() })
			if diff := cmp.Diff(tt.want, fmt.Sprintf("%T", b)); diff != "" {
				t.Errorf("backend type (-want +got):\n%s", diff)
			}
		})
	}
}
