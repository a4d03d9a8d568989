package mirror

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeObjects struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []string
	err     error
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestConfigValidate(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Error("expected error for missing bucket")
	}
	c.Bucket = "cdn"
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestPutSetsHeaders(t *testing.T) {
	fake := &fakeObjects{}
	m := &S3{client: fake, cfg: Config{Bucket: "cdn", Prefix: "assets", CacheControl: "public, max-age=31536000, immutable"}}

	if err := m.Put(context.Background(), "main-1000.js", []byte("var\na=1;")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := m.Put(context.Background(), "main-1000.js.gz", []byte{0x1f, 0x8b}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if len(fake.puts) != 2 {
		t.Fatalf("puts = %d, want 2", len(fake.puts))
	}
	first := fake.puts[0]
	if aws.ToString(first.Bucket) != "cdn" || aws.ToString(first.Key) != "assets/main-1000.js" {
		t.Errorf("put target = %s/%s", aws.ToString(first.Bucket), aws.ToString(first.Key))
	}
	if aws.ToString(first.ContentType) != "text/javascript; charset=utf-8" {
		t.Errorf("content type = %q", aws.ToString(first.ContentType))
	}
	if first.ContentEncoding != nil {
		t.Errorf("plain artifact should have no content encoding, got %q", aws.ToString(first.ContentEncoding))
	}
	if aws.ToString(first.CacheControl) != "public, max-age=31536000, immutable" {
		t.Errorf("cache control = %q", aws.ToString(first.CacheControl))
	}
	if string(fake.bodies[0]) != "var\na=1;" {
		t.Errorf("body = %q", fake.bodies[0])
	}

	second := fake.puts[1]
	if aws.ToString(second.ContentEncoding) != "gzip" {
		t.Errorf("sidecar encoding = %q", aws.ToString(second.ContentEncoding))
	}
	if aws.ToString(second.ContentType) != "text/javascript; charset=utf-8" {
		t.Errorf("sidecar content type = %q", aws.ToString(second.ContentType))
	}
}

func TestDelete(t *testing.T) {
	fake := &fakeObjects{}
	m := &S3{client: fake, cfg: Config{Bucket: "cdn"}}

	if err := m.Delete(context.Background(), "theme-5.css"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(fake.deletes) != 1 || fake.deletes[0] != "theme-5.css" {
		t.Errorf("deletes = %v", fake.deletes)
	}
}

func TestErrorsWrapped(t *testing.T) {
	boom := errors.New("access denied")
	m := &S3{client: &fakeObjects{err: boom}, cfg: Config{Bucket: "cdn"}}

	if err := m.Put(context.Background(), "a.css", nil); !errors.Is(err, boom) {
		t.Errorf("Put err = %v", err)
	}
	if err := m.Delete(context.Background(), "a.css"); !errors.Is(err, boom) {
		t.Errorf("Delete err = %v", err)
	}
}

func TestObjectType(t *testing.T) {
	tests := []struct {
		name         string
		wantType     string
		wantEncoding string
	}{
		{"main-1.js", "text/javascript; charset=utf-8", ""},
		{"theme-1.css.br", "text/css; charset=utf-8", "br"},
		{"theme-1.css.gz", "text/css; charset=utf-8", "gzip"},
		{"blob.bin", "application/octet-stream", ""},
	}
	for _, tt := range tests {
		ct, enc := objectType(tt.name)
		if ct != tt.wantType || enc != tt.wantEncoding {
			t.Errorf("objectType(%q) = %q, %q", tt.name, ct, enc)
		}
	}
}
