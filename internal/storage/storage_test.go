package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
)

func TestExtractFileKey(t *testing.T) {
	tests := map[string]string{
		"https://utfs.io/f/abc123.png":         "abc123.png",
		"https://cdn.example.com/f/xyz?w=200":  "xyz",
		"https://cdn.example.com/f/k#frag":     "k",
		"https://cdn.example.com/a/f/nested/x": "nested",
		"https://cdn.example.com/images/abc":   "",
		"":                                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ExtractFileKey(in), in)
	}
}

type fakeS3 struct {
	keys []string
	fail map[string]bool
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	key := aws.ToString(in.Key)
	if f.fail[key] {
		return nil, errors.New("boom")
	}
	f.keys = append(f.keys, aws.ToString(in.Bucket)+"/"+key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestDeleteURLsContinuesPastFailures(t *testing.T) {
	fake := &fakeS3{fail: map[string]bool{"bad": true}}
	d := NewDeleter(fake, "uploads")

	n := d.DeleteURLs(context.Background(),
		"https://utfs.io/f/one",
		"https://utfs.io/f/bad",
		"https://elsewhere.com/avatar.png",
		"https://utfs.io/f/two",
	)

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"uploads/one", "uploads/two"}, fake.keys)
}

func TestNoop(t *testing.T) {
	var r Remover = Noop{}
	assert.Equal(t, 0, r.DeleteURLs(context.Background(), "https://utfs.io/f/one"))
}
