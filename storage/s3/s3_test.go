package s3

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/kbukum/dyne/storage"
)

// fakeAPI is an in-memory stand-in for the S3 client.
type fakeAPI struct {
	objects map[string][]byte
}

func newFakeAPI() *fakeAPI { return &fakeAPI{objects: make(map[string][]byte)} }

func (f *fakeAPI) PutObject(_ context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &awss3.PutObjectOutput{}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, in *awss3.GetObjectInput, _ ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &awss3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeAPI) DeleteObject(_ context.Context, in *awss3.DeleteObjectInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &awss3.DeleteObjectOutput{}, nil
}

func (f *fakeAPI) HeadObject(_ context.Context, in *awss3.HeadObjectInput, _ ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error) {
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &awss3.HeadObjectOutput{}, nil
}

func (f *fakeAPI) ListObjectsV2(_ context.Context, in *awss3.ListObjectsV2Input, _ ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error) {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &awss3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k), Size: aws.Int64(int64(len(f.objects[k])))})
	}
	return out, nil
}

func TestStorage_PrefixedRoundTrip(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	s := NewWithClient(api, "bucket", "/runs/")

	if err := storage.WriteAll(ctx, s, "m/d_options.json", []byte("{}")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := api.objects["runs/m/d_options.json"]; !ok {
		t.Errorf("expected prefixed key, got %v", api.objects)
	}

	got, err := storage.ReadAll(ctx, s, "m/d_options.json")
	if err != nil || string(got) != "{}" {
		t.Errorf("expected '{}', got %q (%v)", got, err)
	}

	files, err := s.List(ctx, "m/")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(files) != 1 || files[0].Path != "m/d_options.json" {
		t.Errorf("expected unprefixed listing, got %+v", files)
	}
}

func TestStorage_NotFoundMapping(t *testing.T) {
	ctx := context.Background()
	s := NewWithClient(newFakeAPI(), "bucket", "")

	if _, err := s.Download(ctx, "nope"); !storage.IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	ok, err := s.Exists(ctx, "nope")
	if err != nil || ok {
		t.Errorf("expected (false, nil), got (%v, %v)", ok, err)
	}
}
