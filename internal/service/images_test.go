package service

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	puts    []string
	deleted []string
	urlErr  error
}

func (f *fakeObjects) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if _, err := io.ReadAll(r); err != nil {
		return err
	}
	f.puts = append(f.puts, key)
	return nil
}

func (f *fakeObjects) URL(_ context.Context, key string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "https://cdn.test/" + key + "?X-Amz-Signature=abc", nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func gifDataURL() string {
	return "data:image/gif;base64," + base64.StdEncoding.EncodeToString([]byte("GIF89a\x01\x00\x01\x00\x00\x00\x00"))
}

func TestImagesResolve(t *testing.T) {
	ctx := context.Background()
	objects := &fakeObjects{}
	m := newImages(objects, nil)
	current := coverPrefix + "/existing_cover.png"

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr error
	}{
		{"empty keeps current", "", current, nil},
		{"same path keeps current", current, current, nil},
		{"presigned URL of current", "https://cdn.test/" + current + "?X-Amz-Signature=other", current, nil},
		{"external URL", "https://covers.example.com/a.jpg", "https://covers.example.com/a.jpg", nil},
		{"relative path rejected", "covers/a.jpg", "", ErrInvalidImage},
		{"bad data URL", "data:text/plain;base64,aGk=", "", ErrInvalidImage},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.resolve(ctx, coverPrefix, "cover", tc.value, current)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Path)
			assert.Empty(t, got.Key)
		})
	}
	assert.Empty(t, objects.puts)
}

func TestImagesUploadAndCleanup(t *testing.T) {
	ctx := context.Background()
	objects := &fakeObjects{}
	m := newImages(objects, nil)

	up, err := m.resolve(ctx, profilePrefix, "profile", gifDataURL(), "")
	require.NoError(t, err)
	assert.Regexp(t, `^profiles/[0-9a-f-]{36}_profile\.gif$`, up.Path)
	assert.Equal(t, up.Path, up.Key)
	assert.Equal(t, []string{up.Key}, objects.puts)

	m.discard(ctx, up)
	assert.Equal(t, []string{up.Key}, objects.deleted)

	// External URLs and unrelated paths are never deleted.
	m.replaced(ctx, "https://covers.example.com/a.jpg", "")
	m.remove(ctx, "/static/default.png")
	assert.Len(t, objects.deleted, 1)

	m.replaced(ctx, up.Key, up.Key)
	assert.Len(t, objects.deleted, 1)
}

func TestImagesWithoutStore(t *testing.T) {
	m := newImages(nil, nil)

	_, err := m.resolve(context.Background(), coverPrefix, "cover", gifDataURL(), "")
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Equal(t, "book-covers/x.png", m.url(context.Background(), "book-covers/x.png"))
}

func TestImagesURLFailureYieldsEmpty(t *testing.T) {
	m := newImages(&fakeObjects{urlErr: errors.New("minio: signature error")}, nil)

	assert.Empty(t, m.url(context.Background(), "book-covers/x.png"))
	assert.Equal(t, "https://covers.example.com/a.jpg", m.url(context.Background(), "https://covers.example.com/a.jpg"))
}
