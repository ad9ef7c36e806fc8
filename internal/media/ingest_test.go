package media_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ar_furniture/internal/media"
	"github.com/Skotchmaster/ar_furniture/internal/media/mediatest"
	"github.com/Skotchmaster/ar_furniture/pkg/apperr"
)

const baseURL = "http://assets.local/furniture"

func newIngestor(t *testing.T) (*media.Ingestor, *mediatest.Storage) {
	t.Helper()
	store := mediatest.NewStorage()
	return media.NewIngestor(store, baseURL+"/", "ar-furniture", 1<<20), store
}

func file(name string, data []byte) *media.File {
	return &media.File{Filename: name, Size: int64(len(data)), Content: bytes.NewReader(data)}
}

func keyOf(url string) string {
	return strings.TrimPrefix(url, baseURL+"/")
}

func TestIngest_ModelForcedToGLB(t *testing.T) {
	t.Parallel()

	in, store := newIngestor(t)
	refs, err := in.Ingest(context.Background(), media.Assets{
		Model: file("chair-final.GLTF.zip", mediatest.GLB()),
	})
	require.NoError(t, err)

	assert.Empty(t, refs.ImageURL)
	assert.True(t, strings.HasPrefix(refs.ModelURL, baseURL+"/ar-furniture/models/"))
	assert.True(t, strings.HasSuffix(refs.ModelURL, ".glb"))

	obj, ok := store.Get(keyOf(refs.ModelURL))
	require.True(t, ok)
	assert.Equal(t, "model/gltf-binary", obj.ContentType)
	assert.Equal(t, mediatest.GLB(), obj.Data, "model bytes must be stored untouched")
}

func TestIngest_ImageFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		wantExt string
		wantCT  string
	}{
		{name: "png", data: mediatest.PNG(), wantExt: ".png", wantCT: "image/png"},
		{name: "jpeg", data: mediatest.JPEG(), wantExt: ".jpg", wantCT: "image/jpeg"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in, store := newIngestor(t)
			// the upload name does not decide the stored extension
			refs, err := in.Ingest(context.Background(), media.Assets{Image: file("photo.webp", tt.data)})
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(refs.ImageURL, tt.wantExt))

			obj, ok := store.Get(keyOf(refs.ImageURL))
			require.True(t, ok)
			assert.Equal(t, tt.wantCT, obj.ContentType)
			assert.Equal(t, tt.data, obj.Data)
		})
	}
}

func TestIngest_RejectsDisallowedImage(t *testing.T) {
	t.Parallel()

	in, store := newIngestor(t)
	_, err := in.Ingest(context.Background(), media.Assets{
		Image: file("notes.png", []byte("GIF89a this is not allowed")),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrUploadFailed)
	assert.Contains(t, apperr.Message(err), "image/gif")
	assert.Empty(t, store.Keys())
}

func TestIngest_SizeLimits(t *testing.T) {
	t.Parallel()

	in, _ := newIngestor(t)
	in.MaxBytes = 8

	_, err := in.Ingest(context.Background(), media.Assets{Model: file("big.glb", mediatest.GLB())})
	assert.ErrorIs(t, err, apperr.ErrUploadFailed)

	_, err = in.Ingest(context.Background(), media.Assets{Model: file("empty.glb", nil)})
	assert.ErrorIs(t, err, apperr.ErrUploadFailed)
}

func TestIngest_ModelFailureRemovesImage(t *testing.T) {
	t.Parallel()

	in, store := newIngestor(t)
	store.FailPut = func(key string) error {
		if strings.Contains(key, "/models/") {
			return errors.New("bucket quota exceeded")
		}
		return nil
	}

	refs, err := in.Ingest(context.Background(), media.Assets{
		Image: file("a.png", mediatest.PNG()),
		Model: file("a.glb", mediatest.GLB()),
	})
	require.Error(t, err)
	assert.Equal(t, media.Refs{}, refs)
	assert.ErrorIs(t, err, apperr.ErrUploadFailed)
	assert.Equal(t, "bucket quota exceeded", apperr.Message(err), "backend message is surfaced verbatim")
	assert.Empty(t, store.Keys(), "uploaded image must not be orphaned")
}

func TestRemove_IgnoresForeignURLs(t *testing.T) {
	t.Parallel()

	in, store := newIngestor(t)
	refs, err := in.Ingest(context.Background(), media.Assets{
		Image: file("a.png", mediatest.PNG()),
		Model: file("a.glb", mediatest.GLB()),
	})
	require.NoError(t, err)
	require.Len(t, store.Keys(), 2)

	require.NoError(t, in.Remove(context.Background(), "https://elsewhere.example/x.png", refs.ImageURL))
	assert.Equal(t, []string{keyOf(refs.ModelURL)}, store.Keys())
}
