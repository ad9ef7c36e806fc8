package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/ar_furniture/pkg/apperr"
	"github.com/Skotchmaster/ar_furniture/pkg/logging"
	"github.com/Skotchmaster/ar_furniture/pkg/metrics"
)

type Kind string

const (
	KindImage Kind = "image"
	KindModel Kind = "model"

	modelExt         = ".glb"
	modelContentType = "model/gltf-binary"
	sniffLen         = 512
)

// allowedImages maps sniffed content types to the stored extension.
var allowedImages = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

type File struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// Assets holds the two upload slots of a product form. A nil slot means no
// file was sent for it.
type Assets struct {
	Image *File
	Model *File
}

func (a Assets) Complete() bool { return a.Image != nil && a.Model != nil }

func (a Assets) Empty() bool { return a.Image == nil && a.Model == nil }

// Refs holds the URLs produced for the slots that were uploaded.
type Refs struct {
	ImageURL string
	ModelURL string
}

func (r Refs) URLs() []string {
	var out []string
	for _, u := range []string{r.ImageURL, r.ModelURL} {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

type Ingestor struct {
	Storage  ObjectStorage
	BaseURL  string
	Folder   string
	MaxBytes int64
	NewID    func() string
}

func NewIngestor(storage ObjectStorage, baseURL, folder string, maxBytes int64) *Ingestor {
	return &Ingestor{
		Storage:  storage,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Folder:   strings.Trim(folder, "/"),
		MaxBytes: maxBytes,
		NewID:    uuid.NewString,
	}
}

// Ingest uploads every present slot. When the model upload fails after the
// image went through, the image object is deleted before returning.
func (in *Ingestor) Ingest(ctx context.Context, a Assets) (Refs, error) {
	var refs Refs

	if a.Image != nil {
		url, err := in.Store(ctx, KindImage, a.Image)
		if err != nil {
			return Refs{}, err
		}
		refs.ImageURL = url
	}

	if a.Model != nil {
		url, err := in.Store(ctx, KindModel, a.Model)
		if err != nil {
			in.discard(ctx, refs.URLs()...)
			return Refs{}, err
		}
		refs.ModelURL = url
	}

	return refs, nil
}

// Store uploads one file and returns its durable URL.
func (in *Ingestor) Store(ctx context.Context, kind Kind, f *File) (string, error) {
	l := logging.FromContext(ctx).With("svc", "media.store", "kind", string(kind), "filename", f.Filename)

	url, err := in.store(ctx, kind, f)
	metrics.RecordUpload(string(kind), err == nil)
	if err != nil {
		l.Warn("upload_failed", "size", f.Size, "error", err)
		return "", err
	}

	l.Info("upload_success", "size", f.Size, "url", url)
	return url, nil
}

func (in *Ingestor) store(ctx context.Context, kind Kind, f *File) (string, error) {
	if f == nil || f.Content == nil || f.Size <= 0 {
		return "", apperr.New(apperr.KindUploadFailed, fmt.Sprintf("%s file is empty", kind))
	}
	if in.MaxBytes > 0 && f.Size > in.MaxBytes {
		return "", apperr.New(apperr.KindUploadFailed, fmt.Sprintf("%s file exceeds %d bytes", kind, in.MaxBytes))
	}

	var (
		dir, ext, contentType string
		body                  io.Reader
	)
	switch kind {
	case KindModel:
		// stored as opaque bytes, the extension is forced regardless of the upload name
		dir, ext, contentType, body = "models", modelExt, modelContentType, f.Content
	case KindImage:
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(f.Content, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return "", apperr.Wrap(apperr.KindUploadFailed, "cannot read image", err)
		}
		head = head[:n]

		contentType = http.DetectContentType(head)
		var ok bool
		if ext, ok = allowedImages[contentType]; !ok {
			return "", apperr.New(apperr.KindUploadFailed, fmt.Sprintf("image format %s is not allowed, use jpg or png", contentType))
		}
		dir, body = "images", io.MultiReader(bytes.NewReader(head), f.Content)
	default:
		return "", apperr.New(apperr.KindUploadFailed, fmt.Sprintf("unknown asset kind %q", kind))
	}

	key := path.Join(in.Folder, dir, in.NewID()+ext)
	if err := in.Storage.Put(ctx, key, body, f.Size, contentType); err != nil {
		return "", apperr.Wrap(apperr.KindUploadFailed, err.Error(), err)
	}
	return in.urlFor(key), nil
}

// Remove deletes objects previously returned by Store. URLs that do not
// belong to this ingestor are ignored.
func (in *Ingestor) Remove(ctx context.Context, urls ...string) error {
	var errs []error
	for _, u := range urls {
		key, ok := in.keyFor(u)
		if !ok {
			continue
		}
		if err := in.Storage.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (in *Ingestor) discard(ctx context.Context, urls ...string) {
	if len(urls) == 0 {
		return
	}
	if err := in.Remove(ctx, urls...); err != nil {
		logging.FromContext(ctx).With("svc", "media.discard").
			Error("orphan_cleanup_failed", "urls", urls, "error", err)
	}
}

func (in *Ingestor) urlFor(key string) string {
	return in.BaseURL + "/" + key
}

func (in *Ingestor) keyFor(url string) (string, bool) {
	prefix := in.BaseURL + "/"
	if url == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
