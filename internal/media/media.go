package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

// MaxWidth is the widest product image we keep.
const MaxWidth = 800

var ErrUnsupportedFormat = errors.New("unsupported image format, only PNG, JPG, JPEG are allowed")

// Storage puts an optimised JPEG somewhere public and returns its URL.
type Storage interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// Optimize decodes a PNG or JPEG, shrinks it to MaxWidth preserving the
// aspect ratio, and re-encodes it as JPEG.
func Optimize(r io.Reader, filename string) ([]byte, error) {
	var img image.Image
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		img, err = png.Decode(r)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if img.Bounds().Dx() > MaxWidth {
		img = resize.Resize(MaxWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveImage optimises the upload and stores it under a fresh name.
func SaveImage(ctx context.Context, st Storage, r io.Reader, filename string) (string, error) {
	data, err := Optimize(r, filename)
	if err != nil {
		return "", err
	}
	return st.Save(ctx, uuid.New().String(), data)
}

// DiskStorage writes into Dir and serves from URLPrefix.
type DiskStorage struct {
	Dir       string
	URLPrefix string
}

func (d DiskStorage) Save(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	file := name + ".jpg"
	if err := os.WriteFile(filepath.Join(d.Dir, file), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path.Join(d.URLPrefix, file), nil
}

// CloudinaryStorage uploads to a Cloudinary folder.
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	Folder string
}

func NewCloudinaryStorage(cloudinaryURL, folder string) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryStorage{cld: cld, Folder: folder}, nil
}

func (c *CloudinaryStorage) Save(ctx context.Context, name string, data []byte) (string, error) {
	overwrite := false
	res, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       c.Folder,
		PublicID:     name,
		Overwrite:    &overwrite,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}

// NewStorage picks Cloudinary when a URL is configured, local disk otherwise.
func NewStorage(cloudinaryURL, uploadDir string) (Storage, error) {
	if cloudinaryURL == "" {
		slog.Info("Storing product images on disk", "dir", uploadDir)
		return DiskStorage{Dir: uploadDir, URLPrefix: "/uploads"}, nil
	}
	st, err := NewCloudinaryStorage(cloudinaryURL, "studio/products")
	if err != nil {
		return nil, err
	}
	slog.Info("Storing product images on Cloudinary")
	return st, nil
}
