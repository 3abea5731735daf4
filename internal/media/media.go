// Package media stores uploaded image files and their thumbnails on disk.
package media

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	apperrors "imagemarket/internal/errors"
)

const (
	ThumbnailSize   = 300
	DefaultMaxBytes = 16 << 20

	// MaxThumbnailPixels caps the decoded size of an image we thumbnail.
	MaxThumbnailPixels = 40_000_000

	PlaceholderURL       = "/images/placeholder.jpg"
	PlaceholderThumbnail = "/images/placeholder_thumb.jpg"
	PlaceholderFilename  = "placeholder.jpg"
)

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"webp": true,
}

// Saved describes a stored upload.
type Saved struct {
	Filename     string
	URL          string
	ThumbnailURL string
}

// Placeholder is used for uploads created without a file.
func Placeholder() Saved {
	return Saved{Filename: PlaceholderFilename, URL: PlaceholderURL, ThumbnailURL: PlaceholderThumbnail}
}

type Store struct {
	dir          string
	publicPrefix string
	maxBytes     int64
	maxPixels    int64
}

func New(dir, publicPrefix string, maxBytes int64) (*Store, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Store{
		dir:          dir,
		publicPrefix: strings.TrimRight(publicPrefix, "/"),
		maxBytes:     maxBytes,
		maxPixels:    MaxThumbnailPixels,
	}, nil
}

func (s *Store) Dir() string     { return s.dir }
func (s *Store) MaxBytes() int64 { return s.maxBytes }
func (s *Store) Prefix() string  { return s.publicPrefix }

// AllowedFile reports whether name has an accepted image extension.
func AllowedFile(name string) bool {
	return allowedExtensions[extension(name)]
}

func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// Save writes r under a unique name derived from originalName and creates a
// thumbnail next to it.
func (s *Store) Save(originalName string, r io.Reader) (Saved, error) {
	ext := extension(originalName)
	if !allowedExtensions[ext] {
		return Saved{}, apperrors.Validation("File type not allowed")
	}

	stem := sanitize(strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName)))
	name := stem + "_" + strings.ReplaceAll(uuid.NewString(), "-", "") + "." + ext
	dst := filepath.Join(s.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Saved{}, apperrors.Internal("failed to create file", err)
	}
	n, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return Saved{}, apperrors.Internal("failed to save file", err)
	}
	if n > s.maxBytes {
		os.Remove(dst)
		return Saved{}, apperrors.Validation("File too large")
	}

	saved := Saved{
		Filename:     name,
		URL:          s.publicPrefix + "/" + name,
		ThumbnailURL: PlaceholderThumbnail,
	}
	thumb := strings.TrimSuffix(name, filepath.Ext(name)) + "_thumb.jpg"
	if err := writeThumbnail(dst, filepath.Join(s.dir, thumb), s.maxPixels); err != nil {
		log.Printf("media: thumbnail for %s failed: %v", name, err)
	} else {
		saved.ThumbnailURL = s.publicPrefix + "/" + thumb
	}
	return saved, nil
}

// LocalPath maps a public media URL to its file, if it is one of ours.
// Only plain file names directly inside the media dir are accepted.
func (s *Store) LocalPath(publicURL string) (string, bool) {
	name, ok := strings.CutPrefix(publicURL, s.publicPrefix+"/")
	if !ok || name == "" || name == "." || name == ".." {
		return "", false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, os.PathSeparator) {
		return "", false
	}
	return filepath.Join(s.dir, name), true
}

// FilePath is LocalPath restricted to regular files that exist.
func (s *Store) FilePath(publicURL string) (string, bool) {
	p, ok := s.LocalPath(publicURL)
	if !ok || !isRegular(p) {
		return "", false
	}
	return p, true
}

func isRegular(p string) bool {
	fi, err := os.Lstat(p)
	return err == nil && fi.Mode().IsRegular()
}

// Remove deletes the files behind the given public URLs. URLs outside the
// media prefix are ignored.
func (s *Store) Remove(publicURLs ...string) {
	for _, u := range publicURLs {
		p, ok := s.FilePath(u)
		if !ok {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("media: remove %s: %v", p, err)
		}
	}
}

func writeThumbnail(src, dst string, maxPixels int64) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	cfg, _, err := image.DecodeConfig(in)
	if err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > maxPixels {
		return fmt.Errorf("image is %dx%d, over the %d pixel limit", cfg.Width, cfg.Height, maxPixels)
	}
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return err
	}

	img, _, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	b := img.Bounds()
	w, h := fit(b.Dx(), b.Dy(), ThumbnailSize)
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(canvas, canvas.Bounds(), img, b, draw.Over, nil)

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(out, canvas, &jpeg.Options{Quality: 85}); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("encode: %w", err)
	}
	return out.Close()
}

// fit scales w x h down to fit a limit x limit box, keeping the aspect ratio.
func fit(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return max(w, 1), max(h, 1)
	}
	if w >= h {
		return limit, max(h*limit/w, 1)
	}
	return max(w*limit/h, 1), limit
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteByte('_')
		}
		if b.Len() >= 50 {
			break
		}
	}
	if b.Len() == 0 {
		return "image"
	}
	return b.String()
}
