package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/menuboard/display-server-go/internal/errors"
)

// URLPrefix is the fixed public path prefix uploaded files are served under.
const URLPrefix = "/uploads/"

var extByContentType = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/ogg":       ".ogv",
	"video/quicktime": ".mov",
}

// MediaStore writes uploaded files to local disk and hands out the public
// urls they are served under.
type MediaStore struct {
	dir string
}

func NewMediaStore(dir string) (*MediaStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &MediaStore{dir: dir}, nil
}

func (s *MediaStore) Dir() string {
	return s.dir
}

// SaveImage stores an image upload and returns its public url.
func (s *MediaStore) SaveImage(file multipart.File) (string, error) {
	url, contentType, err := s.save(file)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(contentType, "image/") {
		s.Remove(url)
		return "", apperrors.UnsupportedMedia("an image")
	}
	return url, nil
}

// SaveMedia stores an image or video upload and returns its public url and
// the coarse media type ("image" or "video").
func (s *MediaStore) SaveMedia(file multipart.File) (string, string, error) {
	url, contentType, err := s.save(file)
	if err != nil {
		return "", "", err
	}
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return url, "image", nil
	case strings.HasPrefix(contentType, "video/"):
		return url, "video", nil
	default:
		s.Remove(url)
		return "", "", apperrors.UnsupportedMedia("an image or video")
	}
}

// save sniffs the content type from the leading bytes, not the declared
// header, then streams the file to disk under a random name.
func (s *MediaStore) save(file multipart.File) (string, string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := extByContentType[contentType]
	if !ok {
		return "", "", apperrors.UnsupportedMedia("a supported image or video format")
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := dst.Write(head); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("write upload: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("write upload: %w", err)
	}

	return URLPrefix + name, contentType, nil
}

// Remove deletes the file behind a public url. Best effort: a missing file
// is not an error worth surfacing.
func (s *MediaStore) Remove(url string) {
	name, ok := strings.CutPrefix(url, URLPrefix)
	if !ok || name == "" || strings.Contains(name, "/") {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("url", url).Msg("failed to remove media file")
	}
}

// ListURLs returns the public urls of stored files at least minAge old.
// Files younger than minAge may belong to an upload whose row update has
// not committed yet, so sweeps skip them. A zero minAge lists everything.
func (s *MediaStore) ListURLs(minAge time.Duration) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}

	cutoff := time.Now().Add(-minAge)
	urls := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if minAge > 0 {
			info, err := entry.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
		}
		urls = append(urls, URLPrefix+entry.Name())
	}
	return urls, nil
}
