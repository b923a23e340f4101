package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lms-be/internal/config"
	"lms-be/internal/dto"
	"lms-be/internal/pkg/logger"
	"lms-be/internal/pkg/serverutils"

	"github.com/gabriel-vasile/mimetype"
)

const UploadURLPrefix = "/uploads/"

type IUploadService interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (*dto.UploadResponse, error)
	// UploadImage is Upload restricted to image content.
	UploadImage(ctx context.Context, file *multipart.FileHeader) (*dto.UploadResponse, error)
	Remove(url string) error
}

type uploadService struct {
	cfg    config.UploadConfig
	logger logger.ILogger
	now    func() time.Time
}

func NewUploadService(cfg config.UploadConfig, log logger.ILogger) IUploadService {
	return &uploadService{cfg: cfg, logger: log, now: time.Now}
}

func (s *uploadService) Upload(ctx context.Context, file *multipart.FileHeader) (*dto.UploadResponse, error) {
	return s.save(file, false)
}

func (s *uploadService) UploadImage(ctx context.Context, file *multipart.FileHeader) (*dto.UploadResponse, error) {
	return s.save(file, true)
}

func (s *uploadService) save(file *multipart.FileHeader, imageOnly bool) (*dto.UploadResponse, error) {
	if file == nil {
		return nil, serverutils.ErrBadRequest("file is required")
	}
	if s.cfg.MaxBytes > 0 && file.Size > s.cfg.MaxBytes {
		return nil, serverutils.ErrBadRequest(fmt.Sprintf("file too large (max %d bytes)", s.cfg.MaxBytes))
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// Sniff from the head, then stream the rest.
	head := make([]byte, 3072)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	head = head[:n]
	mtype := mimetype.Detect(head)
	if imageOnly && !strings.HasPrefix(mtype.String(), "image/") {
		return nil, serverutils.ErrBadRequest("file is not an image")
	}

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), sanitizeFilename(file.Filename))
	dst, err := os.Create(filepath.Join(s.cfg.Dir, name))
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	size, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head), src))
	if err != nil {
		_ = os.Remove(dst.Name())
		return nil, err
	}

	s.logger.Info("UPLOAD", "File stored", map[string]interface{}{
		"name": name,
		"mime": mtype.String(),
		"size": size,
	})

	return &dto.UploadResponse{
		Url:      UploadURLPrefix + name,
		Name:     name,
		MimeType: mtype.String(),
		Size:     size,
	}, nil
}

// Remove deletes a previously stored file by its public url. Foreign urls are ignored.
func (s *uploadService) Remove(url string) error {
	name, ok := strings.CutPrefix(url, UploadURLPrefix)
	if !ok || name == "" || name != filepath.Base(name) {
		return nil
	}
	err := os.Remove(filepath.Join(s.cfg.Dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20 || r == '/' || r == '?' || r == '#' || r == '%':
			return -1
		}
		return r
	}, name)
	if cleaned == "" {
		return "file"
	}
	return cleaned
}
