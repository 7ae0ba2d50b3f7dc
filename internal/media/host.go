package media

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrForeignURL = errors.New("url is not hosted by this store")

// Host turns raw uploads into hosted URLs.
type Host struct {
	store  Store
	logger *zap.Logger
}

func NewHost(store Store, logger *zap.Logger) *Host {
	return &Host{store: store, logger: logger}
}

// HostImage optimizes an uploaded image and stores it under images/<owner>/.
func (h *Host) HostImage(ctx context.Context, ownerID, filename string, data []byte) (string, error) {
	optimized, err := OptimizeImage(data)
	if err != nil {
		return "", err
	}
	key := "images/" + ownerID + "/" + uuid.NewString() + ".jpg"
	url, err := h.store.Upload(ctx, key, "image/jpeg", optimized)
	if err != nil {
		return "", err
	}
	h.logger.Debug("image hosted", zap.String("key", key), zap.String("source", filename), zap.Int("bytes", len(optimized)))
	return url, nil
}

// HostDocument stores data unchanged under resumes/<owner>/.
func (h *Host) HostDocument(ctx context.Context, ownerID, filename, contentType string, data []byte) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	key := "resumes/" + ownerID + "/" + uuid.NewString() + ext
	return h.store.Upload(ctx, key, contentType, data)
}

// Remove deletes the object behind a URL previously returned by this host.
func (h *Host) Remove(ctx context.Context, url string) error {
	key, ok := h.store.KeyFromURL(url)
	if !ok {
		return ErrForeignURL
	}
	return h.store.Delete(ctx, key)
}
