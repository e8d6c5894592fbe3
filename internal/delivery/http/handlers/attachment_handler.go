package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	attachmentResponse "github.com/LavaJover/shvark-commission-service/internal/delivery/http/dto/attachment/response"
	"github.com/LavaJover/shvark-commission-service/internal/domain"
)

// HTTPAttachmentHandler - клиент файлового хранилища. Возвращает только ссылку на файл,
// содержимое через сервис не проходит
type HTTPAttachmentHandler struct {
	Address string
	client  *http.Client
}

func NewHTTPAttachmentHandler(address string, timeout time.Duration) (*HTTPAttachmentHandler, error) {
	if address == "" {
		return nil, errors.New("attachment service address is empty")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPAttachmentHandler{
		Address: address,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (h *HTTPAttachmentHandler) Reference(ctx context.Context, fileID string) (*domain.AttachmentRef, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/files/%s", h.Address, url.PathEscape(fileID)), nil)
	if err != nil {
		return nil, err
	}

	response, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case response.StatusCode >= 200 && response.StatusCode < 300:
		var file attachmentResponse.FileResponse
		if err := json.Unmarshal(responseBodyBytes, &file); err != nil {
			return nil, err
		}
		if file.Ref == "" {
			return nil, fmt.Errorf("attachment service returned empty ref for %s", fileID)
		}
		return &domain.AttachmentRef{FileID: fileID, Ref: file.Ref}, nil
	case response.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: attachment %s not found", domain.ErrInvalidRequest, fileID)
	default:
		var errorResponse attachmentResponse.ErrorResponse
		if err := json.Unmarshal(responseBodyBytes, &errorResponse); err != nil || errorResponse.Error == "" {
			return nil, fmt.Errorf("attachment service responded with status %d", response.StatusCode)
		}
		return nil, errors.New(errorResponse.Error)
	}
}

var _ domain.AttachmentStore = (*HTTPAttachmentHandler)(nil)
