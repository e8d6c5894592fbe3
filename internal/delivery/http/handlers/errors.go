package handlers

import (
	"errors"
	"net/http"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError отдает клиенту код и текст ошибки домена; прочие ошибки скрываются
func (h *CommissionHandler) writeError(c *gin.Context, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		h.logger.Error("internal error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL", "error": "internal error"})
		return
	}
	if derr.Kind == domain.KindIntegrity {
		h.logger.Error("ledger integrity violation", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(statusFor(derr.Kind), gin.H{"code": derr.Code, "error": err.Error()})
}

func (h *CommissionHandler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "error": err.Error()})
}
