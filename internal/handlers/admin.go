package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lumeva/reckon/internal/config"
	"github.com/lumeva/reckon/internal/services"
)

type AdminHandler struct {
	logger *logrus.Logger
	config *config.Config
	matrix services.ItemMatrixServiceInterface
}

func NewAdminHandler(logger *logrus.Logger, cfg *config.Config, matrix services.ItemMatrixServiceInterface) *AdminHandler {
	return &AdminHandler{
		logger: logger,
		config: cfg,
		matrix: matrix,
	}
}

// RebuildMatrix serves POST /api/v1/admin/rebuild-matrix. Idempotent;
// concurrent triggers collapse onto one rebuild inside the service.
func (h *AdminHandler) RebuildMatrix(c *gin.Context) {
	ctx := c.Request.Context()
	if timeout := h.config.Reco.RebuildTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	matrix, err := h.matrix.Rebuild(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Item matrix rebuild failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": gin.H{
				"code":    "REBUILD_FAILED",
				"message": "Item matrix rebuild failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"items":    len(matrix.Vectors),
			"terms":    len(matrix.IDF),
			"built_at": matrix.BuiltAt,
		},
		"message": "Item matrix rebuilt",
	})
}
