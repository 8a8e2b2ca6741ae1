package webconsole

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-console/pkg/logger"
)

// SetupRouter builds the browser console engine.
func SetupRouter(h *Handler, log *zap.Logger) (*gin.Engine, error) {
	tmpl, err := Templates()
	if err != nil {
		return nil, fmt.Errorf("parse console templates: %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	router.Use(logger.RequestID())
	router.Use(logger.Recovery(log))
	router.Use(logger.AccessLog(log))

	h.Register(router)
	return router, nil
}
