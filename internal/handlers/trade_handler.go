package handlers

import (
	"net/http"

	"github.com/fxstream/trade-consumer/internal/services"
	"github.com/fxstream/trade-consumer/internal/views"
	"github.com/fxstream/trade-consumer/pkg"
	"github.com/fxstream/trade-consumer/pkg/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TradeHandler struct {
	logger  *zap.Logger
	service services.TradeService
}

func NewTradeHandler(logger *zap.Logger, svc services.TradeService) *TradeHandler {
	return &TradeHandler{logger: logger, service: svc}
}

// RegisterRoutes registers trade routes on the provided Gin router group.
func (h *TradeHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/trade/message/", h.ConsumeMessage)
}

// ConsumeMessage accepts one trade message.
//
// Outcomes:
//   - 400 for invalid Content-Type or a JSON parse error
//   - 422 for timestamp transformation or validation failures
//   - 503 for persistence failures
//   - 201 for successful consumption and persistence
func (h *TradeHandler) ConsumeMessage(c *gin.Context) {
	traceId, err := utils.GetTraceID(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, views.MessageResponse{Message: pkg.PublicMessage(err)})
		return
	}

	// Content-Type gate runs before any parsing: a malformed body with the
	// wrong content type still yields the content-type error.
	if c.ContentType() != pkg.ContentTypeJSON {
		c.JSON(pkg.ErrContentTypeCode.Status, views.MessageResponse{Message: pkg.ErrContentTypeCode.Message})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		h.logger.Warn("request body read failed", zap.String(pkg.TraceId, traceId), zap.Error(err))
		c.JSON(pkg.ErrParseCode.Status, views.MessageResponse{Message: "JSON parse error (" + err.Error() + ")"})
		return
	}

	if _, err := h.service.Consume(c.Request.Context(), traceId, body); err != nil {
		c.JSON(pkg.StatusFor(err), views.MessageResponse{Message: pkg.PublicMessage(err)})
		return
	}

	c.JSON(http.StatusCreated, views.MessageResponse{Message: "Your request was created!"})
}
