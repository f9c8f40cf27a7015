package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fxstream/trade-consumer/pkg"
	"github.com/fxstream/trade-consumer/pkg/models"
	"github.com/fxstream/trade-consumer/pkg/repositories"
	"github.com/fxstream/trade-consumer/pkg/validation"
	"go.uber.org/zap"
)

// TradeService runs the consumption pipeline for one trade message request
// body: parse, hydrate, normalize, validate, persist, publish. Each stage
// converts its own failure into a typed AppError before returning.
type TradeService interface {
	Consume(ctx context.Context, traceId string, body []byte) (*models.TradeMessage, error)
}

type TradeServiceImpl struct {
	logger    *zap.Logger
	validator *validation.Validator
	repo      repositories.TradeRepository
	publisher TradePublisher
}

func NewTradeService(logger *zap.Logger, validator *validation.Validator, repo repositories.TradeRepository, publisher TradePublisher) TradeService {
	return &TradeServiceImpl{
		logger:    logger,
		validator: validator,
		repo:      repo,
		publisher: publisher,
	}
}

func (s *TradeServiceImpl) Consume(ctx context.Context, traceId string, body []byte) (*models.TradeMessage, error) {
	data, err := parseBody(body)
	if err != nil {
		return nil, pkg.NewAppError(pkg.ErrParseCode, fmt.Sprintf("JSON parse error (%s)", err.Error()), err)
	}

	message := &models.TradeMessage{}
	message.FromMap(data)

	if err := message.NormalizeTimestamp(); err != nil {
		return nil, pkg.NewAppError(pkg.ErrTransformCode, err.Error(), err)
	}

	if violations := s.validator.Validate(message, validation.AllGroups()...); len(violations) > 0 {
		joined := joinViolations(violations)
		s.logger.Info("trade message rejected",
			zap.String(pkg.TraceId, traceId),
			zap.Int("violations", len(violations)),
		)
		return nil, pkg.NewAppError(pkg.ErrValidationCode, fmt.Sprintf("JSON validation error (%s)", joined), nil)
	}

	if err := s.repo.Create(ctx, message); err != nil {
		return nil, pkg.HandleStoreError(traceId, s.logger, err)
	}

	// Best effort; the record is already durable.
	if err := s.publisher.PublishTrade(message); err != nil {
		s.logger.Error("trade event publish failed", zap.String(pkg.TraceId, traceId), zap.Error(err))
	}

	s.logger.Info("trade message created",
		zap.String(pkg.TraceId, traceId),
		zap.Int64("id", message.ID),
		zap.String("userId", message.UserID),
		zap.String("currencyFrom", message.CurrencyFrom),
		zap.String("currencyTo", message.CurrencyTo),
	)
	return message, nil
}

// parseBody decodes the request body into an untyped map. An empty body is
// an empty structure. Numbers decode as json.Number so decimal values
// survive hydration without float drift.
func parseBody(body []byte) (map[string]any, error) {
	data := make(map[string]any)
	if len(body) == 0 {
		return data, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON value")
	}
	return data, nil
}

func joinViolations(violations []validation.Violation) string {
	msgs := make([]string, 0, len(violations))
	for _, v := range violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, ", ")
}
