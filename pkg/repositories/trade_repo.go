package repositories

import (
	"context"
	"errors"

	"github.com/fxstream/trade-consumer/pkg/database"
	"github.com/fxstream/trade-consumer/pkg/models"
)

// TradeRepository persists validated trade messages. The store assigns
// id and created_at on success.
type TradeRepository interface {
	Create(ctx context.Context, m *models.TradeMessage) error
}

type TradeRepositoryImpl struct {
	db *database.DB
}

func NewTradeRepository(db *database.DB) TradeRepository {
	return &TradeRepositoryImpl{db: db}
}

// Create inserts the message and copies the store-assigned id and created_at
// back onto it. The message must be validated and normalized first.
func (r *TradeRepositoryImpl) Create(ctx context.Context, m *models.TradeMessage) error {
	amountSell, ok := m.AmountSellDecimal()
	if !ok {
		return errors.New("amountSell is not numeric")
	}
	amountBuy, ok := m.AmountBuyDecimal()
	if !ok {
		return errors.New("amountBuy is not numeric")
	}
	rate, ok := m.RateDecimal()
	if !ok {
		return errors.New("rate is not numeric")
	}
	timePlaced, ok := m.TimePlacedTime()
	if !ok {
		return errors.New("timePlaced is not normalized")
	}

	return r.db.QueryRowPrimary(ctx, `
				INSERT INTO trade_message (user_id, currency_from, currency_to, amount_sell, amount_buy, rate, time_placed, originating_country)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id, created_at`,
		m.UserID,
		m.CurrencyFrom,
		m.CurrencyTo,
		amountSell.StringFixed(2),
		amountBuy.StringFixed(2),
		rate.StringFixed(6),
		timePlaced,
		m.OriginatingCountry,
	).Scan(&m.ID, &m.CreatedAt)
}
