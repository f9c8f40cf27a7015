package views

import "time"

// MessageResponse is the envelope every endpoint outcome uses.
type MessageResponse struct {
	Message string `json:"message"`
}

// TradeEvent is the payload published to Kafka for each accepted trade.
type TradeEvent struct {
	ID                 int64     `json:"id"`
	UserID             string    `json:"userId"`
	CurrencyFrom       string    `json:"currencyFrom"`
	CurrencyTo         string    `json:"currencyTo"`
	AmountSell         string    `json:"amountSell"`
	AmountBuy          string    `json:"amountBuy"`
	Rate               string    `json:"rate"`
	TimePlaced         time.Time `json:"timePlaced"`
	OriginatingCountry string    `json:"originatingCountry"`
	CreatedAt          time.Time `json:"createdAt"`
}
