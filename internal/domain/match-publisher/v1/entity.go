package matchpublisherv1

import (
	"encoding/json"

	tradev1 "github.com/lucaCambi77/valr/internal/domain/trade/v1"
)

// ToBytes converts the trade to the JSON event payload.
func ToBytes(trade tradev1.Trade) ([]byte, error) {
	return json.Marshal(trade)
}

// FromBytes converts a JSON event payload back to a trade.
func FromBytes(data []byte) (tradev1.Trade, error) {
	var trade tradev1.Trade
	err := json.Unmarshal(data, &trade)
	return trade, err
}
