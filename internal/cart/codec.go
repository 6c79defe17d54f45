package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_cellar/internal/domain"
	"github.com/shopspring/decimal"
)

var errMalformedCart = errors.New("malformed cart snapshot")

// wireLine is the persisted shape of a cart line under StorageKey.
type wireLine struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
	Vintage  string      `json:"vintage"`
}

func encodeSnapshot(snap domain.CartSnapshot) ([]byte, error) {
	wire := make([]wireLine, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		wire = append(wire, wireLine{
			ID:       l.ItemID,
			Name:     l.Name,
			Price:    json.Number(l.Price.String()),
			Quantity: l.Quantity,
			Vintage:  l.Vintage,
		})
	}
	return json.Marshal(wire)
}

// decodeSnapshot rebuilds a snapshot from persisted bytes. Lines without an id, with an
// unusable price or with a non-positive quantity are dropped; repeated ids are merged into
// the first occurrence. dropped reports how many entries were discarded.
func decodeSnapshot(data []byte) (snap domain.CartSnapshot, dropped int, err error) {
	var wire []wireLine
	if err := json.Unmarshal(data, &wire); err != nil {
		return domain.CartSnapshot{}, 0, fmt.Errorf("%w: %v", errMalformedCart, err)
	}

	for _, w := range wire {
		if w.ID == "" || w.Quantity <= 0 {
			dropped++
			continue
		}
		price, err := decimal.NewFromString(w.Price.String())
		if err != nil || price.IsNegative() {
			dropped++
			continue
		}
		if i := snap.Find(w.ID); i >= 0 {
			snap.Lines[i].Quantity += w.Quantity
			dropped++
			continue
		}
		snap.Lines = append(snap.Lines, domain.CartLine{
			ItemID:   w.ID,
			Name:     w.Name,
			Price:    price,
			Vintage:  w.Vintage,
			Quantity: w.Quantity,
		})
	}
	return snap, dropped, nil
}
