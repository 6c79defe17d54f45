package catalog

import (
	"errors"

	"github.com/fjod/go_cellar/internal/domain"
)

var ErrItemNotFound = errors.New("catalog item not found")

type Catalog interface {
	List() []domain.CatalogItem
	Get(id string) (domain.CatalogItem, error)
}

// Static is an immutable, ordered catalog built once at startup.
type Static struct {
	items []domain.CatalogItem
	byID  map[string]int
}

func NewStatic(items []domain.CatalogItem) *Static {
	s := &Static{
		items: make([]domain.CatalogItem, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for _, item := range items {
		if _, dup := s.byID[item.ID]; dup {
			continue // first definition wins
		}
		s.byID[item.ID] = len(s.items)
		s.items = append(s.items, item)
	}
	return s
}

func (s *Static) List() []domain.CatalogItem {
	out := make([]domain.CatalogItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Static) Get(id string) (domain.CatalogItem, error) {
	i, ok := s.byID[id]
	if !ok {
		return domain.CatalogItem{}, ErrItemNotFound
	}
	return s.items[i], nil
}
