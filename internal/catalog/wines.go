package catalog

import (
	"github.com/fjod/go_cellar/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultItems returns the wines the shop sells when no catalog database is configured.
// The same rows are seeded by migrations/000002_seed_items.up.sql.
func DefaultItems() []domain.CatalogItem {
	return []domain.CatalogItem{
		{
			ID:          "wine-001",
			Name:        "Barolo Riserva",
			Description: "Elegante e complesso, con note di ciliegia, rosa e tabacco. Affinamento di 5 anni.",
			Price:       decimal.RequireFromString("89.00"),
			Vintage:     "DOCG 2018",
			Region:      "Piemonte",
			Type:        "Rosso",
			InStock:     true,
			Rating:      4.9,
			ReviewCount: 127,
			ImageRef:    "/images/wine-1.jpg",
		},
		{
			ID:          "wine-002",
			Name:        "Brunello di Montalcino",
			Description: "Potente e strutturato, con sentori di frutti rossi maturi e spezie dolci.",
			Price:       decimal.RequireFromString("75.00"),
			Vintage:     "DOCG 2019",
			Region:      "Toscana",
			Type:        "Rosso",
			InStock:     true,
			Rating:      4.8,
			ReviewCount: 89,
			ImageRef:    "/images/wine-2.jpg",
		},
		{
			ID:          "wine-003",
			Name:        "Amarone della Valpolicella",
			Description: "Vino corposo con note di amarena, cioccolato e prugna secca. Passito eccezionale.",
			Price:       decimal.RequireFromString("65.00"),
			Vintage:     "DOCG 2017",
			Region:      "Veneto",
			Type:        "Rosso",
			InStock:     false,
			Rating:      4.7,
			ReviewCount: 156,
			ImageRef:    "/images/wine-3.jpg",
		},
		{
			ID:          "wine-004",
			Name:        "Chianti Classico",
			Description: "Equilibrato e beverino, con note di ciliegia fresca, viola e una leggera speziatura.",
			Price:       decimal.RequireFromString("28.00"),
			Vintage:     "DOCG 2020",
			Region:      "Toscana",
			Type:        "Rosso",
			InStock:     true,
			Rating:      4.6,
			ReviewCount: 234,
			ImageRef:    "/images/wine-4.jpg",
		},
		{
			ID:          "wine-005",
			Name:        "Primitivo di Manduria",
			Description: "Intenso e avvolgente, con profumi di mora, prugna e vaniglia. Corposo e morbido.",
			Price:       decimal.RequireFromString("32.00"),
			Vintage:     "DOC 2021",
			Region:      "Puglia",
			Type:        "Rosso",
			InStock:     true,
			Rating:      4.5,
			ReviewCount: 178,
			ImageRef:    "/images/wine-5.jpg",
		},
		{
			ID:          "wine-006",
			Name:        "Nero d'Avola",
			Description: "Mediterraneo e fruttato, con sentori di ciliegia nera, spezie e macchia mediterranea.",
			Price:       decimal.RequireFromString("24.00"),
			Vintage:     "IGT Sicilia 2020",
			Region:      "Sicilia",
			Type:        "Rosso",
			InStock:     true,
			Rating:      4.4,
			ReviewCount: 201,
			ImageRef:    "/images/wine-6.jpg",
		},
	}
}
