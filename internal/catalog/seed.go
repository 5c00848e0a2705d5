package catalog

import (
	"github.com/ikkim/shopgenie-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

// Default returns the built-in storefront catalog.
func Default() *Catalog {
	c, err := New(seedProducts())
	if err != nil {
		panic(err) // seed data is static
	}
	return c
}

func seedProducts() []model.Product {
	price := decimal.RequireFromString
	return []model.Product{
		{
			ID:          "1",
			Name:        "Ultra-Noise Cancelling Headphones",
			Price:       price("299.99"),
			Category:    model.CategoryElectronics,
			Image:       "https://picsum.photos/id/1/600/600",
			Description: "Experience pure silence with our industry-leading noise cancellation technology. Perfect for travel and focus.",
			Rating:      4.8,
			Reviews:     1240,
			Features:    []string{"Active Noise Cancellation", "30h Battery Life", "Multipoint Connection"},
		},
		{
			ID:          "2",
			Name:        "Minimalist Smart Watch",
			Price:       price("199.50"),
			Category:    model.CategoryElectronics,
			Image:       "https://picsum.photos/id/119/600/600",
			Description: "Track your fitness, sleep, and notifications in style. A battery that lasts weeks, not days.",
			Rating:      4.5,
			Reviews:     850,
			Features:    []string{"Heart Rate Monitor", "Sleep Tracking", "Water Resistant 50m"},
		},
		{
			ID:          "3",
			Name:        "Premium Cotton T-Shirt",
			Price:       price("29.99"),
			Category:    model.CategoryFashion,
			Image:       "https://picsum.photos/id/21/600/600",
			Description: "Soft, breathable, and durable. The perfect staple for your wardrobe.",
			Rating:      4.7,
			Reviews:     3200,
			Features:    []string{"100% Organic Cotton", "Pre-shrunk", "Eco-friendly Dye"},
			Options: []model.VariantOption{
				{Name: "Color", Values: []string{"Blue", "Black", "White", "Heather Grey"}},
				{
					Name:   "Size",
					Values: []string{"S", "M", "L", "XL", "XXL"},
					PriceModifiers: map[string]decimal.Decimal{
						"XL":  price("2.00"),
						"XXL": price("4.00"),
					},
				},
			},
		},
		{
			ID:          "4",
			Name:        "Ergonomic Office Chair",
			Price:       price("349.00"),
			Category:    model.CategoryHome,
			Image:       "https://picsum.photos/id/3/600/600",
			Description: "Say goodbye to back pain. Designed for 8+ hours of comfortable sitting.",
			Rating:      4.9,
			Reviews:     540,
			Features:    []string{"Lumbar Support", "Adjustable Armrests", "Breathable Mesh"},
		},
		{
			ID:          "5",
			Name:        "Professional Chef Knife",
			Price:       price("89.95"),
			Category:    model.CategoryHome,
			Image:       "https://picsum.photos/id/102/600/600",
			Description: "Razor sharp and perfectly balanced. Elevate your cooking game.",
			Rating:      4.8,
			Reviews:     210,
			Features:    []string{"High Carbon Steel", "Ergonomic Handle", "Lifetime Warranty"},
		},
		{
			ID:          "6",
			Name:        "Trail Running Shoes",
			Price:       price("129.99"),
			Category:    model.CategorySports,
			Image:       "https://picsum.photos/id/103/600/600",
			Description: "Grip any terrain with confidence. Lightweight and rugged.",
			Rating:      4.6,
			Reviews:     890,
			Features:    []string{"Gore-Tex Waterproofing", "Vibram Sole", "Shock Absorption"},
		},
		{
			ID:          "7",
			Name:        "Yoga Mat Pro",
			Price:       price("55.00"),
			Category:    model.CategorySports,
			Image:       "https://picsum.photos/id/104/600/600",
			Description: "Non-slip grip for the deepest stretches. Eco-friendly materials.",
			Rating:      4.9,
			Reviews:     1500,
			Features:    []string{"Non-slip Surface", "5mm Cushioning", "Biodegradable"},
		},
		{
			ID:          "8",
			Name:        "Hydrating Face Serum",
			Price:       price("42.00"),
			Category:    model.CategoryBeauty,
			Image:       "https://picsum.photos/id/64/600/600",
			Description: "Restore your skin's natural glow with Hyaluronic Acid and Vitamin C.",
			Rating:      4.7,
			Reviews:     670,
			Features:    []string{"Hyaluronic Acid", "Vitamin C", "Cruelty-Free"},
		},
	}
}
