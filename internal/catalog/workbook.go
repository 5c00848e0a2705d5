package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ikkim/shopgenie-backend/internal/app/model"
	"github.com/ikkim/shopgenie-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Workbook layout: a "Products" sheet with one row per product and an
// "Options" sheet with one row per (product, option, value). Features are
// joined with featureSeparator in a single cell.
const (
	ProductsSheet    = "Products"
	OptionsSheet     = "Options"
	featureSeparator = ";"
)

var (
	productHeader = []interface{}{"ID", "Name", "Price", "Category", "Image", "Description", "Rating", "Reviews", "Features"}
	optionHeader  = []interface{}{"ProductID", "Option", "Value", "PriceDelta"}
)

// LoadWorkbook reads a catalog from an .xlsx file.
func LoadWorkbook(filePath string) (*Catalog, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ProductsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", ProductsSheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s sheet has no data rows", ErrInvalidCatalog, ProductsSheet)
	}

	products := make([]model.Product, 0, len(rows)-1)
	index := make(map[string]int, len(rows)-1)
	skipped := 0

	// first row is the header
	for i, row := range rows[1:] {
		p, err := parseProductRow(row)
		if err == nil {
			err = validateProduct(p)
		}
		if _, dup := index[p.ID]; err == nil && dup {
			err = fmt.Errorf("duplicate product id %q", p.ID)
		}
		if err != nil {
			logger.Warn("Skipping catalog row", map[string]interface{}{
				"row":   i + 2,
				"error": err.Error(),
			})
			skipped++
			continue
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}

	optionRows, err := f.GetRows(OptionsSheet)
	if err == nil {
		for i, row := range optionRows {
			if i == 0 {
				continue
			}
			if err := applyOptionRow(products, index, row); err != nil {
				logger.Warn("Skipping option row", map[string]interface{}{
					"row":   i + 1,
					"error": err.Error(),
				})
			}
		}
	}

	logger.Info("Catalog workbook loaded", map[string]interface{}{
		"file":     filePath,
		"products": len(products),
		"skipped":  skipped,
	})
	return New(products)
}

func parseProductRow(row []string) (model.Product, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	if cell(0) == "" || cell(1) == "" {
		return model.Product{}, fmt.Errorf("missing id or name")
	}
	price, err := decimal.NewFromString(cell(2))
	if err != nil {
		return model.Product{}, fmt.Errorf("invalid price %q", cell(2))
	}
	rating := 0.0
	if cell(6) != "" {
		if rating, err = strconv.ParseFloat(cell(6), 64); err != nil {
			return model.Product{}, fmt.Errorf("invalid rating %q", cell(6))
		}
	}
	reviews := 0
	if cell(7) != "" {
		if reviews, err = strconv.Atoi(cell(7)); err != nil {
			return model.Product{}, fmt.Errorf("invalid review count %q", cell(7))
		}
	}

	var features []string
	for _, feature := range strings.Split(cell(8), featureSeparator) {
		if feature = strings.TrimSpace(feature); feature != "" {
			features = append(features, feature)
		}
	}

	return model.Product{
		ID:          cell(0),
		Name:        cell(1),
		Price:       price,
		Category:    model.ProductCategory(cell(3)),
		Image:       cell(4),
		Description: cell(5),
		Rating:      rating,
		Reviews:     reviews,
		Features:    features,
	}, nil
}

func applyOptionRow(products []model.Product, index map[string]int, row []string) error {
	if len(row) < 3 {
		return fmt.Errorf("expected at least 3 columns, got %d", len(row))
	}
	productID, name, value := strings.TrimSpace(row[0]), strings.TrimSpace(row[1]), strings.TrimSpace(row[2])
	i, ok := index[productID]
	if !ok {
		return fmt.Errorf("unknown product %q", productID)
	}
	if name == "" || value == "" {
		return fmt.Errorf("missing option name or value")
	}

	var delta *decimal.Decimal
	if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
		d, err := decimal.NewFromString(strings.TrimSpace(row[3]))
		if err != nil {
			return fmt.Errorf("invalid price delta %q", row[3])
		}
		delta = &d
	}

	p := &products[i]
	pos := -1
	for j := range p.Options {
		if p.Options[j].Name == name {
			pos = j
			break
		}
	}
	if pos < 0 {
		p.Options = append(p.Options, model.VariantOption{Name: name})
		pos = len(p.Options) - 1
	}
	opt := &p.Options[pos]
	for _, existing := range opt.Values {
		if existing == value {
			return fmt.Errorf("duplicate value %q for option %q", value, name)
		}
	}
	opt.Values = append(opt.Values, value)

	if delta != nil {
		if opt.PriceModifiers == nil {
			opt.PriceModifiers = make(map[string]decimal.Decimal)
		}
		opt.PriceModifiers[value] = *delta
	}
	return nil
}

// WriteWorkbook exports products in the layout LoadWorkbook reads.
func WriteWorkbook(products []model.Product, filePath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ProductsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(OptionsSheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(ProductsSheet, "A1", &productHeader); err != nil {
		return err
	}
	if err := f.SetSheetRow(OptionsSheet, "A1", &optionHeader); err != nil {
		return err
	}

	optionRow := 2
	for i, p := range products {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			p.ID, p.Name, p.Price.String(), string(p.Category), p.Image, p.Description,
			strconv.FormatFloat(p.Rating, 'f', -1, 64), strconv.Itoa(p.Reviews),
			strings.Join(p.Features, featureSeparator+" "),
		}
		if err := f.SetSheetRow(ProductsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write product %s: %w", p.ID, err)
		}

		for _, opt := range p.Options {
			for _, value := range opt.Values {
				delta := ""
				if d, ok := opt.PriceModifiers[value]; ok {
					delta = d.String()
				}
				cell, _ := excelize.CoordinatesToCellName(1, optionRow)
				row := []interface{}{p.ID, opt.Name, value, delta}
				if err := f.SetSheetRow(OptionsSheet, cell, &row); err != nil {
					return fmt.Errorf("failed to write option %s/%s: %w", p.ID, opt.Name, err)
				}
				optionRow++
			}
		}
	}

	return f.SaveAs(filePath)
}
