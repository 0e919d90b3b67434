// Package importer reads menu item CSV exports and inserts/updates the item
// templates. Option lists are encoded inline as "Label:cents" pairs joined
// with semicolons, e.g. "Nhỏ:45000;Lớn:50000".
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"foodorder/internal/domain"
)

type ItemWriter interface {
	UpsertItem(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)
}

// CSVImporter parses a menu CSV and upserts one item per row.
type CSVImporter struct {
	reader *csv.Reader
	items  ItemWriter
}

func NewCSVImporter(r io.Reader, items ItemWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{reader: csvr, items: items}
}

// Run parses CSV rows and upserts items. It returns how many rows were saved.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		item, err := parseItem(record, index)
		if err != nil {
			return imported, err
		}
		if item == nil {
			continue
		}
		if _, err := i.items.UpsertItem(ctx, *item); err != nil {
			return imported, fmt.Errorf("upsert item %q: %w", item.Name, err)
		}
		imported++
	}

	return imported, nil
}

func parseItem(record []string, index map[string]int) (*domain.MenuItem, error) {
	name := pick(record, index, "name")
	if name == "" {
		return nil, nil
	}

	id := pick(record, index, "id")
	if id != "" && len(id) != 36 {
		return nil, fmt.Errorf("invalid id for item %q: %s", name, id)
	}

	var basePrice int64
	if raw := pick(record, index, "base_price_cents"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid base price for item %q: %s", name, raw)
		}
		basePrice = n
	}

	sizes, err := parseOptions(pick(record, index, "sizes"))
	if err != nil {
		return nil, fmt.Errorf("sizes for item %q: %w", name, err)
	}
	bases, err := parseOptions(pick(record, index, "bases"))
	if err != nil {
		return nil, fmt.Errorf("bases for item %q: %w", name, err)
	}
	extras, err := parseOptions(pick(record, index, "extras"))
	if err != nil {
		return nil, fmt.Errorf("extras for item %q: %w", name, err)
	}

	kind := domain.ExtrasKind(pick(record, index, "extras_kind"))
	switch kind {
	case domain.ExtrasToppings, domain.ExtrasAddOns:
	case "", domain.ExtrasNone:
		kind = domain.ExtrasNone
		if len(extras) > 0 {
			return nil, fmt.Errorf("item %q has extras but no extras_kind", name)
		}
	default:
		return nil, fmt.Errorf("unknown extras_kind %q for item %q", kind, name)
	}

	return &domain.MenuItem{
		ID:             id,
		Name:           name,
		Image:          pick(record, index, "image"),
		BasePriceCents: basePrice,
		Sizes:          sizes,
		Bases:          bases,
		ExtrasKind:     kind,
		Extras:         extras,
	}, nil
}

func parseOptions(raw string) ([]domain.Option, error) {
	if raw == "" {
		return nil, nil
	}
	var opts []domain.Option
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		label, centStr, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("malformed option %q", pair)
		}
		cents, err := strconv.ParseInt(strings.TrimSpace(centStr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed option price %q", pair)
		}
		opts = append(opts, domain.Option{Label: strings.TrimSpace(label), PriceCents: cents})
	}
	return opts, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
