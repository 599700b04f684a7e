// Package catalogfile reads the scanned catalog produced by the pricing
// collaborator.
package catalogfile

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"automarket/internal/domain"
	"automarket/internal/domain/entity"
	"automarket/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// Document is the on-disk catalog.
type Document struct {
	ScannedAt string              `json:"scanned_at,omitempty"`
	Items     []*entity.StockItem `json:"items"`
}

func Decode(r io.Reader) ([]*entity.StockItem, error) {
	var doc Document

	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, domain.WrapError(err, errcodes.CatalogInvalid, "catalog is not valid JSON")
	}

	for i, item := range doc.Items {
		if item == nil {
			return nil, domain.NewError(errcodes.CatalogInvalid, fmt.Sprintf("item %d is null", i))
		}
		if item.ItemID == 0 {
			return nil, domain.NewError(errcodes.CatalogInvalid, fmt.Sprintf("item %d has no id", i))
		}
		if item.Quantity < 0 {
			return nil, domain.NewError(errcodes.CatalogInvalid, fmt.Sprintf("item %d has negative quantity", i))
		}
		if item.Location.IsZero() {
			return nil, domain.NewError(errcodes.CatalogInvalid, fmt.Sprintf("item %d has no location", i))
		}
	}

	return doc.Items, nil
}

func Load(path string) ([]*entity.StockItem, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.CatalogInvalid, "catalog file cannot be opened")
	}
	defer fh.Close()

	return Decode(fh)
}
