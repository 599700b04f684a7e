package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Labels overrides the candidate action labels shown by the target
// application. Empty lists keep the built-in defaults.
type Labels struct {
	SellFromInventory []string `yaml:"sell_from_inventory"`
	PutUpForSale      []string `yaml:"put_up_for_sale"`
	ComparePrices     []string `yaml:"compare_prices"`
	Vendor            []string `yaml:"vendor"`
}

func ParseLabels(data []byte) (Labels, error) {
	var labels Labels

	if len(bytes.TrimSpace(data)) == 0 {
		return labels, nil
	}

	if err := yaml.Unmarshal(data, &labels); err != nil {
		return Labels{}, fmt.Errorf("yaml.Unmarshal: %w", err)
	}

	return labels, nil
}

// LoadLabels reads overrides from path. An empty path yields no overrides.
func LoadLabels(path string) (Labels, error) {
	if path == "" {
		return Labels{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Labels{}, fmt.Errorf("os.ReadFile: %w", err)
	}

	return ParseLabels(data)
}
