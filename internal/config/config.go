package config

import (
	"encoding/json"
	"os"
)

type Config struct {
	InputFile     string `json:"input_file"`
	BarcodeFile   string `json:"barcode_file"`
	OutputFile    string `json:"output_file"`
	OutputDir     string `json:"output_dir"`
	LogFile       string `json:"log_file"`
	LogLevel      string `json:"log_level"`
	MaxLength     int    `json:"max_length"`
	NumBarcodes   int    `json:"num_barcodes"`
	StemLength    int    `json:"stem_length"`
	BarcodePrefix string `json:"barcode_prefix"`
	T7Promoter    string `json:"t7_promoter"`
	Workers       int    `json:"workers"`
}

// LoadConfig loads a JSON config from the given path. If path is empty, looks
// for ./config.json. A missing file is not fatal: defaults are returned and
// CLI flags fill the gaps.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}
	f, err := os.Open(path)
	if err != nil {
		// not fatal: return defaults
		return &Config{}, nil
	}
	defer f.Close()
	var c Config
	dec := json.NewDecoder(f)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
