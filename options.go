package pdfparser

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for ExtractionConfig.
const (
	DefaultConfidenceThreshold = 0.5
	DefaultMinTextLength       = 100
)

// ExtractionConfig holds the recognized extraction options. The zero value
// is not a working configuration; start from DefaultConfig or LoadConfig.
type ExtractionConfig struct {
	// UseOCR enables the OCR fallback machinery at all.
	UseOCR bool `yaml:"use_ocr"`

	// OCRLanguages are the language codes recognized text may be in,
	// in priority order. Defaults to English.
	OCRLanguages []string `yaml:"ocr_languages"`

	// ConfidenceThreshold is the minimum per-token OCR confidence, in
	// [0, 1], for a token to be accepted into merged text.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// EnableOCRFallback allows the automatic quality-driven trigger.
	// With it off, only pages forced via ForcedPages are recognized.
	EnableOCRFallback bool `yaml:"enable_ocr_fallback"`

	// MinTextLengthTrigger is the per-page rune count under which primary
	// extraction is considered insufficient.
	MinTextLengthTrigger int `yaml:"min_text_length_trigger"`

	// PageTimeout bounds each page's OCR call. Zero means the enhance
	// package default.
	PageTimeout time.Duration `yaml:"page_timeout"`

	// ForcedPages are zero-based page indices always sent to OCR when
	// UseOCR is on, regardless of the automatic trigger.
	ForcedPages []int `yaml:"forced_pages,omitempty"`
}

// DefaultConfig returns the default extraction configuration: OCR enabled
// with automatic fallback, English, 0.5 confidence threshold, 100-rune
// per-page trigger.
func DefaultConfig() ExtractionConfig {
	return ExtractionConfig{
		UseOCR:               true,
		OCRLanguages:         []string{"en"},
		ConfidenceThreshold:  DefaultConfidenceThreshold,
		EnableOCRFallback:    true,
		MinTextLengthTrigger: DefaultMinTextLength,
	}
}

// LoadConfig reads a YAML configuration file, applying defaults for any
// omitted option.
func LoadConfig(path string) (ExtractionConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// ConfigError reports an invalid option value. Configuration problems are
// rejected before any extraction work begins.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// Validate checks the option values. It returns a *ConfigError describing
// the first problem found, or nil.
func (c ExtractionConfig) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return &ConfigError{Field: "confidence_threshold", Reason: "must be in [0, 1]"}
	}
	if c.UseOCR && len(c.OCRLanguages) == 0 {
		return &ConfigError{Field: "ocr_languages", Reason: "must not be empty when use_ocr is set"}
	}
	if c.MinTextLengthTrigger < 1 {
		return &ConfigError{Field: "min_text_length_trigger", Reason: "must be positive"}
	}
	if c.PageTimeout < 0 {
		return &ConfigError{Field: "page_timeout", Reason: "must not be negative"}
	}
	for _, p := range c.ForcedPages {
		if p < 0 {
			return &ConfigError{Field: "forced_pages", Reason: "page indices must not be negative"}
		}
	}
	return nil
}

// clone creates a deep copy of the configuration.
func (c ExtractionConfig) clone() ExtractionConfig {
	out := c
	if c.OCRLanguages != nil {
		out.OCRLanguages = append([]string(nil), c.OCRLanguages...)
	}
	if c.ForcedPages != nil {
		out.ForcedPages = append([]int(nil), c.ForcedPages...)
	}
	return out
}
