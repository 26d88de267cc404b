// Package config defines the configuration surface enumerated in
// spec.md §6. Loading it from a file or environment is an external
// collaborator's responsibility (spec.md §1 places config loading out of
// the core's scope); this package only defines its shape and validates
// internal consistency.
package config

import "fmt"

// DetectorType is one of the four detector shapes in spec.md §4.1.
type DetectorType string

const (
	DetectorTypeTextContents   DetectorType = "TextContents"
	DetectorTypeTextChat       DetectorType = "TextChat"
	DetectorTypeTextContextDoc DetectorType = "TextContextDoc"
	DetectorTypeTextGeneration DetectorType = "TextGeneration"
)

// GenerationType is one of the generation backend families in spec.md §6.
type GenerationType string

const (
	GenerationTypeTGIS   GenerationType = "tgis"
	GenerationTypeNLP    GenerationType = "nlp"
	GenerationTypeOpenAI GenerationType = "openai"
)

// TLSConfig carries client-facing TLS material. Consumed only by the
// transport layer (pkg/clients/httpclient); the core never inspects it.
type TLSConfig struct {
	CertPath   string
	KeyPath    string
	CACertPath string
	Insecure   bool
}

// ServiceConfig addresses one external collaborator (detector, chunker,
// or generation backend).
type ServiceConfig struct {
	Hostname string
	Port     int
	TLS      *TLSConfig
}

// DefaultChunkerBatchSize is used when a DetectorConfig leaves
// ChunkerBatchSize unset.
const DefaultChunkerBatchSize = 16

// DetectorConfig is one entry of the detector catalog.
type DetectorConfig struct {
	Type             DetectorType
	ChunkerID        string
	DefaultThreshold float64
	ChunkerBatchSize int
	Service          ServiceConfig
}

// BatchSize returns the configured chunk batch size, or
// DefaultChunkerBatchSize if unset.
func (d DetectorConfig) BatchSize() int {
	if d.ChunkerBatchSize <= 0 {
		return DefaultChunkerBatchSize
	}
	return d.ChunkerBatchSize
}

// ChunkerConfig is one entry of the chunker catalog.
type ChunkerConfig struct {
	Service ServiceConfig
}

// GenerationConfig addresses the single configured generation route.
type GenerationConfig struct {
	Type    GenerationType
	Service ServiceConfig
}

// Config is the process-wide configuration surface.
type Config struct {
	Detectors           map[string]DetectorConfig
	Chunkers            map[string]ChunkerConfig
	Generation          GenerationConfig
	TLS                 *TLSConfig
	PassthroughHeaders  []string
}

// Validate checks internal consistency: every detector must name a
// chunker_id, and that chunker_id must resolve in Chunkers. Empty
// catalogs are not rejected.
func (c *Config) Validate() error {
	for id, d := range c.Detectors {
		if d.ChunkerID == "" {
			return fmt.Errorf("detector %q: chunker_id is required", id)
		}
		if _, ok := c.Chunkers[d.ChunkerID]; !ok {
			return fmt.Errorf("detector %q: chunker %q not found", id, d.ChunkerID)
		}
	}
	return nil
}
