// Package document loads scene documents: a list of entity packets in YAML or
// JSON describing positions, availability and proxy graphics. Packets sharing
// an id are merged in document order, later packets overriding earlier ones.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingID       = errors.New("packet has no id")
	ErrInvalidPosition = errors.New("position needs exactly one of degrees, cartesian or samples")
	ErrInvalidVector   = errors.New("vector needs three components")
	ErrInvalidColor    = errors.New("color needs four components in 0..255 or #rrggbbaa")
	ErrUnknownFormat   = errors.New("unknown document format")
	ErrUnknownInterp   = errors.New("unknown interpolation")
	ErrEmptyProperty   = errors.New("property has neither value nor samples")
)

// Document is the decoded form of a scene file.
type Document struct {
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Packets []Packet `json:"packets" yaml:"packets"`
}

// Packet describes one entity or an update to an entity declared earlier.
type Packet struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name,omitempty" yaml:"name,omitempty"`
	Availability *IntervalDoc `json:"availability,omitempty" yaml:"availability,omitempty"`
	Position     *PositionDoc `json:"position,omitempty" yaml:"position,omitempty"`
	Proxy        *ProxyDoc    `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	Delete       bool         `json:"delete,omitempty" yaml:"delete,omitempty"`
}

type IntervalDoc struct {
	Start time.Time `json:"start,omitempty" yaml:"start,omitempty"`
	Stop  time.Time `json:"stop,omitempty" yaml:"stop,omitempty"`
}

// PositionDoc is either a constant (geodetic degrees or cartesian meters) or
// time-tagged samples.
type PositionDoc struct {
	Degrees       []float64        `json:"degrees,omitempty" yaml:"degrees,omitempty"`
	Cartesian     []float64        `json:"cartesian,omitempty" yaml:"cartesian,omitempty"`
	Samples       []PositionSample `json:"samples,omitempty" yaml:"samples,omitempty"`
	Interpolation string           `json:"interpolation,omitempty" yaml:"interpolation,omitempty"`
	Hold          bool             `json:"hold,omitempty" yaml:"hold,omitempty"`
}

type PositionSample struct {
	Time      time.Time `json:"time" yaml:"time"`
	Degrees   []float64 `json:"degrees,omitempty" yaml:"degrees,omitempty"`
	Cartesian []float64 `json:"cartesian,omitempty" yaml:"cartesian,omitempty"`
}

// ProxyDoc is the proxy part of a packet. Interval limits every property of
// this packet to that time range.
type ProxyDoc struct {
	Show     *bool        `json:"show,omitempty" yaml:"show,omitempty"`
	Rotation *NumberDoc   `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Scale    *NumberDoc   `json:"scale,omitempty" yaml:"scale,omitempty"`
	Color    *ColorDoc    `json:"color,omitempty" yaml:"color,omitempty"`
	Interval *IntervalDoc `json:"interval,omitempty" yaml:"interval,omitempty"`
	Objects  []ObjectDoc  `json:"objects,omitempty" yaml:"objects,omitempty"`
}

// ObjectDoc declares one representation. Type selects which fields apply.
type ObjectDoc struct {
	Type             string    `json:"type" yaml:"type"`
	URI              string    `json:"uri,omitempty" yaml:"uri,omitempty"`
	Image            string    `json:"image,omitempty" yaml:"image,omitempty"`
	MinimumPixelSize float64   `json:"minimumPixelSize,omitempty" yaml:"minimumPixelSize,omitempty"`
	Scale            float64   `json:"scale,omitempty" yaml:"scale,omitempty"`
	Rotation         float64   `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Color            *ColorDoc `json:"color,omitempty" yaml:"color,omitempty"`
	Distance         float64   `json:"distance" yaml:"distance"`
}

// NumberDoc is a constant (`scale: 2`) or a sampled value
// (`scale: {samples: [...], interpolation: linear}`).
type NumberDoc struct {
	Value         *float64       `json:"value,omitempty" yaml:"value,omitempty"`
	Samples       []NumberSample `json:"samples,omitempty" yaml:"samples,omitempty"`
	Interpolation string         `json:"interpolation,omitempty" yaml:"interpolation,omitempty"`
	Hold          bool           `json:"hold,omitempty" yaml:"hold,omitempty"`
}

type NumberSample struct {
	Time  time.Time `json:"time" yaml:"time"`
	Value float64   `json:"value" yaml:"value"`
}

type numberFields NumberDoc

func (n *NumberDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v float64
		if err := node.Decode(&v); err != nil {
			return err
		}
		n.Value = &v
		return nil
	}
	return node.Decode((*numberFields)(n))
}

func (n *NumberDoc) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		n.Value = &v
		return nil
	}
	return json.Unmarshal(data, (*numberFields)(n))
}

// ColorDoc is `[r, g, b, a]` with 0..255 components or a `#rrggbb[aa]` string.
type ColorDoc struct {
	RGBA [4]uint8
}

func (c *ColorDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return c.parseHex(node.Value)
	}
	var parts []int
	if err := node.Decode(&parts); err != nil {
		return err
	}
	return c.fromInts(parts)
}

func (c *ColorDoc) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return c.parseHex(s)
	}
	var parts []int
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	return c.fromInts(parts)
}

func (c *ColorDoc) fromInts(parts []int) error {
	if len(parts) != 4 {
		return ErrInvalidColor
	}
	for i, p := range parts {
		if p < 0 || p > 255 {
			return ErrInvalidColor
		}
		c.RGBA[i] = uint8(p)
	}
	return nil
}

func (c *ColorDoc) parseHex(s string) error {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return ErrInvalidColor
	}
	var r, g, b, a uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x%02x", &r, &g, &b, &a); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidColor, err)
	}
	c.RGBA = [4]uint8{r, g, b, a}
	return nil
}

// LoadYAML decodes a document from YAML.
func LoadYAML(r io.Reader) (*Document, error) {
	var d Document
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return &d, nil
		}
		return nil, err
	}
	return &d, nil
}

// LoadJSON decodes a document from JSON.
func LoadJSON(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Load reads a document file, picking the decoder by extension.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(f)
	case ".json", ".czml":
		return LoadJSON(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}
