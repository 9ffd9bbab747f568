// Package construction defines the declarative format for interactive
// constructions and compiles definitions into engine rules, a drag domain
// and a scene.
package construction

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dragpoint/geodrag/internal/scene"
)

// Definition is a complete construction as stored on disk or in the
// database. YAML and JSON share field names.
type Definition struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	View        *View         `json:"view,omitempty" yaml:"view,omitempty"`
	Fixed       []PointDef    `json:"fixed" yaml:"fixed"`
	Free        FreeDef       `json:"free" yaml:"free"`
	Rules       []RuleDef     `json:"rules,omitempty" yaml:"rules,omitempty"`
	Relations   []RelationDef `json:"relations,omitempty" yaml:"relations,omitempty"`
	Measures    []MeasureDef  `json:"measures,omitempty" yaml:"measures,omitempty"`
	Trace       *TraceDef     `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// View is the world rectangle shown by renderers.
type View struct {
	MinX float64 `json:"minX" yaml:"minX"`
	MinY float64 `json:"minY" yaml:"minY"`
	MaxX float64 `json:"maxX" yaml:"maxX"`
	MaxY float64 `json:"maxY" yaml:"maxY"`
}

// XY is a literal coordinate pair.
type XY struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// PointDef is a fixed point.
type PointDef struct {
	ID    string      `json:"id" yaml:"id"`
	X     float64     `json:"x" yaml:"x"`
	Y     float64     `json:"y" yaml:"y"`
	Style scene.Style `json:"style,omitempty" yaml:"style,omitempty"`
}

// FreeDef is the draggable point with its initial position and domain.
type FreeDef struct {
	ID        string      `json:"id" yaml:"id"`
	X         float64     `json:"x" yaml:"x"`
	Y         float64     `json:"y" yaml:"y"`
	Style     scene.Style `json:"style,omitempty" yaml:"style,omitempty"`
	Domain    DomainDef   `json:"domain" yaml:"domain"`
	HitRadius float64     `json:"hitRadius,omitempty" yaml:"hitRadius,omitempty"`
}

// Domain kinds.
const (
	DomainAxis  = "axis"
	DomainPlane = "plane"
	DomainRay   = "ray"
)

// DomainDef describes where the free point may move. Missing Min or Max
// bounds are unbounded.
type DomainDef struct {
	Kind      string   `json:"kind" yaml:"kind"`
	Axis      string   `json:"axis,omitempty" yaml:"axis,omitempty"`
	Offset    float64  `json:"offset,omitempty" yaml:"offset,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Clamp     bool     `json:"clamp,omitempty" yaml:"clamp,omitempty"`
	Origin    *XY      `json:"origin,omitempty" yaml:"origin,omitempty"`
	Direction *XY      `json:"direction,omitempty" yaml:"direction,omitempty"`
}

// LineDef names a line: through two points, optionally turned into the
// perpendicular or parallel through a third.
type LineDef struct {
	Through         []string `json:"through" yaml:"through"`
	PerpendicularAt string   `json:"perpendicularAt,omitempty" yaml:"perpendicularAt,omitempty"`
	ParallelAt      string   `json:"parallelAt,omitempty" yaml:"parallelAt,omitempty"`
}

// RuleDef is one derived point. Which fields apply depends on Kind:
//
//	intersection       lines (2)
//	perpendicularFoot  point, line
//	rotate             point, center, degrees, direction
//	reflect            point, line
//	midpoint           a, b
//	angleBisector      vertex, arm1, arm2, fraction, onto
//	angleRay           vertex, arm, degrees, onto, select
type RuleDef struct {
	ID        string      `json:"id" yaml:"id"`
	Kind      string      `json:"kind" yaml:"kind"`
	Point     string      `json:"point,omitempty" yaml:"point,omitempty"`
	Center    string      `json:"center,omitempty" yaml:"center,omitempty"`
	Vertex    string      `json:"vertex,omitempty" yaml:"vertex,omitempty"`
	Arm       string      `json:"arm,omitempty" yaml:"arm,omitempty"`
	Arm1      string      `json:"arm1,omitempty" yaml:"arm1,omitempty"`
	Arm2      string      `json:"arm2,omitempty" yaml:"arm2,omitempty"`
	A         string      `json:"a,omitempty" yaml:"a,omitempty"`
	B         string      `json:"b,omitempty" yaml:"b,omitempty"`
	Line      *LineDef    `json:"line,omitempty" yaml:"line,omitempty"`
	Lines     []LineDef   `json:"lines,omitempty" yaml:"lines,omitempty"`
	Onto      *LineDef    `json:"onto,omitempty" yaml:"onto,omitempty"`
	Degrees   float64     `json:"degrees,omitempty" yaml:"degrees,omitempty"`
	Direction string      `json:"direction,omitempty" yaml:"direction,omitempty"`
	Fraction  *float64    `json:"fraction,omitempty" yaml:"fraction,omitempty"`
	Select    string      `json:"select,omitempty" yaml:"select,omitempty"`
	Style     scene.Style `json:"style,omitempty" yaml:"style,omitempty"`
}

// RelationDef is a drawn shape.
type RelationDef struct {
	ID     string      `json:"id" yaml:"id"`
	Kind   string      `json:"kind" yaml:"kind"`
	Points []string    `json:"points" yaml:"points"`
	Style  scene.Style `json:"style,omitempty" yaml:"style,omitempty"`
}

// MeasureDef is a numeric readout.
type MeasureDef struct {
	ID        string   `json:"id" yaml:"id"`
	Label     string   `json:"label,omitempty" yaml:"label,omitempty"`
	Kind      string   `json:"kind" yaml:"kind"`
	Points    []string `json:"points,omitempty" yaml:"points,omitempty"`
	Of        []string `json:"of,omitempty" yaml:"of,omitempty"`
	Target    *float64 `json:"target,omitempty" yaml:"target,omitempty"`
	Tolerance float64  `json:"tolerance,omitempty" yaml:"tolerance,omitempty"`
}

// TraceDef records the path of one point while dragging.
type TraceDef struct {
	Point string      `json:"point" yaml:"point"`
	Style scene.Style `json:"style,omitempty" yaml:"style,omitempty"`
}

// ErrEmpty is returned when a document holds no definition.
var ErrEmpty = errors.New("empty construction document")

// Parse decodes a YAML or JSON definition. Unknown fields are rejected.
func Parse(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("decode construction: %w", err)
	}
	return &def, nil
}

// Load reads and parses a definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Marshal encodes a definition as YAML.
func Marshal(def *Definition) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(def); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
