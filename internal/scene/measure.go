package scene

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/dragpoint/geodrag/internal/geom"
)

// MeasureKind is a quantity read off the scene.
type MeasureKind string

const (
	// Area is the unsigned area of the polygon through Points.
	Area MeasureKind = "area"
	// Distance is the length between two Points.
	Distance MeasureKind = "distance"
	// Angle is the angle at Points[1] between the other two, in degrees.
	Angle MeasureKind = "angle"
	// Ratio divides the reading Of[0] by the reading Of[1].
	Ratio MeasureKind = "ratio"
)

// Measure is a numeric readout recomputed after every update.
type Measure struct {
	ID     string
	Label  string
	Kind   MeasureKind
	Points []string
	// Of names earlier measures for Ratio.
	Of []string
	// Target, when set, flags the reading as on target within Tolerance.
	Target    *float64
	Tolerance float64
}

// Reading is a Measure evaluated at current positions.
type Reading struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Value    float64  `json:"value"`
	Valid    bool     `json:"valid"`
	Target   *float64 `json:"target,omitempty"`
	OnTarget bool     `json:"onTarget"`
}

func (r Reading) String() string {
	if !r.Valid {
		return r.Label + " = -"
	}
	return fmt.Sprintf("%s = %.2f", r.Label, r.Value)
}

func (m Measure) validate(points map[string]Point, earlier map[string]bool) error {
	if m.ID == "" {
		return fmt.Errorf("measure with empty id")
	}
	if earlier[m.ID] {
		return fmt.Errorf("duplicate measure %q", m.ID)
	}
	need := map[MeasureKind]int{Distance: 2, Angle: 3}
	switch m.Kind {
	case Area:
		if len(m.Points) < 3 {
			return fmt.Errorf("measure %s: area needs at least 3 points", m.ID)
		}
	case Distance, Angle:
		if len(m.Points) != need[m.Kind] {
			return fmt.Errorf("measure %s: %s needs %d points", m.ID, m.Kind, need[m.Kind])
		}
	case Ratio:
		if len(m.Of) != 2 {
			return fmt.Errorf("measure %s: ratio needs 2 measures", m.ID)
		}
		for _, id := range m.Of {
			if !earlier[id] {
				return fmt.Errorf("measure %s: ratio of unknown or later measure %q", m.ID, id)
			}
		}
		return nil
	default:
		return fmt.Errorf("measure %s: unknown kind %q", m.ID, m.Kind)
	}
	for _, id := range m.Points {
		if _, ok := points[id]; !ok {
			return fmt.Errorf("measure %s: unknown point %q", m.ID, id)
		}
	}
	return nil
}

func (m Measure) evaluate(pos map[string]geom.Vec, done map[string]Reading) Reading {
	label := m.Label
	if label == "" {
		label = m.ID
	}
	r := Reading{ID: m.ID, Label: label, Target: m.Target, Valid: true}

	switch m.Kind {
	case Area:
		r.Value = polygonArea(pos, m.Points)
	case Distance:
		r.Value = geom.Distance(pos[m.Points[0]], pos[m.Points[1]])
	case Angle:
		v := pos[m.Points[1]]
		a := geom.Sub(pos[m.Points[0]], v)
		b := geom.Sub(pos[m.Points[2]], v)
		if geom.Norm(a) < geom.Tolerance || geom.Norm(b) < geom.Tolerance {
			r.Valid = false
			break
		}
		r.Value = math.Abs(geom.SignedAngle(a, b)) * 180 / math.Pi
	case Ratio:
		num, den := done[m.Of[0]], done[m.Of[1]]
		if !num.Valid || !den.Valid || geom.IsZero(den.Value) {
			r.Valid = false
			break
		}
		r.Value = num.Value / den.Value
	}

	if r.Valid && m.Target != nil {
		r.OnTarget = scalar.EqualWithinAbs(r.Value, *m.Target, m.Tolerance)
	}
	return r
}

// polygonArea is the shoelace formula.
func polygonArea(pos map[string]geom.Vec, ids []string) float64 {
	var sum float64
	for i, id := range ids {
		sum += geom.Cross(pos[id], pos[ids[(i+1)%len(ids)]])
	}
	return math.Abs(sum) / 2
}
