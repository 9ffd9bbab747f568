package scene

import (
	"encoding/json"

	"github.com/dragpoint/geodrag/internal/geom"
)

// DrawCommand is a single drawing operation in world coordinates. Clients
// receive a list of these and map them through their own viewport.
type DrawCommand struct {
	Op          string       `json:"op"`                 // "polygon", "segment", "polyline", "circle", "trace", "point"
	ObjectID    string       `json:"objectId,omitempty"` // relation or point id
	Points      [][2]float64 `json:"points"`
	Radius      float64      `json:"radius,omitempty"`
	Fill        string       `json:"fill,omitempty"`
	Stroke      string       `json:"stroke,omitempty"`
	StrokeWidth float64      `json:"strokeWidth,omitempty"`
	Dash        []float64    `json:"dash,omitempty"`
	Label       string       `json:"label,omitempty"`
	Role        string       `json:"role,omitempty"`
}

// Default colours, matched to the point roles.
const (
	ColorFixed    = "#222222"
	ColorFree     = "#d62728"
	ColorDerived  = "#1f77b4"
	ColorRelation = "#555555"
	ColorTrace    = "#ff7f0e"
)

// CompileDrawCommands generates the draw command buffer for a scene in
// painter's order: filled polygons, then the other relations as declared,
// then the trace, then points with the free point last.
func CompileDrawCommands(s *Scene) []DrawCommand {
	if s == nil {
		return nil
	}
	var commands []DrawCommand

	for _, r := range s.relations {
		if r.Kind == Polygon && !r.Style.Hidden {
			commands = append(commands, s.relationCommand(r))
		}
	}
	for _, r := range s.relations {
		if r.Kind != Polygon && !r.Style.Hidden {
			commands = append(commands, s.relationCommand(r))
		}
	}

	if len(s.trace) > 1 {
		st := s.traceStyle
		cmd := DrawCommand{
			Op:          "trace",
			ObjectID:    s.traced,
			Points:      make([][2]float64, len(s.trace)),
			Stroke:      orDefault(st.Stroke, ColorTrace),
			StrokeWidth: orWidth(st.Width, 1.5),
			Dash:        st.Dash,
		}
		for i, p := range s.trace {
			cmd.Points[i] = [2]float64{p.X, p.Y}
		}
		commands = append(commands, cmd)
	}

	for _, role := range []Role{RoleFixed, RoleDerived, RoleFree} {
		for _, id := range s.order {
			p := s.points[id]
			st := s.styles[id]
			if p.Role != role || st.Hidden {
				continue
			}
			label := st.Label
			if label == "" {
				label = id
			}
			commands = append(commands, DrawCommand{
				Op:       "point",
				ObjectID: id,
				Points:   [][2]float64{{p.Pos.X, p.Pos.Y}},
				Fill:     orDefault(st.Fill, roleColor(role)),
				Stroke:   st.Stroke,
				Label:    label,
				Role:     role.String(),
			})
		}
	}
	return commands
}

func (s *Scene) relationCommand(r Relation) DrawCommand {
	cmd := DrawCommand{
		Op:          string(r.Kind),
		ObjectID:    r.ID,
		Stroke:      orDefault(r.Style.Stroke, ColorRelation),
		StrokeWidth: orWidth(r.Style.Width, 1.5),
		Fill:        r.Style.Fill,
		Dash:        r.Style.Dash,
		Label:       r.Style.Label,
	}
	if r.Kind == Circle {
		c := s.points[r.Points[0]].Pos
		cmd.Points = [][2]float64{{c.X, c.Y}}
		cmd.Radius = geom.Distance(c, s.points[r.Points[1]].Pos)
		return cmd
	}
	cmd.Points = make([][2]float64, len(r.Points))
	for i, id := range r.Points {
		p := s.points[id].Pos
		cmd.Points[i] = [2]float64{p.X, p.Y}
	}
	return cmd
}

func roleColor(r Role) string {
	switch r {
	case RoleFree:
		return ColorFree
	case RoleDerived:
		return ColorDerived
	default:
		return ColorFixed
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orWidth(w, def float64) float64 {
	if w <= 0 {
		return def
	}
	return w
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// HitTest returns the id of the visible point nearest to p within radius,
// or "". Ties go to the point drawn on top.
func HitTest(s *Scene, p geom.Vec, radius float64) string {
	if s == nil {
		return ""
	}
	best, bestDist := "", radius
	for _, role := range []Role{RoleFree, RoleDerived, RoleFixed} {
		for i := len(s.order) - 1; i >= 0; i-- {
			pt := s.points[s.order[i]]
			if pt.Role != role || s.styles[pt.ID].Hidden {
				continue
			}
			if d := geom.Distance(pt.Pos, p); d < bestDist || (best == "" && d <= radius) {
				best, bestDist = pt.ID, d
			}
		}
	}
	return best
}
