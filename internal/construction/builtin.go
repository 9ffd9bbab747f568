package construction

import (
	"sort"

	"github.com/dragpoint/geodrag/internal/scene"
)

func ptr(v float64) *float64 { return &v }

func through(a, b string) LineDef { return LineDef{Through: []string{a, b}} }

func perpendicularAt(at, a, b string) LineDef {
	return LineDef{Through: []string{a, b}, PerpendicularAt: at}
}

var dashed = []float64{6, 4}

// ExtensionPerpendicular: M slides along the extension of CA beyond A.
// AQ ⊥ AB at A and the perpendicular to BM at M meet at P = (m+4, m).
// S△AMP / S△AMN = m/4, so the target ratio 3/2 is reached at CM = 6.
func ExtensionPerpendicular() *Definition {
	return &Definition{
		ID:          "extension-perpendicular",
		Name:        "Perpendicular on the extension of CA",
		Description: "M lies on the extension of CA. AQ ⊥ AB at A; the perpendicular to BM at M meets AQ at P. Find CM with S△AMP = 3/2 S△AMN.",
		View:        &View{MinX: -5, MinY: -5, MaxX: 15, MaxY: 15},
		Fixed: []PointDef{
			{ID: "A", X: 4, Y: 0},
			{ID: "B", X: 0, Y: 4},
			{ID: "C", X: 0, Y: 0},
			{ID: "N", X: 0, Y: -4, Style: scene.Style{Fill: "#2ca02c"}},
		},
		Free: FreeDef{
			ID: "M", X: 6, Y: 0,
			Domain: DomainDef{Kind: DomainAxis, Axis: "x", Min: ptr(4.01), Clamp: true},
		},
		Rules: []RuleDef{
			{ID: "P", Kind: "intersection", Lines: []LineDef{perpendicularAt("A", "A", "B"), perpendicularAt("M", "B", "M")}},
		},
		Relations: []RelationDef{
			{ID: "AMP", Kind: "polygon", Points: []string{"A", "M", "P"}, Style: scene.Style{Fill: "#00ffff66", Stroke: "#00000000"}},
			{ID: "AMN", Kind: "polygon", Points: []string{"A", "M", "N"}, Style: scene.Style{Fill: "#ffff0066", Stroke: "#00000000"}},
			{ID: "ABC", Kind: "polygon", Points: []string{"A", "B", "C"}, Style: scene.Style{Stroke: "#000000"}},
			{ID: "CN", Kind: "segment", Points: []string{"C", "N"}, Style: scene.Style{Stroke: "#2ca02c", Dash: dashed}},
			{ID: "AN", Kind: "segment", Points: []string{"A", "N"}, Style: scene.Style{Stroke: "#2ca02c", Dash: dashed}},
			{ID: "BM", Kind: "segment", Points: []string{"B", "M"}, Style: scene.Style{Stroke: "#d62728", Dash: dashed}},
			{ID: "MP", Kind: "segment", Points: []string{"M", "P"}, Style: scene.Style{Stroke: "#1f77b4", Dash: dashed}},
			{ID: "NP", Kind: "segment", Points: []string{"N", "P"}, Style: scene.Style{Stroke: "#2ca02c"}},
			{ID: "MN", Kind: "segment", Points: []string{"M", "N"}, Style: scene.Style{Stroke: "#bcbd22", Dash: dashed}},
		},
		Measures: []MeasureDef{
			{ID: "cm", Label: "CM", Kind: "distance", Points: []string{"C", "M"}},
			{ID: "amp", Label: "S△PAM", Kind: "area", Points: []string{"A", "M", "P"}},
			{ID: "amn", Label: "S△AMN", Kind: "area", Points: []string{"A", "M", "N"}},
			{ID: "ratio", Label: "ratio", Kind: "ratio", Of: []string{"amp", "amn"}, Target: ptr(1.5), Tolerance: 0.01},
		},
	}
}

// RotationLocus: P slides along the x axis and E is P turned a quarter
// turn counter-clockwise about C. The trace of E is a straight line.
func RotationLocus() *Definition {
	return &Definition{
		ID:          "rotation-locus",
		Name:        "Locus of a rotated point",
		Description: "P moves on the x axis; E is CP rotated 90° about C. Drag P and watch the path of E.",
		View:        &View{MinX: -15, MinY: -15, MaxX: 10, MaxY: 10},
		Fixed: []PointDef{
			{ID: "A", X: 0, Y: 4},
			{ID: "B", X: 4, Y: 0},
			{ID: "C", X: 2, Y: 2},
		},
		Free: FreeDef{
			ID: "P", X: -2, Y: 0,
			Style:  scene.Style{Fill: "#1f77b4"},
			Domain: DomainDef{Kind: DomainAxis, Axis: "x"},
		},
		Rules: []RuleDef{
			{ID: "E", Kind: "rotate", Point: "P", Center: "C", Degrees: 90, Direction: "ccw", Style: scene.Style{Fill: "#d62728"}},
		},
		Relations: []RelationDef{
			{ID: "AB", Kind: "segment", Points: []string{"A", "B"}, Style: scene.Style{Stroke: "#2ca02c"}},
			{ID: "PC", Kind: "segment", Points: []string{"P", "C"}, Style: scene.Style{Stroke: "#1f77b4"}},
			{ID: "CE", Kind: "segment", Points: []string{"C", "E"}, Style: scene.Style{Stroke: "#d62728"}},
			{ID: "AE", Kind: "segment", Points: []string{"A", "E"}, Style: scene.Style{Stroke: "#000000", Dash: dashed}},
		},
		Trace: &TraceDef{Point: "E", Style: scene.Style{Stroke: "#d62728", Dash: []float64{2, 3}}},
	}
}

// AngleRotation: P slides along the x axis right of D. Q is where the
// perpendicular to AP at P meets line CD. The ray from B at 45° off BQ
// meets DA at F, and F' is F turned a quarter turn clockwise about B.
func AngleRotation() *Definition {
	return &Definition{
		ID:          "angle-rotation",
		Name:        "45° ray and rotation",
		Description: "P moves on the x axis beyond D. PQ ⊥ AP meets line CD at Q; ∠QBF = 45° with F on DA; F' is F rotated 90° clockwise about B.",
		View:        &View{MinX: -10, MinY: -10, MaxX: 15, MaxY: 15},
		Fixed: []PointDef{
			{ID: "A", X: 0, Y: 3},
			{ID: "B", X: -2, Y: 0},
			{ID: "C", X: 1, Y: -2},
			{ID: "D", X: 3, Y: 0},
		},
		Free: FreeDef{
			ID: "P", X: 5, Y: 0,
			Domain: DomainDef{Kind: DomainAxis, Axis: "x", Min: ptr(3)},
		},
		Rules: []RuleDef{
			{ID: "Q", Kind: "intersection", Lines: []LineDef{perpendicularAt("P", "A", "P"), through("C", "D")}, Style: scene.Style{Fill: "#2ca02c"}},
			{ID: "F", Kind: "angleRay", Vertex: "B", Arm: "Q", Degrees: 45, Onto: &LineDef{Through: []string{"D", "A"}}, Select: "negativeX"},
			{ID: "F'", Kind: "rotate", Point: "F", Center: "B", Degrees: 90, Direction: "cw", Style: scene.Style{Fill: "#e377c2"}},
		},
		Relations: []RelationDef{
			{ID: "CQ", Kind: "segment", Points: []string{"C", "Q"}, Style: scene.Style{Stroke: "#2ca02c"}},
			{ID: "AP", Kind: "segment", Points: []string{"A", "P"}, Style: scene.Style{Stroke: "#d62728", Dash: dashed}},
			{ID: "PQ", Kind: "segment", Points: []string{"P", "Q"}, Style: scene.Style{Stroke: "#d62728", Dash: dashed}},
			{ID: "BQ", Kind: "segment", Points: []string{"B", "Q"}, Style: scene.Style{Stroke: "#1f77b4"}},
			{ID: "BF", Kind: "segment", Points: []string{"B", "F"}, Style: scene.Style{Stroke: "#1f77b4", Dash: dashed}},
			{ID: "QF", Kind: "segment", Points: []string{"Q", "F"}, Style: scene.Style{Stroke: "#1f77b4", Width: 2}},
			{ID: "DA", Kind: "segment", Points: []string{"D", "A"}, Style: scene.Style{Stroke: "#000000"}},
			{ID: "AB", Kind: "segment", Points: []string{"A", "B"}, Style: scene.Style{Stroke: "#000000"}},
			{ID: "AF", Kind: "segment", Points: []string{"A", "F"}, Style: scene.Style{Stroke: "#000000"}},
			{ID: "CBF'", Kind: "polyline", Points: []string{"C", "B", "F'"}, Style: scene.Style{Stroke: "#e377c2", Dash: dashed}},
			{ID: "QCF'", Kind: "polyline", Points: []string{"Q", "C", "F'"}, Style: scene.Style{Stroke: "#e377c2", Width: 3, Dash: []float64{2, 3}}},
		},
		Measures: []MeasureDef{
			{ID: "qbf", Label: "∠QBF", Kind: "angle", Points: []string{"Q", "B", "F"}},
		},
	}
}

// PerpendicularFoot: E slides on OA strictly between O and A. The
// perpendicular to BE through A meets the x axis at C, D is the foot of
// A on BE, and C, O, D, B lie on the circle with diameter CB.
func PerpendicularFoot() *Definition {
	return &Definition{
		ID:          "perpendicular-foot",
		Name:        "Perpendicular foot and concyclic points",
		Description: "E moves on OA. AC ⊥ BE meets the x axis at C with foot D on BE; C, O, D and B are concyclic.",
		View:        &View{MinX: -5, MinY: -2, MaxX: 5, MaxY: 6},
		Fixed: []PointDef{
			{ID: "A", X: 0, Y: 4},
			{ID: "B", X: 4, Y: 0},
			{ID: "O", X: 0, Y: 0},
		},
		Free: FreeDef{
			ID: "E", X: 0, Y: 2,
			Domain: DomainDef{Kind: DomainAxis, Axis: "y", Min: ptr(0.01), Max: ptr(3.99)},
		},
		Rules: []RuleDef{
			{ID: "C", Kind: "intersection", Lines: []LineDef{perpendicularAt("A", "B", "E"), through("O", "B")}},
			{ID: "D", Kind: "perpendicularFoot", Point: "A", Line: &LineDef{Through: []string{"B", "E"}}},
			{ID: "K", Kind: "midpoint", A: "C", B: "B", Style: scene.Style{Hidden: true}},
		},
		Relations: []RelationDef{
			{ID: "circle", Kind: "circle", Points: []string{"K", "B"}, Style: scene.Style{Stroke: "#ff7f0e", Width: 1.5, Dash: []float64{6, 3, 2, 3}}},
			{ID: "AC", Kind: "segment", Points: []string{"A", "C"}, Style: scene.Style{Stroke: "#9467bd"}},
			{ID: "BE", Kind: "segment", Points: []string{"B", "E"}, Style: scene.Style{Stroke: "#1f77b4"}},
			{ID: "OD", Kind: "segment", Points: []string{"O", "D"}, Style: scene.Style{Stroke: "#000000", Dash: dashed}},
			{ID: "CD", Kind: "segment", Points: []string{"C", "D"}, Style: scene.Style{Stroke: "#000000", Dash: dashed}},
			{ID: "DB", Kind: "segment", Points: []string{"D", "B"}, Style: scene.Style{Stroke: "#000000", Dash: dashed}},
		},
		Measures: []MeasureDef{
			{ID: "adb", Label: "∠ADB", Kind: "angle", Points: []string{"A", "D", "B"}, Target: ptr(90), Tolerance: 1e-6},
		},
	}
}

// BisectorParallels: AB ∥ CD. M moves freely; EP bisects ∠MEB, its line
// meets CD at F, and MH meets CD at N.
func BisectorParallels() *Definition {
	return &Definition{
		ID:          "bisector-parallels",
		Name:        "Angle bisector between parallels",
		Description: "AB ∥ CD. Drag M; EP bisects ∠MEB and meets CD at F, MH meets CD at N.",
		View:        &View{MinX: -10, MinY: -8, MaxX: 10, MaxY: 8},
		Fixed: []PointDef{
			{ID: "A", X: -8, Y: 0},
			{ID: "B", X: 8, Y: 0},
			{ID: "C", X: -8, Y: -5},
			{ID: "D", X: 8, Y: -5},
			{ID: "E", X: 0, Y: 0},
			{ID: "H", X: -2, Y: 0},
		},
		Free: FreeDef{
			ID: "M", X: 2.19, Y: 4.49,
			Domain: DomainDef{Kind: DomainPlane},
		},
		Rules: []RuleDef{
			{ID: "P", Kind: "angleBisector", Vertex: "E", Arm1: "B", Arm2: "M"},
			{ID: "F", Kind: "angleBisector", Vertex: "E", Arm1: "B", Arm2: "M", Onto: &LineDef{Through: []string{"C", "D"}}},
			{ID: "N", Kind: "intersection", Lines: []LineDef{through("M", "H"), through("C", "D")}},
		},
		Relations: []RelationDef{
			{ID: "AB", Kind: "segment", Points: []string{"A", "B"}, Style: scene.Style{Stroke: "#000000", Width: 1.5}},
			{ID: "CD", Kind: "segment", Points: []string{"C", "D"}, Style: scene.Style{Stroke: "#000000", Width: 1.5}},
			{ID: "PF", Kind: "segment", Points: []string{"P", "F"}, Style: scene.Style{Stroke: "#000000", Dash: dashed}},
			{ID: "EM", Kind: "segment", Points: []string{"E", "M"}, Style: scene.Style{Stroke: "#1f77b4", Width: 2}},
			{ID: "MN", Kind: "segment", Points: []string{"M", "N"}, Style: scene.Style{Stroke: "#2ca02c", Width: 2}},
		},
		Measures: []MeasureDef{
			{ID: "meb", Label: "∠MEB", Kind: "angle", Points: []string{"M", "E", "B"}},
			{ID: "peb", Label: "∠PEB", Kind: "angle", Points: []string{"P", "E", "B"}},
			{ID: "nhe", Label: "∠NHE", Kind: "angle", Points: []string{"N", "H", "E"}},
		},
	}
}

// DefaultBuiltin is what frontends open when nothing else is asked for.
const DefaultBuiltin = "perpendicular-foot"

var builtins = map[string]func() *Definition{
	"extension-perpendicular": ExtensionPerpendicular,
	"rotation-locus":          RotationLocus,
	"angle-rotation":          AngleRotation,
	"perpendicular-foot":      PerpendicularFoot,
	"bisector-parallels":      BisectorParallels,
}

// Builtin returns a fresh copy of the named built-in construction.
func Builtin(id string) (*Definition, bool) {
	f, ok := builtins[id]
	if !ok {
		return nil, false
	}
	return f(), true
}

// Builtins returns fresh copies of all built-in constructions sorted by id.
func Builtins() []*Definition {
	ids := make([]string, 0, len(builtins))
	for id := range builtins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	defs := make([]*Definition, 0, len(ids))
	for _, id := range ids {
		defs = append(defs, builtins[id]())
	}
	return defs
}
