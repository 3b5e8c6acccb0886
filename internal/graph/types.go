package graph

// Shape kinds offered by the flowchart palette. Any other string is accepted
// as a free-form shape identifier.
const (
	ShapeRectangle = "Rectangle"
	ShapeStart     = "Start"
	ShapeInput     = "Input"
	ShapeProcess   = "Process"
	ShapeDecision  = "Decision"
)

// PaletteShapes lists the shapes of the default flowchart palette in display order.
var PaletteShapes = []string{ShapeStart, ShapeInput, ShapeProcess, ShapeDecision}

// Bounds is the geometric rectangle occupied by a node.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Node is a shape entity of the diagram.
type Node struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Shape string `json:"shape"`
	Bounds
}

// Link is a directed connection between two nodes. It refers to its endpoints
// by id and does not own them.
type Link struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	OriginID      string `json:"originId"`
	DestinationID string `json:"destinationId"`
}
