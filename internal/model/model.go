package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ItemKind tells the planners how an item is sized.
type ItemKind int

const (
	ItemPage ItemKind = iota // Aspect-ratio descriptor, sized from a nominal height
	ItemBin                  // Fixed pixel size
)

func (k ItemKind) String() string {
	switch k {
	case ItemBin:
		return "Bin"
	default:
		return "Page"
	}
}

// SourceRef points back at the input an item was derived from.
// The engine forwards it untouched; only collaborators interpret it.
type SourceRef struct {
	Document int    `json:"document" toml:"document"`     // Input document index
	Page     int    `json:"page" toml:"page"`             // Page index within the document
	Path     string `json:"path,omitempty" toml:"path"`   // Image file for fixed-size bins
	Label    string `json:"label,omitempty" toml:"label"` // Free-form caption from a manifest
}

func (s SourceRef) String() string {
	if s.Path != "" {
		return s.Path
	}
	if s.Label != "" {
		return fmt.Sprintf("%s p%d", s.Label, s.Page+1)
	}
	return fmt.Sprintf("doc %d p%d", s.Document+1, s.Page+1)
}

// Item is one unit to be placed. Index is its position in the global input
// order and is unique within a run.
type Item struct {
	ID          string    `json:"id"`
	Index       int       `json:"index"`
	Kind        ItemKind  `json:"kind"`
	Source      SourceRef `json:"source"`
	AspectRatio float64   `json:"aspect_ratio"` // width / height
	WidthPx     int       `json:"width_px,omitempty"`
	HeightPx    int       `json:"height_px,omitempty"`
}

// NewPageItem builds an aspect-ratio item from a page size in points.
// A non-positive height falls back to a square page.
func NewPageItem(index, doc, page int, widthPt, heightPt float64) Item {
	aspect := 1.0
	if heightPt > 0 && widthPt > 0 {
		aspect = widthPt / heightPt
	}
	return Item{
		ID:          uuid.New().String()[:8],
		Index:       index,
		Kind:        ItemPage,
		Source:      SourceRef{Document: doc, Page: page},
		AspectRatio: aspect,
	}
}

// NewBinItem builds a fixed-size item for an image tile.
func NewBinItem(index int, path string, widthPx, heightPx int) Item {
	aspect := 1.0
	if widthPx > 0 && heightPx > 0 {
		aspect = float64(widthPx) / float64(heightPx)
	}
	return Item{
		ID:          uuid.New().String()[:8],
		Index:       index,
		Kind:        ItemBin,
		Source:      SourceRef{Path: path, Page: index},
		AspectRatio: aspect,
		WidthPx:     widthPx,
		HeightPx:    heightPx,
	}
}

// SizeAt returns the item's width and height at the given height.
func (it Item) SizeAt(height float64) (w, h float64) {
	return it.AspectRatio * height, height
}

// Orientation controls how items placed along a contour are rotated.
type Orientation string

const (
	OrientationTangent Orientation = "tangent" // Align with the local contour direction
	OrientationUpright Orientation = "upright" // Never rotate
)

// ParseOrientation accepts the orientation names case-insensitively.
func ParseOrientation(s string) (Orientation, error) {
	switch Orientation(strings.ToLower(strings.TrimSpace(s))) {
	case OrientationTangent:
		return OrientationTangent, nil
	case OrientationUpright:
		return OrientationUpright, nil
	default:
		return "", fmt.Errorf("unknown orientation %q (want tangent or upright)", s)
	}
}

// EnvelopeShape is the target outline for fixed-size bin packing.
type EnvelopeShape string

const (
	EnvelopeSquare    EnvelopeShape = "square"
	EnvelopeRectangle EnvelopeShape = "rectangle"
	EnvelopeCircle    EnvelopeShape = "circle"
	EnvelopeEllipse   EnvelopeShape = "ellipse"
)

// ParseEnvelopeShape accepts the shape names case-insensitively.
func ParseEnvelopeShape(s string) (EnvelopeShape, error) {
	switch EnvelopeShape(strings.ToLower(strings.TrimSpace(s))) {
	case EnvelopeSquare:
		return EnvelopeSquare, nil
	case EnvelopeRectangle:
		return EnvelopeRectangle, nil
	case EnvelopeCircle:
		return EnvelopeCircle, nil
	case EnvelopeEllipse:
		return EnvelopeEllipse, nil
	default:
		return "", fmt.Errorf("unsupported envelope shape %q", s)
	}
}

// EnvelopeSpec describes the envelope for GridPlanner / CircularBinPacker runs.
type EnvelopeSpec struct {
	Shape       EnvelopeShape `json:"shape" toml:"shape"`
	AspectRatio float64       `json:"aspect_ratio" toml:"aspect_ratio"`         // width / height
	Param1      float64       `json:"param1,omitempty" toml:"param1,omitempty"` // Optional shape parameter (e)
	Param2      float64       `json:"param2,omitempty" toml:"param2,omitempty"` // Optional shape parameter (f)
}

// Placement is an immutable record of one placed item. X and Y are the
// centre of the item in region units.
type Placement struct {
	ItemIndex int       `json:"item_index"`
	ItemID    string    `json:"item_id"`
	Source    SourceRef `json:"source"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Rotation  float64   `json:"rotation"` // Degrees, counter-clockwise
}

// Area returns the placed item's area.
func (p Placement) Area() float64 {
	return p.Width * p.Height
}

// Corners returns the lower-left and upper-right corners of the unrotated box.
func (p Placement) Corners() (minX, minY, maxX, maxY float64) {
	return p.X - p.Width/2, p.Y - p.Height/2, p.X + p.Width/2, p.Y + p.Height/2
}

// Recenter returns a new slice with every placement shifted so that
// (cx, cy) maps to the origin. The input slice is left untouched.
func Recenter(placements []Placement, cx, cy float64) []Placement {
	out := make([]Placement, len(placements))
	for i, p := range placements {
		p.X -= cx
		p.Y -= cy
		out[i] = p
	}
	return out
}

// FailedItem records an item the packer gave up on.
type FailedItem struct {
	ItemIndex int    `json:"item_index"`
	ItemID    string `json:"item_id"`
	Reason    string `json:"reason"`
}

// PackingResult is what every planner hands back.
type PackingResult struct {
	RunID         string       `json:"run_id"`
	Algorithm     Algorithm    `json:"algorithm"`
	Rows          int          `json:"rows,omitempty"`   // Grid planners only
	Cols          int          `json:"cols,omitempty"`   // Grid planners only
	CanvasWidth   float64      `json:"canvas_width"`     // Region units or pixels for bin planners
	CanvasHeight  float64      `json:"canvas_height"`    // Region units or pixels for bin planners
	Radius        float64      `json:"radius,omitempty"` // Circular envelope only
	NominalHeight float64      `json:"nominal_height,omitempty"`
	Placements    []Placement  `json:"placements"`
	Requested     int          `json:"requested"`
	Failed        []FailedItem `json:"failed,omitempty"`
	Utilization   float64      `json:"utilization"`        // Placed area / region or canvas area
	OffsetX       float64      `json:"offset_x,omitempty"` // Translation already applied to placements
	OffsetY       float64      `json:"offset_y,omitempty"`
}

// NewRunID returns a short identifier for a packing run.
func NewRunID() string {
	return uuid.New().String()[:8]
}

// Placed returns the number of placed items.
func (r PackingResult) Placed() int {
	return len(r.Placements)
}

// Shortfall returns how many requested items are missing from the result.
func (r PackingResult) Shortfall() int {
	if s := r.Requested - len(r.Placements); s > 0 {
		return s
	}
	return 0
}

// Complete reports whether every requested item was placed.
func (r PackingResult) Complete() bool {
	return r.Shortfall() == 0
}

// UsedArea returns the total area of all placements.
func (r PackingResult) UsedArea() float64 {
	var total float64
	for _, p := range r.Placements {
		total += p.Area()
	}
	return total
}

// CanvasArea returns the canvas area.
func (r PackingResult) CanvasArea() float64 {
	return r.CanvasWidth * r.CanvasHeight
}
