package layout

import (
	"strconv"
	"strings"
)

// 逻辑单位（px）在 canvas 中按 1 单位 = 1mm 绘制，因此与字体系统交互时按 mm↔pt 换算。

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitPx               // logical artboard units
	UnitPt               // points
)

// Conversion constants between pt and logical units.
const (
	PtToUnit = 0.352777
	UnitToPt = 1.0 / PtToUnit
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPx:
		return "px"
	case UnitPt:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// To converts this length to target unit. Unit-less values pass through unchanged.
func (l Length) To(target Unit) float64 {
	switch {
	case l.Unit == target, l.Unit == UnitNone, target == UnitNone:
		return l.Value
	case l.Unit == UnitPt && target == UnitPx:
		return l.Value * PtToUnit
	case l.Unit == UnitPx && target == UnitPt:
		return l.Value * UnitToPt
	}
	return l.Value
}

func (l Length) ToPx() float64 { return l.To(UnitPx) }
func (l Length) ToPt() float64 { return l.To(UnitPt) }

// ParseLength parses "24", "24px" or "18pt". Bare numbers are logical units.
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	unit := UnitPx
	switch {
	case strings.HasSuffix(v, "px"):
		v = strings.TrimSuffix(v, "px")
	case strings.HasSuffix(v, "pt"):
		unit = UnitPt
		v = strings.TrimSuffix(v, "pt")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec is either a factor of the font size (e.g. 1.16x) or an absolute length.
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// Resolve computes the absolute line height in target unit for fontSize.
func (s LineHeightSpec) Resolve(fontSize Length, target Unit) float64 {
	switch s.Kind {
	case LineHeightAbsolute:
		return s.Len.To(target)
	default:
		f := s.Factor
		if f <= 0 {
			f = 1.16
		}
		return fontSize.To(target) * f
	}
}
