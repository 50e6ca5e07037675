package geometry

import (
	"regexp"
	"strconv"
	"strings"
)

// Point is a pixel coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LabelAngle ties one position label to its asserted angle in degrees.
type LabelAngle struct {
	Label string  `json:"label"`
	Angle float64 `json:"angle"`
}

// Annotation holds the geometry the model asserted in stage-1 text. All
// fields are optional; rendering requires center, radius and pointer angle.
type Annotation struct {
	Center       *Point       `json:"knob_center,omitempty"`
	Radius       *float64     `json:"knob_radius,omitempty"`
	PointerAngle *float64     `json:"red_pointer_angle,omitempty"`
	Labels       []LabelAngle `json:"green_scale_lines,omitempty"`
}

// Complete reports whether the annotation carries enough geometry to draw.
func (a Annotation) Complete() bool {
	return a.Center != nil && a.Radius != nil && a.PointerAngle != nil
}

var (
	centerPattern         = regexp.MustCompile(`[-*]?\s*[Cc]enter[:\s]+\(?\s*(\d+\.?\d*)\s*,\s*(\d+\.?\d*)\s*\)?`)
	centerFallbackPattern = regexp.MustCompile(`CIRCULAR ELEMENT GEOMETRY:[\s\S]{0,200}?[Cc]enter[:\s]+\(?\s*(\d+\.?\d*)\s*,\s*(\d+\.?\d*)\s*\)?`)
	radiusPattern         = regexp.MustCompile(`[-*]?\s*[Rr]adius[:\s]+(\d+\.?\d*)\s*(?:pixels?)?`)
	radiusFallbackPattern = regexp.MustCompile(`CIRCULAR ELEMENT GEOMETRY:[\s\S]{0,200}?[Rr]adius[:\s]+(\d+\.?\d*)`)
	pointerAnglePattern   = regexp.MustCompile(`(?s)POINTER.*?[Aa]ngle[:\s]+(\d+\.?\d*)`)
	anyAnglePattern       = regexp.MustCompile(`[-*]?\s*[Aa]ngle[:\s]+(\d+\.?\d*)`)
	labelSectionPattern   = regexp.MustCompile(`(?s)POSITION LABEL ANGLES:(.*?)(?:\n\*\*|$)`)
	scaleLinePattern      = regexp.MustCompile(`[-•]\s*([^:\n]+?):\s*(\d+\.?\d*)\s*[°degrees]*`)
)

// label lines that are actually test verbiage, not position labels
var labelPrefixFilter = []string{"angular", "tolerance", "visual"}

// ParseAnnotation extracts asserted geometry from stage-1 rules text. It
// prefers the structured section after a closing </think> tag, falls back to
// section-scoped searches over the full text and never fails; whatever could
// not be recognized stays nil.
func ParseAnnotation(rulesText string) Annotation {
	var annotation Annotation

	structured := rulesText
	if idx := strings.LastIndex(rulesText, "</think>"); idx >= 0 {
		structured = rulesText[idx+len("</think>"):]
	}

	if match := centerPattern.FindStringSubmatch(structured); match != nil {
		annotation.Center = parsePoint(match[1], match[2])
	} else if match := centerFallbackPattern.FindStringSubmatch(rulesText); match != nil {
		annotation.Center = parsePoint(match[1], match[2])
	}

	if match := radiusPattern.FindStringSubmatch(structured); match != nil {
		annotation.Radius = parseFloat(match[1])
	} else if match := radiusFallbackPattern.FindStringSubmatch(rulesText); match != nil {
		annotation.Radius = parseFloat(match[1])
	}

	if match := pointerAnglePattern.FindStringSubmatch(structured); match != nil {
		annotation.PointerAngle = parseFloat(match[1])
	} else if match := anyAnglePattern.FindStringSubmatch(structured); match != nil {
		annotation.PointerAngle = parseFloat(match[1])
	}

	labelSection := structured
	if strings.Contains(structured, "POSITION LABEL ANGLES:") {
		if match := labelSectionPattern.FindStringSubmatch(structured); match != nil {
			labelSection = match[1]
		}
	}
	for _, match := range scaleLinePattern.FindAllStringSubmatch(labelSection, -1) {
		label := strings.TrimSpace(match[1])
		if label == "" || hasFilteredPrefix(label) {
			continue
		}
		angle := parseFloat(match[2])
		if angle == nil {
			continue
		}
		annotation.Labels = append(annotation.Labels, LabelAngle{Label: label, Angle: *angle})
	}

	return annotation
}

func hasFilteredPrefix(label string) bool {
	lower := strings.ToLower(label)
	for _, prefix := range labelPrefixFilter {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func parsePoint(xText string, yText string) *Point {
	x := parseFloat(xText)
	y := parseFloat(yText)
	if x == nil || y == nil {
		return nil
	}
	return &Point{X: *x, Y: *y}
}

func parseFloat(text string) *float64 {
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &value
}
