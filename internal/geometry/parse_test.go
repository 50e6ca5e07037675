package geometry

import "testing"

const structuredStage1 = `**KNOB GEOMETRY:**
- Center: (640, 480.5)
- Radius: 200 pixels

**RED POINTER:**
- Angle: 45 degrees

**POSITION LABEL ANGLES:**
- Off: 90 degrees
- Quick Wash 15: 60°
- Angular difference: 3 degrees

**ALIGNMENT RULES:**
1. tolerance is 5 degrees`

func TestParseAnnotationStructuredOutput(t *testing.T) {
	annotation := ParseAnnotation(structuredStage1)
	if !annotation.Complete() {
		t.Fatalf("expected complete annotation: %+v", annotation)
	}
	if annotation.Center.X != 640 || annotation.Center.Y != 480.5 {
		t.Fatalf("center = %+v", annotation.Center)
	}
	if *annotation.Radius != 200 {
		t.Fatalf("radius = %v", *annotation.Radius)
	}
	if *annotation.PointerAngle != 45 {
		t.Fatalf("pointer angle = %v", *annotation.PointerAngle)
	}
	if len(annotation.Labels) != 2 {
		t.Fatalf("labels = %+v", annotation.Labels)
	}
	if annotation.Labels[0].Label != "Off" || annotation.Labels[0].Angle != 90 {
		t.Fatalf("first label = %+v", annotation.Labels[0])
	}
	if annotation.Labels[1].Label != "Quick Wash 15" || annotation.Labels[1].Angle != 60 {
		t.Fatalf("second label = %+v", annotation.Labels[1])
	}
}

func TestParseAnnotationSkipsThinkingSection(t *testing.T) {
	text := "<think>\n- Center: (1, 2)\n- Radius: 3\n</think>\n- Center: (300, 440)\n- Radius: 180\nPOINTER\n- Angle: 270 degrees"
	annotation := ParseAnnotation(text)
	if annotation.Center == nil || annotation.Center.X != 300 {
		t.Fatalf("center should come from the structured section: %+v", annotation.Center)
	}
	if annotation.Radius == nil || *annotation.Radius != 180 {
		t.Fatalf("radius = %+v", annotation.Radius)
	}
	if annotation.PointerAngle == nil || *annotation.PointerAngle != 270 {
		t.Fatalf("pointer angle = %+v", annotation.PointerAngle)
	}
}

func TestParseAnnotationPartialData(t *testing.T) {
	annotation := ParseAnnotation("The knob radius is unclear.\n- Center: (100, 100)")
	if annotation.Center == nil {
		t.Fatalf("center should be parsed")
	}
	if annotation.Radius != nil || annotation.PointerAngle != nil {
		t.Fatalf("missing fields must stay nil: %+v", annotation)
	}
	if annotation.Complete() {
		t.Fatalf("partial annotation must not be complete")
	}
}

func TestParseAnnotationMalformedTextReturnsEmpty(t *testing.T) {
	annotation := ParseAnnotation("no geometry here at all")
	if annotation.Center != nil || annotation.Radius != nil || annotation.PointerAngle != nil || len(annotation.Labels) != 0 {
		t.Fatalf("expected empty annotation: %+v", annotation)
	}
}

func TestParseAnnotationSectionFallback(t *testing.T) {
	text := "CIRCULAR ELEMENT GEOMETRY:\nthe Center: (50, 60) with Radius: 25\n</think>\nfinal summary with no coordinates"
	annotation := ParseAnnotation(text)
	if annotation.Center == nil || annotation.Center.X != 50 || annotation.Center.Y != 60 {
		t.Fatalf("fallback center = %+v", annotation.Center)
	}
	if annotation.Radius == nil || *annotation.Radius != 25 {
		t.Fatalf("fallback radius = %+v", annotation.Radius)
	}
}
