package prompts

import (
	"fmt"
	"strings"
)

// Annotation is one labeled bounding box from a sample's sidecar file.
type Annotation struct {
	Label string `json:"label"`
	BBox  []int  `json:"bbox"`
}

// KnobData is the sidecar annotation payload for one image: the close-up
// boxes around the control and its labels, plus an optional status box
// carrying the ground-truth position.
type KnobData struct {
	KnobClose []Annotation `json:"knob_close"`
	Modes     []string     `json:"modes,omitempty"`
	Status    *Annotation  `json:"status,omitempty"`
}

// GroundTruth returns the annotated status label when the sidecar carries one.
func (d KnobData) GroundTruth() (string, bool) {
	if d.Status == nil || d.Status.Label == "" {
		return "", false
	}
	return d.Status.Label, true
}

// FormatBBoxInfo renders the three bounding-box fragments injected into the
// bbox-enhanced stage-1 template: the full info block, the knob box and the
// per-label box list.
func FormatBBoxInfo(data KnobData) (bboxInfo string, knobBBox string, modeBBoxes string) {
	var infoLines []string
	var modeLines []string
	for _, item := range data.KnobClose {
		boxText := formatBox(item.BBox)
		if strings.EqualFold(item.Label, "knob") {
			knobBBox = boxText
			infoLines = append(infoLines, fmt.Sprintf("- Circular element region: %s, bbox: %s", item.Label, boxText))
			continue
		}
		infoLines = append(infoLines, fmt.Sprintf("- Position label: %s, bbox: %s", item.Label, boxText))
		modeLines = append(modeLines, fmt.Sprintf("  * %s: bbox %s", item.Label, boxText))
	}
	if data.Status != nil && data.Status.Label != "" {
		infoLines = append(infoLines, fmt.Sprintf("- Note: Current state annotation: %s (bbox: %s)", data.Status.Label, formatBox(data.Status.BBox)))
	}
	return strings.Join(infoLines, "\n"), knobBBox, strings.Join(modeLines, "\n")
}

func formatBox(box []int) string {
	parts := make([]string, len(box))
	for i, v := range box {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// SupportsBBox reports whether the stage-1 template has a bounding-box
// placeholder to receive sidecar annotations. Sets without one would drop the
// annotations on substitution.
func (s Set) SupportsBBox() bool {
	return strings.Contains(s.Stage1, "{bbox_info}")
}

// Stage1PromptWithBBox renders the bbox-enhanced stage-1 prompt with the
// question and the sidecar annotations resolved in.
func (s Set) Stage1PromptWithBBox(question string, data KnobData) string {
	bboxInfo, knobBBox, modeBBoxes := FormatBBoxInfo(data)
	replacer := strings.NewReplacer(
		"{question}", question,
		"{bbox_info}", bboxInfo,
		"{knob_bbox}", knobBBox,
		"{mode_bboxes}", modeBBoxes,
	)
	return replacer.Replace(s.Stage1)
}

var rotaryBBoxSet = Set{
	Stage1: `# Stage 1: Geometric Rule Extraction

**User Question:** {question}

You are a visual reasoning expert. Analyze this image and derive geometric rules to answer the question.

## Available Information (Bounding Boxes):
{bbox_info}

## Generic Geometric Analysis Framework:

### Step 1: Identify the Circular Control Element
- Locate the circular element in the image (labeled as 'knob' in bounding boxes)
- Using the provided bounding box ` + "`{knob_bbox}`" + `, calculate:
  * Center point: center_x = (bbox_x1 + bbox_x2) / 2, center_y = (bbox_y1 + bbox_y2) / 2
  * Radius: r = min(bbox_width, bbox_height) / 2
  * This establishes your coordinate system origin

### Step 2: Identify the Pointer/Indicator
- Look for a visual indicator on the circular element (could be a line, arrow, mark, or asymmetric feature)
- Determine the direction this indicator points from the center
- Measure the angle θ from horizontal right (0°) going clockwise (0° to 360°)
- Important: DO NOT assume what the indicator looks like - observe it from the image

### Step 3: Map Position Labels to Angles
- The image contains multiple labeled positions around the circular element
- For each label with bounding box provided:
{mode_bboxes}
- Calculate the angle from center to each label's center point
- Formula: angle = atan2(label_center_y - knob_center_y, label_center_x - knob_center_x)
- Convert to 0-360° range
- Create a mapping: Label → Angle

### Step 4: Derive Alignment Rules
- Define what constitutes "alignment" between pointer and a position label
- Suggest using angular tolerance (e.g., ±5 degrees)
- The aligned position is the one with minimum angular distance to the pointer
- Consider edge cases (e.g., 0°/360° boundary)

## Output Format:
Structure your response as follows:

**CIRCULAR ELEMENT GEOMETRY:**
- Center: (x, y)
- Radius: r pixels

**POINTER/INDICATOR:**
- Angle: θ degrees (from horizontal right, clockwise)
- Description: [describe what the indicator looks like]

**POSITION LABEL ANGLES:**
- [Label 1]: X degrees
- [Label 2]: Y degrees
- (list all labels)

**ALIGNMENT RULES:**
1. Calculate angular difference between pointer and each label
2. The label with minimum angular difference (< tolerance) is selected
3. Visual verification: extend pointer ray and check which label region it intersects

**DECISION CRITERION:**
Find argmin_label(|pointer_angle - label_angle|) where difference < threshold

**CRITICAL:** Provide actual numeric values based on image observation and provided bounding boxes. Do NOT use placeholders.`,
	Stage2: `# Stage 2: Apply Geometric Rules

Based on the geometric rules derived in Stage 1, determine the answer to the question.

## Rules from Stage 1:
{rules}

## Task:
Apply the geometric rules to determine which position label the indicator is currently pointing to.

## Reasoning Process:
1. **Confirm pointer angle:** Re-identify the pointer's current angle from the image
2. **Calculate distances:** Compute angular distance from pointer to each position label
3. **Find minimum:** Identify which label has the smallest angular distance
4. **Verify alignment:** Check if the minimum distance satisfies the alignment criterion
5. **State answer:** Report the position label name

## Geometric Verification:
- Mentally draw a ray from center through the pointer direction
- Check which position label region this ray passes through or is closest to
- Confirm the label text associated with that region

## Output Format:
First, show your step-by-step reasoning.
Then, output the final answer:

<answer>[Position Label]</answer>

Note: Output the exact text of the position label as shown in the image.`,
	Stage3: `# Stage 3: Geometric Validation

The answer from Stage 2 is: **{answer}**

Perform STRICT geometric validation to verify the pointer-label alignment.

## Geometric Validation Tests:

### Test 1: Radial Collinearity (MANDATORY)
**Objective:** Verify that the pointer and the position label '{answer}' lie on the same radial line from the center.

**Method:**
- Measure the exact angle of the pointer from the center point
- Measure the exact angle of the position label '{answer}' from the center point
- Calculate angular difference: |pointer_angle - label_angle|
- Check if difference < tolerance threshold (typically 5°)

**Report Format:**
- Pointer angle: [X]°
- '{answer}' label angle: [Y]°
- Angular difference: [Z]°
- **Collinearity Status: PASS / FAIL**

### Test 2: Minimum Distance Check (MANDATORY)
**Objective:** Verify that '{answer}' is actually the closest position label to the pointer.

**Method:**
- List all position labels and their angles from center
- Calculate angular distance from pointer to each label
- Identify which label has the MINIMUM angular distance

**Report Format:**
- Closest label: [Label Name]
- Angular distance: [X]°
- **Match Status: MATCH (same as Stage 2) / MISMATCH (different from Stage 2)**

### Test 3: Alternative Labels Check
**Objective:** Check if any neighboring labels are closer than '{answer}'.

**Neighboring labels to check:** {adjacent_modes}

For each neighboring label, report angular distance:
- [Label 1]: [X]°
- [Label 2]: [Y]°
- ...

**Conclusion:** Is any neighboring label closer? YES [label name] / NO

## Validation Decision:

**Decision Rules:**
- If Collinearity Status = FAIL → **INVALID**
- If Match Status = MISMATCH → **INVALID: Pointer actually points to [closest label], not '{answer}'**
- If any neighbor is closer → **INVALID: Should be [neighbor label]**
- Only if ALL tests pass → **VALID**

**YOUR FINAL DECISION:**
[Write VALID or INVALID: [reason] here]

**IMPORTANT:** Be EXTREMELY strict. Even 6° deviation should trigger INVALID. The goal is geometric precision.`,
}
