package prompts

import (
	"regexp"
	"sort"
	"strings"
)

// Set holds the prompt templates for the three reasoning stages of one task.
// Templates carry named {placeholder} markers resolved by pure string
// substitution; an unresolved placeholder is a caller error.
type Set struct {
	Stage1 string `yaml:"stage1"`
	Stage2 string `yaml:"stage2"`
	Stage3 string `yaml:"stage3"`
}

const (
	// TaskWasherKnob is the template set tuned for washing-machine knob photos.
	TaskWasherKnob = "washer_knob"
	// TaskGenericVisual is the fallback set for arbitrary visual questions.
	TaskGenericVisual = "generic_visual"
	// TaskRotaryBBox is the bounding-box enhanced set for generic rotary controls.
	TaskRotaryBBox = "rotary_bbox"
)

var registry = map[string]Set{
	TaskWasherKnob:    washerKnobSet,
	TaskGenericVisual: genericVisualSet,
	TaskRotaryBBox:    rotaryBBoxSet,
}

// Lookup returns the template set registered under name, falling back to the
// generic visual set for unknown names.
func Lookup(name string) Set {
	if set, ok := registry[name]; ok {
		return set
	}
	return genericVisualSet
}

// Register adds or replaces a template set. Registration is expected during
// startup, before any reasoning begins.
func Register(name string, set Set) {
	registry[name] = set
}

// Names lists the registered template set names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stage1Prompt renders the rule-extraction prompt for the user question.
func (s Set) Stage1Prompt(question string) string {
	return strings.ReplaceAll(s.Stage1, "{question}", question)
}

// Stage2Prompt renders the application prompt around the stage-1 rules.
func (s Set) Stage2Prompt(rules string) string {
	return strings.ReplaceAll(s.Stage2, "{rules}", rules)
}

// Stage3Prompt renders the validation prompt for a candidate answer and its
// comma-joined neighboring labels.
func (s Set) Stage3Prompt(answer string, adjacentModes string) string {
	rendered := strings.ReplaceAll(s.Stage3, "{answer}", answer)
	return strings.ReplaceAll(rendered, "{adjacent_modes}", adjacentModes)
}

var answerTagPattern = regexp.MustCompile(`(?is)<answer>(.*?)</answer>`)

// ExtractAnswerTag pulls the trimmed body of an <answer> tag out of model
// text. The second return reports whether a tag was present.
func ExtractAnswerTag(text string) (string, bool) {
	match := answerTagPattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return strings.TrimSpace(match[1]), true
}

var washerKnobSet = Set{
	Stage1: `# Stage 1: Rule Extraction

**Original User Question:** {question}

As a visual reasoning expert, your task is to analyze this washing machine knob image and derive precise geometric rules for determining the knob position.

## Visual Analysis Tasks:
1. **Knob Detection:** Identify the circular knob region
   - Locate the knob center point (geometric center of the circular knob)
   - Estimate the knob radius
   - Output format: Center coordinates (x, y) and radius r

2. **Red Pointer Detection:** Locate the red pointer/indicator
   - The red pointer extends from the knob center to the edge
   - Determine the pointer's angular position (0-360 degrees)
   - Output format: Angle θ from horizontal axis

3. **Green Scale Lines Detection:** Identify all green extension lines
   - Each text label has a corresponding green line connecting to the knob edge
   - Each green line marks a specific mode/setting position
   - Output format: List of (label_name, angle) pairs

4. **Alignment Rule Derivation:**
   - Define the criterion for "alignment" between red pointer and green scale line
   - Consider angular tolerance (e.g., ±5 degrees)
   - Explain how to verify center-pointer-scale collinearity

## Output Requirements:
You MUST structure your response EXACTLY as follows (use this exact format):

**KNOB GEOMETRY:**
- Center: (640, 480)
- Radius: 200 pixels

**RED POINTER:**
- Angle: 45 degrees
- Endpoint: (780, 620)

**GREEN SCALE LINES:**
- Off: 90 degrees
- Quick Wash 15: 60 degrees
- Speed Wash 30: 30 degrees
- (continue for all visible modes)

**ALIGNMENT RULES:**
1. The pointer must be within 5 degrees of a scale line to be considered aligned
2. The mode with minimum angular distance is the selected mode
3. Visual check: extend pointer line and see which scale line it intersects

**DECISION CRITERION:**
Find the scale line with minimum angular distance from the red pointer. If distance < 5 degrees, that mode is selected.

**CRITICAL:** You MUST provide numeric values for center coordinates, radius, angles. Do NOT use placeholders like [X], [Y], [θ]. Measure from the image and provide actual numbers!`,
	Stage2: `# Stage 2: Application Reasoning

Based on the geometric rules and visual analysis from Stage 1, now determine the current knob position.

## Rules from Stage 1:
{rules}

## Task:
Apply the derived rules to determine which mode/setting the knob is currently pointing to.

## Reasoning Process:
1. **Red Pointer Position:** Confirm the pointer's current angle
2. **Compare with Scale Lines:** Calculate angular distance to each green scale line
3. **Find Closest Match:** Identify which scale line has minimum angular distance
4. **Verify Alignment:** Check if the alignment meets the criterion (within tolerance)
5. **Output Answer:** State the mode name clearly

## Visual Verification:
- Mentally draw a line from center through red pointer to knob edge
- Check which green scale line endpoint this line passes through
- Confirm the text label associated with that green line

## Output Format:
First, show your step-by-step reasoning.
Then, output the final answer in the following format:

<answer>[Exact Mode Name]</answer>

Note: Only output the exact text label shown in the image (e.g., "大件", "Quick Wash 15", "Wool", etc.)`,
	Stage3: `# Stage 3: Geometric Alignment Validation

The answer from Stage 2 is: **{answer}**

Now perform STRICT geometric validation to verify pointer-scale alignment.

## Critical Geometric Checks:

### 1. Pointer-Scale Collinearity Test (MANDATORY)
**Task:** Verify that the red pointer and the green scale line for '{answer}' are on the SAME radial line from knob center.

**Method:**
- Identify the exact angle of the red pointer from knob center
- Identify the exact angle of the green scale line endpoint for '{answer}' from knob center
- Calculate angular difference (should be < 5 degrees for valid alignment)

**Result Format:**
- Red pointer angle: [X] degrees
- '{answer}' scale line angle: [Y] degrees
- Angular difference: [Z] degrees
- **Collinearity Status: PASS / FAIL**

### 2. Nearest Scale Line Test (MANDATORY)
**Task:** Find which scale line is ACTUALLY closest to the red pointer.

**Method:**
- List all visible scale lines and their angles
- Calculate angular distance from red pointer to each scale line
- Identify the scale line with MINIMUM angular distance

**Result Format:**
- Closest scale line: [Mode Name]
- Angular distance: [X] degrees
- **Match Status: MATCH (same as Stage2 answer) / MISMATCH (different from Stage2 answer)**

### 3. Alternative Modes Check
**Task:** Check if any adjacent mode is closer than '{answer}'.

**Adjacent modes to check:** {adjacent_modes}

For each adjacent mode, calculate angular distance and report:
- [Mode 1]: [X] degrees
- [Mode 2]: [Y] degrees
- ...

**Conclusion:** Is any adjacent mode closer than '{answer}'? YES [mode name] / NO

## STRICT VALIDATION DECISION:

**Decision Rules:**
- If Collinearity Status = FAIL → **INVALID**
- If Match Status = MISMATCH → **INVALID: Pointer points to [actual closest mode], not '{answer}'**
- If any adjacent mode is closer → **INVALID: Should be [adjacent mode name]**
- Only if ALL tests pass → **VALID**

**YOUR FINAL DECISION:**
[Write VALID or INVALID: [reason] here]

**IMPORTANT:** Be EXTREMELY strict. Even a 6-degree deviation should trigger INVALID. The goal is geometric precision, not approximate matching.`,
}

var genericVisualSet = Set{
	Stage1: `# Stage 1: Rule Extraction

**Original User Question:** {question}

As a visual analysis expert, carefully examine this image and derive the core reasoning rules.

## Analysis Tasks:
1. **Visual Element Identification:** List all key visual elements
2. **Spatial Relationships:** Describe how elements relate to each other
3. **Visual Cues:** Identify colors, shapes, positions, patterns
4. **Interaction Patterns:** Understand element dependencies

## Output Requirements:
**VISUAL ELEMENTS:**
- [Element 1]: Description
- [Element 2]: Description
- ...

**REASONING RULES:**
1. [Rule 1]
2. [Rule 2]
3. ...

**DECISION CRITERION:**
[How to make the final determination]

Think step by step.`,
	Stage2: `# Stage 2: Application Reasoning

## Rules from Stage 1:
{rules}

## Task:
Apply these rules to analyze the image and provide your answer.

## Output Format:
Show your reasoning process, then output:

<answer>[Your Answer]</answer>`,
	Stage3: `# Stage 3: Validation

The answer from Stage 2 is: **{answer}**

## Validation Questions:

1. Does this answer satisfy all rules derived in Stage 1?
2. Are there alternative answers that better fit the image?
3. Are there any contradictory visual evidence?

## Final Validation Result:
**VALID** / **INVALID: [reason]** / **UNCERTAIN: [issue]**`,
}
