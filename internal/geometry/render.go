package geometry

import (
	"errors"
	"fmt"
	"image/jpeg"
	"math"
	"os"

	"github.com/fogleman/gg"
)

const (
	renderJPEGQuality = 95
	maxRenderedLabels = 5
)

// ErrIncompleteGeometry marks an annotation missing center, radius or
// pointer angle; there is nothing meaningful to draw.
var ErrIncompleteGeometry = errors.New("annotation lacks center, radius or pointer angle")

// Render draws the asserted geometry onto the source image and writes the
// result as JPEG. The overlay is for human inspection only and never feeds
// back into reasoning.
func Render(imagePath string, annotation Annotation, outputPath string) error {
	if !annotation.Complete() {
		return ErrIncompleteGeometry
	}
	sourceImage, loadErr := gg.LoadImage(imagePath)
	if loadErr != nil {
		return fmt.Errorf("load image: %w", loadErr)
	}

	canvas := gg.NewContextForImage(sourceImage)
	centerX, centerY := annotation.Center.X, annotation.Center.Y
	radius := *annotation.Radius

	// Knob outline and center dot.
	canvas.SetRGB(0, 0, 1)
	canvas.SetLineWidth(4)
	canvas.DrawCircle(centerX, centerY, radius)
	canvas.Stroke()
	canvas.DrawCircle(centerX, centerY, 10)
	canvas.Fill()
	canvas.DrawString(fmt.Sprintf("Center: (%.0f, %.0f)", centerX, centerY), centerX-60, centerY+radius+20)

	// Pointer ray, extended past the rim.
	pointerRadians := gg.Radians(*annotation.PointerAngle)
	pointerEndX := centerX + radius*1.1*math.Cos(pointerRadians)
	pointerEndY := centerY + radius*1.1*math.Sin(pointerRadians)
	canvas.SetRGB(1, 0, 0)
	canvas.SetLineWidth(6)
	canvas.DrawLine(centerX, centerY, pointerEndX, pointerEndY)
	canvas.Stroke()
	canvas.DrawCircle(pointerEndX, pointerEndY, 8)
	canvas.Fill()
	canvas.DrawString(fmt.Sprintf("Pointer: %.1f°", *annotation.PointerAngle), pointerEndX+15, pointerEndY+15)

	// Label rays from the rim outward.
	canvas.SetRGB(0, 0.6, 0)
	canvas.SetLineWidth(3)
	labels := annotation.Labels
	if len(labels) > maxRenderedLabels {
		labels = labels[:maxRenderedLabels]
	}
	for _, label := range labels {
		labelRadians := gg.Radians(label.Angle)
		startX := centerX + radius*math.Cos(labelRadians)
		startY := centerY + radius*math.Sin(labelRadians)
		endX := centerX + radius*1.3*math.Cos(labelRadians)
		endY := centerY + radius*1.3*math.Sin(labelRadians)
		canvas.DrawLine(startX, startY, endX, endY)
		canvas.Stroke()
		canvas.DrawCircle(endX, endY, 5)
		canvas.Fill()
		canvas.DrawString(fmt.Sprintf("%s (%.0f°)", label.Label, label.Angle), endX+8, endY)
	}

	// Legend.
	canvas.SetRGB(0, 0, 0)
	canvas.DrawString("blue: knob  red: pointer  green: scale lines", 10, 20)

	outputFile, createErr := os.Create(outputPath)
	if createErr != nil {
		return createErr
	}
	defer func() { _ = outputFile.Close() }()
	if encodeErr := jpeg.Encode(outputFile, canvas.Image(), &jpeg.Options{Quality: renderJPEGQuality}); encodeErr != nil {
		return fmt.Errorf("encode annotated image: %w", encodeErr)
	}
	return nil
}
