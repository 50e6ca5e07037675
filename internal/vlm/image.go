package vlm

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
)

const jpegQuality = 95

// EncodeImageDataURI reads an image file, re-encodes it as JPEG and returns a
// base64 data URI suitable for an image_url content part.
func EncodeImageDataURI(imagePath string) (string, error) {
	fileBytes, readErr := os.ReadFile(imagePath)
	if readErr != nil {
		return "", readErr
	}
	decoded, _, decodeErr := image.Decode(bytes.NewReader(fileBytes))
	if decodeErr != nil {
		return "", fmt.Errorf("decode image: %w", decodeErr)
	}
	var buffer bytes.Buffer
	if encodeErr := jpeg.Encode(&buffer, decoded, &jpeg.Options{Quality: jpegQuality}); encodeErr != nil {
		return "", fmt.Errorf("encode jpeg: %w", encodeErr)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buffer.Bytes()), nil
}
