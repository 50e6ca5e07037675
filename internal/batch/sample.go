package batch

import (
	"encoding/json"
	"fmt"

	"github.com/temirov/dialsight/internal/fsops"
	"github.com/temirov/dialsight/internal/prompts"
)

// Sample is one dataset entry ready for reasoning: the image plus whatever
// its JSON sidecar contributed.
type Sample struct {
	ImagePath   string
	BaseName    string
	KnobData    *prompts.KnobData
	GroundTruth string
}

// DiscoverSamples walks the dataset directory, pairs images with their JSON
// sidecars and extracts ground-truth labels where annotated. maxSamples <= 0
// means no limit.
func DiscoverSamples(ops fsops.Ops, datasetDirectory string, maxSamples int) ([]Sample, error) {
	images, listErr := ops.ListImages(datasetDirectory)
	if listErr != nil {
		return nil, fmt.Errorf("list dataset images: %w", listErr)
	}

	var samples []Sample
	for _, image := range images {
		if maxSamples > 0 && len(samples) >= maxSamples {
			break
		}
		sample := Sample{ImagePath: image.ImagePath, BaseName: image.BaseName}
		if image.SidecarPath != "" {
			sidecarBytes, readErr := ops.FS.ReadFile(image.SidecarPath)
			if readErr != nil {
				return nil, fmt.Errorf("read sidecar %s: %w", image.SidecarPath, readErr)
			}
			var knobData prompts.KnobData
			if unmarshalErr := json.Unmarshal(sidecarBytes, &knobData); unmarshalErr != nil {
				return nil, fmt.Errorf("parse sidecar %s: %w", image.SidecarPath, unmarshalErr)
			}
			sample.KnobData = &knobData
			if truth, ok := knobData.GroundTruth(); ok {
				sample.GroundTruth = truth
			}
		}
		samples = append(samples, sample)
	}
	return samples, nil
}
