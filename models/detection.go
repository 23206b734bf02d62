// Package models - Detector output and the traffic class whitelist.
package models

import (
	"fmt"

	"github.com/nvr-ai/go-overlay/images"
)

// Detection is a single recognition produced by the inference step.
type Detection struct {
	// Label is the class name reported by the detector.
	Label string `json:"label"`
	// Confidence is the detector score in [0, 1].
	Confidence float32 `json:"confidence"`
	// Location is the bounding box in sensor-frame coordinates. A nil
	// location means the detector produced no geometry.
	Location *images.RectF `json:"location,omitempty"`
}

func (d Detection) String() string {
	if d.Location == nil {
		return fmt.Sprintf("Object %s (confidence %f): no location", d.Label, d.Confidence)
	}
	return fmt.Sprintf("Object %s (confidence %f): %s", d.Label, d.Confidence, d.Location)
}
