package alert

import (
	"github.com/nvr-ai/go-overlay/models"
)

// Outcome is the categorical result of classifying one frame.
type Outcome string

const (
	// OutcomeNone means no rule matched.
	OutcomeNone Outcome = "none"
	// OutcomeCrowd means many pedestrians are in view.
	OutcomeCrowd Outcome = "crowd"
	// OutcomeNearbyPedestrian means a large pedestrian is straight ahead.
	OutcomeNearbyPedestrian Outcome = "nearby_pedestrian"
	// OutcomeNearbyVehicle means a large vehicle is straight ahead.
	OutcomeNearbyVehicle Outcome = "nearby_vehicle"
	// OutcomeNearbyCyclist means a large cyclist is straight ahead.
	OutcomeNearbyCyclist Outcome = "nearby_cyclist"
	// OutcomeObstacleAhead means a fixed obstacle is in the bottom band.
	OutcomeObstacleAhead Outcome = "obstacle_ahead"
	// OutcomeMixed means more than one class is in view; no rule applies.
	OutcomeMixed Outcome = "mixed"
)

// Audible reports whether the outcome is one that plays a sound.
func (o Outcome) Audible() bool {
	switch o {
	case OutcomeNearbyPedestrian, OutcomeNearbyVehicle, OutcomeNearbyCyclist, OutcomeObstacleAhead:
		return true
	}
	return false
}

// Thresholds are the size rules applied per class category. Areas are in
// square frame pixels.
type Thresholds struct {
	CrowdCount     int     `yaml:"crowd_count"`
	PedestrianArea float32 `yaml:"pedestrian_area"`
	VehicleArea    float32 `yaml:"vehicle_area"`
	CyclistArea    float32 `yaml:"cyclist_area"`
}

// DefaultThresholds returns thresholds tuned for a frame of roughly 300k
// square pixels.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CrowdCount:     4,
		PedestrianArea: 30000,
		VehicleArea:    100000,
		CyclistArea:    50000,
	}
}

// Observation is one whitelisted detection reduced to its grid cell and size.
type Observation struct {
	Label  string
	Bucket Bucket
	Area   float32
}

// Classification is the result of classifying one frame.
type Classification struct {
	// Outcome is the matched rule.
	Outcome Outcome
	// Label is the most frequent label in the frame.
	Label string
	// Count is the number of instances of Label.
	Count int
	// Distinct is the number of different labels in the frame.
	Distinct int
	// Trigger is the observation that satisfied the rule, if any.
	Trigger *Observation
	// Observations holds every detection considered, in input order.
	Observations []Observation
}

// Classify applies the spatial rules to one frame of whitelisted detections.
//
// Detections without a location are ignored. When more than one distinct
// class is present the result is OutcomeMixed and no class rule runs.
//
// Arguments:
//   - detections: The whitelist-filtered detections of one frame.
//   - frameWidth, frameHeight: The sensor frame size.
//   - th: The size thresholds.
//
// Returns:
//   - Classification: The outcome plus the per-detection observations.
func Classify(detections []models.Detection, frameWidth, frameHeight int, th Thresholds) Classification {
	c := Classification{Outcome: OutcomeNone}

	groups := make(map[string][]Observation)
	for _, d := range detections {
		if d.Location == nil {
			continue
		}
		loc := *d.Location
		obs := Observation{
			Label:  d.Label,
			Bucket: BucketOf(loc.CenterX(), loc.CenterY(), frameWidth, frameHeight),
			Area:   loc.Width() * loc.Height(),
		}
		c.Observations = append(c.Observations, obs)

		groups[d.Label] = append(groups[d.Label], obs)
		if n := len(groups[d.Label]); n > c.Count {
			c.Count = n
			c.Label = d.Label
		}
	}

	c.Distinct = len(groups)
	switch {
	case c.Distinct == 0:
		return c
	case c.Distinct > 1:
		c.Outcome = OutcomeMixed
		return c
	}

	class, ok := models.TrafficClasses.GetClass(c.Label)
	if !ok {
		return c
	}

	instances := groups[c.Label]
	switch class.Category {
	case models.CategoryPedestrian:
		if len(instances) > th.CrowdCount {
			c.Outcome = OutcomeCrowd
			return c
		}
		c.setIfAhead(instances, th.PedestrianArea, OutcomeNearbyPedestrian)
	case models.CategoryVehicle:
		c.setIfAhead(instances, th.VehicleArea, OutcomeNearbyVehicle)
	case models.CategoryCyclist:
		c.setIfAhead(instances, th.CyclistArea, OutcomeNearbyCyclist)
	case models.CategoryObstacle:
		for i := range instances {
			if instances[i].Bucket.In(BucketLB, BucketMB, BucketRB) {
				c.Outcome = OutcomeObstacleAhead
				c.Trigger = &instances[i]
				break
			}
		}
	}

	return c
}

// setIfAhead sets outcome when any instance is in the center column's
// middle or bottom cell and larger than minArea.
func (c *Classification) setIfAhead(instances []Observation, minArea float32, outcome Outcome) {
	for i := range instances {
		if instances[i].Bucket.In(BucketMM, BucketMB) && instances[i].Area > minArea {
			c.Outcome = outcome
			c.Trigger = &instances[i]
			return
		}
	}
}
