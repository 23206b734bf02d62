package models

import "fmt"

// ClassCategory groups traffic classes that share an alert rule.
type ClassCategory string

const (
	// CategoryPedestrian covers people on foot.
	CategoryPedestrian ClassCategory = "pedestrian"
	// CategoryVehicle covers motorised road users.
	CategoryVehicle ClassCategory = "vehicle"
	// CategoryCyclist covers riders on bicycles.
	CategoryCyclist ClassCategory = "cyclist"
	// CategoryObstacle covers fixed obstacles such as bollards.
	CategoryObstacle ClassCategory = "obstacle"
)

// OutputClass represents one detection label.
type OutputClass struct {
	// The position of the class in the whitelist.
	Index int
	// The human-readable label reported by the detector.
	Name string
	// The alert rule family the class belongs to.
	Category ClassCategory
}

// OutputClassSet is an ordered whitelist of labels.
type OutputClassSet struct {
	// Classes that are tracked, in whitelist order.
	Classes []OutputClass
	// nameToIdx for fast lookup by name
	nameToIdx map[string]int
}

// NewOutputClassSet builds a set and its name index.
func NewOutputClassSet(classes ...OutputClass) *OutputClassSet {
	s := &OutputClassSet{Classes: classes}
	s.BuildNameIndexMap()
	return s
}

// BuildNameIndexMap builds or rebuilds the name->index map.
func (s *OutputClassSet) BuildNameIndexMap() {
	s.nameToIdx = make(map[string]int, len(s.Classes))
	for _, c := range s.Classes {
		s.nameToIdx[c.Name] = c.Index
	}
}

// Contains reports whether name is whitelisted.
func (s *OutputClassSet) Contains(name string) bool {
	_, ok := s.nameToIdx[name]
	return ok
}

// GetIndex returns the whitelist index for a given name.
func (s *OutputClassSet) GetIndex(name string) (int, error) {
	idx, ok := s.nameToIdx[name]
	if !ok {
		return -1, fmt.Errorf("name %q not in class set", name)
	}
	return idx, nil
}

// GetClass returns the class registered under name.
func (s *OutputClassSet) GetClass(name string) (OutputClass, bool) {
	idx, ok := s.nameToIdx[name]
	if !ok {
		return OutputClass{}, false
	}
	return s.Classes[idx], true
}

// Filter returns the detections whose label is in the set, preserving order.
//
// Arguments:
//   - detections: The raw detector output for one frame.
//
// Returns:
//   - []Detection: The whitelisted subset, never nil.
func (s *OutputClassSet) Filter(detections []Detection) []Detection {
	kept := make([]Detection, 0, len(detections))
	for _, d := range detections {
		if s.Contains(d.Label) {
			kept = append(kept, d)
		}
	}
	return kept
}

// TrafficClasses is the fixed whitelist of traffic-relevant labels. The
// order matters: alert rules are keyed by index.
var TrafficClasses = NewOutputClassSet(
	OutputClass{0, "person", CategoryPedestrian},
	OutputClass{1, "motorcycle", CategoryVehicle},
	OutputClass{2, "bus", CategoryVehicle},
	OutputClass{3, "car", CategoryVehicle},
	OutputClass{4, "truck", CategoryVehicle},
	OutputClass{5, "bikerider", CategoryCyclist},
	OutputClass{6, "bollard", CategoryObstacle},
)
