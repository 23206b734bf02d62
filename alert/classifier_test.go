package alert

import (
	"testing"

	"github.com/nvr-ai/go-overlay/images"
	"github.com/nvr-ai/go-overlay/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The frames below are 600x500, i.e. 300k square pixels; bands are 200 wide
// and 166.7 tall.
const (
	frameW = 600
	frameH = 500
)

// det builds a detection centered on (cx, cy) with the given size.
func det(label string, cx, cy, w, h float32) models.Detection {
	r := images.RectF{Left: cx - w/2, Top: cy - h/2, Right: cx + w/2, Bottom: cy + h/2}
	return models.Detection{Label: label, Confidence: 0.9, Location: &r}
}

func TestClassify(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name     string
		dets     []models.Detection
		outcome  Outcome
		label    string
		count    int
		distinct int
		bucket   Bucket
	}{
		{
			name:     "Empty frame",
			outcome:  OutcomeNone,
			distinct: 0,
		},
		{
			name:     "Large pedestrian bottom-middle",
			dets:     []models.Detection{det("person", 300, 420, 250, 140)}, // area 35000
			outcome:  OutcomeNearbyPedestrian,
			label:    "person",
			count:    1,
			distinct: 1,
			bucket:   BucketMB,
		},
		{
			name:     "Small pedestrian center",
			dets:     []models.Detection{det("person", 300, 250, 100, 100)},
			outcome:  OutcomeNone,
			label:    "person",
			count:    1,
			distinct: 1,
		},
		{
			name:     "Large pedestrian off to the side",
			dets:     []models.Detection{det("person", 50, 420, 250, 200)},
			outcome:  OutcomeNone,
			label:    "person",
			count:    1,
			distinct: 1,
		},
		{
			name: "Crowd wins over nearby pedestrian",
			dets: []models.Detection{
				det("person", 300, 420, 250, 200),
				det("person", 50, 50, 20, 40),
				det("person", 100, 50, 20, 40),
				det("person", 150, 50, 20, 40),
				det("person", 200, 50, 20, 40),
			},
			outcome:  OutcomeCrowd,
			label:    "person",
			count:    5,
			distinct: 1,
		},
		{
			name: "Four pedestrians is not a crowd",
			dets: []models.Detection{
				det("person", 300, 250, 250, 200),
				det("person", 50, 50, 20, 40),
				det("person", 100, 50, 20, 40),
				det("person", 150, 50, 20, 40),
			},
			outcome:  OutcomeNearbyPedestrian,
			label:    "person",
			count:    4,
			distinct: 1,
			bucket:   BucketMM,
		},
		{
			name:     "Large car center",
			dets:     []models.Detection{det("car", 300, 250, 400, 300)},
			outcome:  OutcomeNearbyVehicle,
			label:    "car",
			count:    1,
			distinct: 1,
			bucket:   BucketMM,
		},
		{
			name:     "Truck at exactly the threshold does not fire",
			dets:     []models.Detection{det("truck", 300, 250, 400, 250)}, // area 100000
			outcome:  OutcomeNone,
			label:    "truck",
			count:    1,
			distinct: 1,
		},
		{
			name:     "Large bus at top-middle does not fire",
			dets:     []models.Detection{det("bus", 300, 80, 500, 300)},
			outcome:  OutcomeNone,
			label:    "bus",
			count:    1,
			distinct: 1,
		},
		{
			name:     "Motorcycle bottom-middle",
			dets:     []models.Detection{det("motorcycle", 300, 450, 400, 300)},
			outcome:  OutcomeNearbyVehicle,
			label:    "motorcycle",
			count:    1,
			distinct: 1,
			bucket:   BucketMB,
		},
		{
			name:     "Cyclist bottom-middle",
			dets:     []models.Detection{det("bikerider", 300, 400, 250, 250)},
			outcome:  OutcomeNearbyCyclist,
			label:    "bikerider",
			count:    1,
			distinct: 1,
			bucket:   BucketMB,
		},
		{
			name:     "Small cyclist",
			dets:     []models.Detection{det("bikerider", 300, 400, 200, 200)},
			outcome:  OutcomeNone,
			label:    "bikerider",
			count:    1,
			distinct: 1,
		},
		{
			name:     "Tiny bollard bottom-left still fires",
			dets:     []models.Detection{det("bollard", 50, 450, 10, 30)},
			outcome:  OutcomeObstacleAhead,
			label:    "bollard",
			count:    1,
			distinct: 1,
			bucket:   BucketLB,
		},
		{
			name:     "Bollard in middle band",
			dets:     []models.Detection{det("bollard", 300, 250, 40, 100)},
			outcome:  OutcomeNone,
			label:    "bollard",
			count:    1,
			distinct: 1,
		},
		{
			name: "Two classes never fire a rule",
			dets: []models.Detection{
				det("person", 300, 420, 250, 200),
				det("bollard", 300, 450, 40, 100),
			},
			outcome:  OutcomeMixed,
			label:    "person",
			count:    1,
			distinct: 2,
		},
		{
			name: "Dominant label needs a strictly greater count",
			dets: []models.Detection{
				det("car", 50, 50, 10, 10),
				det("bus", 50, 50, 10, 10),
				det("bus", 50, 50, 10, 10),
				det("car", 50, 50, 10, 10),
			},
			outcome:  OutcomeMixed,
			label:    "bus",
			count:    2,
			distinct: 2,
		},
		{
			name:     "Missing location is ignored",
			dets:     []models.Detection{{Label: "car", Confidence: 0.9}},
			outcome:  OutcomeNone,
			distinct: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.dets, frameW, frameH, th)

			assert.Equal(t, tt.outcome, c.Outcome)
			assert.Equal(t, tt.label, c.Label)
			assert.Equal(t, tt.count, c.Count)
			assert.Equal(t, tt.distinct, c.Distinct)
			if tt.bucket != "" {
				require.NotNil(t, c.Trigger)
				assert.Equal(t, tt.bucket, c.Trigger.Bucket)
			}
		})
	}
}

func TestClassify_Observations(t *testing.T) {
	c := Classify([]models.Detection{
		det("person", 300, 250, 100, 50),
		det("person", 590, 490, 20, 20),
	}, frameW, frameH, DefaultThresholds())

	require.Len(t, c.Observations, 2)
	assert.Equal(t, Observation{Label: "person", Bucket: BucketMM, Area: 5000}, c.Observations[0])
	assert.Equal(t, Observation{Label: "person", Bucket: BucketRB, Area: 400}, c.Observations[1])
}

func TestClassify_CustomThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.PedestrianArea = 1000

	c := Classify([]models.Detection{det("person", 300, 250, 50, 50)}, frameW, frameH, th)
	assert.Equal(t, OutcomeNearbyPedestrian, c.Outcome)
}

func TestOutcome_Audible(t *testing.T) {
	audible := []Outcome{OutcomeNearbyPedestrian, OutcomeNearbyVehicle, OutcomeNearbyCyclist, OutcomeObstacleAhead}
	silent := []Outcome{OutcomeNone, OutcomeCrowd, OutcomeMixed}

	for _, o := range audible {
		assert.True(t, o.Audible(), o)
	}
	for _, o := range silent {
		assert.False(t, o.Audible(), o)
	}
}
