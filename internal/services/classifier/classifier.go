// Package classifier identifies medicinal herbs from a station's
// (LDR, pH) response using a nearest-centroid model over the collected
// training set.
package classifier

import (
	"math"

	"github.com/etongue-project/etongue/internal/model/entities"
)

// Centroid is one herb's reference response. LDRCounts is in raw ADC
// units, matching the units the training set was collected in.
type Centroid struct {
	Herb      string
	LDRCounts float64
	PH        float64
}

// Training centroids collected with the reference chamber.
var defaultCentroids = []Centroid{
	{Herb: "Tulsi", LDRCounts: 320, PH: 6.8},
	{Herb: "Neem", LDRCounts: 550, PH: 7.2},
	{Herb: "Ashwagandha", LDRCounts: 430, PH: 6.5},
}

// Feature scales used to bring both axes into [0,1] before measuring
// distance; without them the LDR axis dominates.
const (
	ldrScale = 1023.0
	phScale  = 14.0
)

// unknownCutoff is the normalized distance above which a sample matches no
// herb.
const unknownCutoff = 0.12

// Model classifies samples against a centroid set.
type Model struct {
	centroids []Centroid
	cutoff    float64
}

// NewModel returns the model over the built-in training centroids.
func NewModel() *Model {
	return &Model{centroids: defaultCentroids, cutoff: unknownCutoff}
}

// NewModelWith builds a model over custom centroids, for tests and for
// retraining from a collected dataset.
func NewModelWith(centroids []Centroid, cutoff float64) *Model {
	return &Model{centroids: centroids, cutoff: cutoff}
}

// Classify returns the nearest herb for a response and the normalized
// distance to its centroid. Samples farther than the cutoff from every
// centroid come back as Unknown.
func (m *Model) Classify(ldrCounts, ph float64) (string, float64) {
	best := entities.HerbUnknown
	bestDist := math.Inf(1)

	for _, c := range m.centroids {
		dl := (ldrCounts - c.LDRCounts) / ldrScale
		dp := (ph - c.PH) / phScale
		d := math.Sqrt(dl*dl + dp*dp)
		if d < bestDist {
			bestDist = d
			best = c.Herb
		}
	}

	if bestDist > m.cutoff {
		return entities.HerbUnknown, bestDist
	}
	return best, bestDist
}

// CountsFromVoltage maps an LDR voltage back to raw ADC counts, the unit
// the centroids are expressed in.
func CountsFromVoltage(v float64) float64 {
	return v * ldrScale / 5.0
}

// pH plausibility window for herb extracts; samples outside it are flagged
// invalid.
const (
	PHValidMin = 5.5
	PHValidMax = 8.5
)

// PHInRange reports whether a pH reading is plausible for a sample.
func PHInRange(ph float64) bool {
	return ph >= PHValidMin && ph <= PHValidMax
}
