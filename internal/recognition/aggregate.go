// Package recognition turns model detections into per-plastic-type counts and
// CO2 estimates and records them.
package recognition

import (
	"math"
	"sort"
	"strings"

	"greenia/internal/detection"
	"greenia/internal/models"
)

// DefaultUnitWeightKg is the assumed weight of one detected container.
const DefaultUnitWeightKg = 0.02

// labelCodes maps the model's class names to plastic type codes.
var labelCodes = map[string]string{
	"pet plastic":  models.PlasticPET,
	"pet":          models.PlasticPET,
	"hdpe plastic": models.PlasticHDPE,
	"hdpe":         models.PlasticHDPE,
	"pvc plastic":  models.PlasticPVC,
	"pvc":          models.PlasticPVC,
	"ldpe plastic": models.PlasticLDPE,
	"ldpe":         models.PlasticLDPE,
	"pp plastic":   models.PlasticPP,
	"pp":           models.PlasticPP,
	"ps plastic":   models.PlasticPS,
	"ps":           models.PlasticPS,
}

// CodeForLabel resolves a model label; unknown labels map to OTHER.
func CodeForLabel(label string) string {
	if code, ok := labelCodes[strings.ToLower(strings.TrimSpace(label))]; ok {
		return code
	}
	return models.PlasticOther
}

// CountByLabel counts detections per class label.
func CountByLabel(preds []detection.Prediction) map[string]int {
	counts := make(map[string]int)
	for _, p := range preds {
		counts[p.Class]++
	}
	return counts
}

// AverageConfidence returns the mean confidence per class label.
func AverageConfidence(preds []detection.Prediction) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, p := range preds {
		sums[p.Class] += p.Confidence
		counts[p.Class]++
	}
	avg := make(map[string]float64, len(sums))
	for label, sum := range sums {
		avg[label] = round(sum/float64(counts[label]), 4)
	}
	return avg
}

// Impact returns the estimated weight and CO2 savings for quantity units of a type.
func Impact(quantity int, unitWeightKg, co2PerUnitKg float64) (weightKg, co2Kg float64) {
	q := float64(quantity)
	return round(q*unitWeightKg, 4), round(q*co2PerUnitKg, 4)
}

// Aggregation is the per-image summary of a detection result.
type Aggregation struct {
	Total             int                `json:"total"`
	CountByLabel      map[string]int     `json:"count_by_label"`
	AverageConfidence map[string]float64 `json:"average_confidence"`
	CountByCode       map[string]int     `json:"count_by_code"`
}

// Aggregate counts predictions by label and by plastic type code.
func Aggregate(preds []detection.Prediction) Aggregation {
	byLabel := CountByLabel(preds)
	byCode := make(map[string]int)
	for label, n := range byLabel {
		byCode[CodeForLabel(label)] += n
	}
	return Aggregation{
		Total:             len(preds),
		CountByLabel:      byLabel,
		AverageConfidence: AverageConfidence(preds),
		CountByCode:       byCode,
	}
}

// Codes returns the codes present in the aggregation in a stable order.
func (a Aggregation) Codes() []string {
	codes := make([]string, 0, len(a.CountByCode))
	for code := range a.CountByCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
