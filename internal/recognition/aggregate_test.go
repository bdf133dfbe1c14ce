package recognition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"greenia/internal/detection"
	"greenia/internal/models"
)

func preds(labels ...string) []detection.Prediction {
	out := make([]detection.Prediction, len(labels))
	for i, l := range labels {
		out[i] = detection.Prediction{Class: l, Confidence: 0.5}
	}
	return out
}

func TestCountByLabelSumsToTotal(t *testing.T) {
	cases := [][]string{
		{},
		{"PET Plastic"},
		{"PET Plastic", "HDPE Plastic", "PET Plastic", "Cardboard", "Cardboard", "Cardboard"},
	}
	for _, labels := range cases {
		counts := CountByLabel(preds(labels...))
		sum := 0
		for label, n := range counts {
			expected := 0
			for _, l := range labels {
				if l == label {
					expected++
				}
			}
			assert.Equal(t, expected, n, label)
			sum += n
		}
		assert.Equal(t, len(labels), sum)
	}
}

func TestCodeForLabel(t *testing.T) {
	assert.Equal(t, models.PlasticPET, CodeForLabel("PET Plastic"))
	assert.Equal(t, models.PlasticHDPE, CodeForLabel(" hdpe plastic "))
	assert.Equal(t, models.PlasticPP, CodeForLabel("PP"))
	assert.Equal(t, models.PlasticOther, CodeForLabel("Aluminium Can"))
	assert.Equal(t, models.PlasticOther, CodeForLabel(""))
}

func TestImpactIsDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		w, c := Impact(2, 0.02, 0.5)
		assert.Equal(t, 0.04, w)
		assert.Equal(t, 1.0, c)
	}
	w, c := Impact(3, 0.02, 0.7)
	assert.Equal(t, 0.06, w)
	assert.Equal(t, 2.1, c)
}

func TestAggregateScenario(t *testing.T) {
	in := []detection.Prediction{
		{Class: "PET Plastic", Confidence: 0.9},
		{Class: "HDPE Plastic", Confidence: 0.8},
		{Class: "PET Plastic", Confidence: 0.85},
	}
	agg := Aggregate(in)

	assert.Equal(t, 3, agg.Total)
	assert.Equal(t, map[string]int{"PET": 2, "HDPE": 1}, agg.CountByCode)
	assert.Equal(t, map[string]int{"PET Plastic": 2, "HDPE Plastic": 1}, agg.CountByLabel)
	assert.InDelta(t, 0.875, agg.AverageConfidence["PET Plastic"], 1e-9)
	assert.InDelta(t, 0.8, agg.AverageConfidence["HDPE Plastic"], 1e-9)
	assert.Equal(t, []string{"HDPE", "PET"}, agg.Codes())
}

func TestAggregateMergesUnknownLabelsIntoOther(t *testing.T) {
	agg := Aggregate(preds("Glass", "Paper", "PET Plastic"))
	assert.Equal(t, 2, agg.CountByCode[models.PlasticOther])
	assert.Equal(t, 1, agg.CountByCode[models.PlasticPET])
}

func TestInfoForFallback(t *testing.T) {
	assert.True(t, InfoFor(models.PlasticPET).Recyclable)
	info := InfoFor(models.PlasticOther)
	assert.Equal(t, models.PlasticOther, info.Code)
	assert.False(t, info.Recyclable)
}
