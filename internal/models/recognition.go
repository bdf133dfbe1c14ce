package models

import "time"

// Plastic type codes as stored in plastic_types.code.
const (
	PlasticPET   = "PET"
	PlasticHDPE  = "HDPE"
	PlasticPVC   = "PVC"
	PlasticLDPE  = "LDPE"
	PlasticPP    = "PP"
	PlasticPS    = "PS"
	PlasticOther = "OTHER"
)

type PlasticType struct {
	ID           int     `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	CO2PerUnitKg float64 `json:"co2_per_unit_kg"`
}

// Recognition is one persisted (plastic type, quantity) row of a recognition batch.
type Recognition struct {
	ID            string    `json:"id"`
	BatchID       string    `json:"batch_id"`
	PlasticTypeID int       `json:"plastic_type_id"`
	PlasticCode   string    `json:"plastic_code,omitempty"`
	PlasticName   string    `json:"plastic_name,omitempty"`
	Quantity      int       `json:"quantity"`
	WeightKg      float64   `json:"weight_kg"`
	CO2SavedKg    float64   `json:"co2_saved_kg"`
	ImageKey      *string   `json:"image_key,omitempty"`
	UserID        string    `json:"user_id"`
	AdminID       *string   `json:"admin_id,omitempty"`
	RecognizedAt  time.Time `json:"recognized_at"`
}
