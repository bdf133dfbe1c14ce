package recognition

import "greenia/internal/models"

// BottleInfo is static guidance shown next to a recognition result.
type BottleInfo struct {
	Code            string   `json:"code"`
	FullName        string   `json:"full_name"`
	DegradationTime string   `json:"degradation_time"`
	Recyclable      bool     `json:"recyclable"`
	CommonUses      string   `json:"common_uses"`
	Preparation     []string `json:"preparation"`
}

var bottleInfo = map[string]BottleInfo{
	models.PlasticPET: {
		Code:            models.PlasticPET,
		FullName:        "Polietileno Tereftalato",
		DegradationTime: "450 años",
		Recyclable:      true,
		CommonUses:      "Botellas de bebidas, envases de alimentos",
		Preparation:     []string{"Vaciar y enjuagar", "Retirar la tapa", "Aplastar la botella"},
	},
	models.PlasticHDPE: {
		Code:            models.PlasticHDPE,
		FullName:        "Polietileno de Alta Densidad",
		DegradationTime: "500 años",
		Recyclable:      true,
		CommonUses:      "Envases de leche, detergentes, shampoo",
		Preparation:     []string{"Vaciar y enjuagar", "Retirar etiquetas si es posible"},
	},
	models.PlasticPVC: {
		Code:            models.PlasticPVC,
		FullName:        "Policloruro de Vinilo",
		DegradationTime: "Más de 1000 años",
		Recyclable:      false,
		CommonUses:      "Tuberías, envases de aceite",
		Preparation:     []string{"Consultar el punto limpio más cercano"},
	},
	models.PlasticLDPE: {
		Code:            models.PlasticLDPE,
		FullName:        "Polietileno de Baja Densidad",
		DegradationTime: "150 años",
		Recyclable:      true,
		CommonUses:      "Bolsas, films, botellas flexibles",
		Preparation:     []string{"Limpiar y secar", "Agrupar bolsas en una sola"},
	},
	models.PlasticPP: {
		Code:            models.PlasticPP,
		FullName:        "Polipropileno",
		DegradationTime: "100 años",
		Recyclable:      true,
		CommonUses:      "Tapas, envases de yogur, pajitas",
		Preparation:     []string{"Vaciar y enjuagar"},
	},
	models.PlasticPS: {
		Code:            models.PlasticPS,
		FullName:        "Poliestireno",
		DegradationTime: "Más de 500 años",
		Recyclable:      false,
		CommonUses:      "Vasos desechables, bandejas de espuma",
		Preparation:     []string{"Consultar el punto limpio más cercano"},
	},
}

// InfoFor returns guidance for a plastic type code, with a generic entry for
// codes without specific information.
func InfoFor(code string) BottleInfo {
	if info, ok := bottleInfo[code]; ok {
		return info
	}
	return BottleInfo{
		Code:            code,
		FullName:        "Tipo de plástico no identificado",
		DegradationTime: "Desconocido",
		Recyclable:      false,
		Preparation:     []string{"Consultar el punto limpio más cercano"},
	}
}
