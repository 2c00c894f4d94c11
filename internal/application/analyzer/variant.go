package analyzer

import (
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/infra/ai/prompt"
)

// Variant parameterizes the cascade by prompt and expected field set.
// The escalation mechanics are identical across variants; only the
// instruction text and the required keys differ.
type Variant struct {
	Name           string
	Prompt         string
	RequiredFields []string
}

var (
	// PartDetection identifies a single aftermarket part.
	PartDetection = Variant{
		Name:           "part",
		Prompt:         prompt.PartDetection(),
		RequiredFields: []string{"part_name", "manufacturer_guess", "seo_optimized_alt_text"},
	}

	// VehicleFitment identifies the vehicle and its fitment specs.
	VehicleFitment = Variant{
		Name:           "fitment",
		Prompt:         prompt.VehicleFitment(),
		RequiredFields: []string{"year", "make", "model", "seo_optimized_alt_text"},
	}

	// ProductDetection lists shoppable products in the photo.
	ProductDetection = Variant{
		Name:           "product",
		Prompt:         prompt.ProductDetection(),
		RequiredFields: []string{"primary_product", "manufacturer_guess", "seo_optimized_alt_text"},
	}
)

var variants = map[string]Variant{
	PartDetection.Name:    PartDetection,
	VehicleFitment.Name:   VehicleFitment,
	ProductDetection.Name: ProductDetection,
}

// VariantByName resolves a wire-level variant name.
func VariantByName(name string) (Variant, bool) {
	v, ok := variants[name]
	return v, ok
}
