// Package prompt holds the instruction text sent to the vision models.
// Both cascade tiers receive the identical prompt for the chosen
// variant; only the model identifier differs between passes.
package prompt

const jsonRules = `Respond with ONLY a single JSON object, no prose and no markdown.
All values must be strings except confidence_score, which must be an
integer between 0 and 100 (never a float, never a string). If you are
unsure about a field, still fill it with your best guess and lower
confidence_score accordingly. You may use code execution for any
counting or measurement reasoning before answering.`

// PartDetection identifies a single aftermarket part in the photo.
func PartDetection() string {
	return `You are an expert in aftermarket vehicle parts and accessories.
Identify the most prominent aftermarket part visible in this photo.

` + jsonRules + `

JSON shape:
{
  "part_name": "specific product name, e.g. ARB Summit Bumper",
  "manufacturer_guess": "brand name, or Unknown",
  "confidence_score": 0,
  "seo_optimized_alt_text": "short descriptive alt text for the photo"
}`
}

// VehicleFitment identifies the vehicle itself and its fitment specs.
func VehicleFitment() string {
	return `You are an expert automotive spotter. Identify the vehicle in
this photo and its key fitment specifications.

` + jsonRules + `

JSON shape:
{
  "year": "model year or year range, e.g. 2018-2020",
  "make": "manufacturer, e.g. Toyota",
  "model": "model name, e.g. Tacoma",
  "trim_guess": "trim level, or Unknown",
  "bolt_pattern": "wheel bolt pattern, or Unknown",
  "confidence_score": 0,
  "seo_optimized_alt_text": "short descriptive alt text for the photo"
}`
}

// ProductDetection lists shoppable products visible in the photo.
func ProductDetection() string {
	return `You are an expert in aftermarket vehicle products. Identify the
shoppable products visible in this photo, leading with the most
prominent one.

` + jsonRules + ` The products array may contain plain strings.

JSON shape:
{
  "primary_product": "most prominent product name",
  "manufacturer_guess": "brand of the primary product, or Unknown",
  "products": ["other visible products"],
  "confidence_score": 0,
  "seo_optimized_alt_text": "short descriptive alt text for the photo"
}`
}
