package genealogy

// DenylistVersion names the schema.org release DefaultDenylist was taken from.
const DenylistVersion = "schemaorg-current-https@2023"

// DefaultDenylist lists schema.org nodes that are declared both as a class
// and as an instance. Statements mentioning them as subject or object are
// removed after the ontologies are loaded.
func DefaultDenylist() []string {
	return []string{
		Schema + "Boolean",
		Schema + "CommunityHealth",
		Schema + "Dermatology",
		Schema + "DietNutrition",
		Schema + "Emergency",
		Schema + "Geriatric",
		Schema + "Gynecologic",
		Schema + "Midwifery",
		Schema + "Number",
		Schema + "Nursing",
		Schema + "Obstetric",
		Schema + "Oncologic",
		Schema + "Optometric",
		Schema + "Otolaryngologic",
		Schema + "Pediatric",
		Schema + "Physiotherapy",
		Schema + "PlasticSurgery",
		Schema + "Podiatric",
		Schema + "PrimaryCare",
		Schema + "Psychiatric",
		Schema + "PublicHealth",
		Schema + "RespiratoryTherapy",
		Schema + "Text",
	}
}
