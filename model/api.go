package model

// AssessRequest is the body of the standardize and containerize endpoints.
// Component fields are free text; non-string values are skipped rather than
// rejected so one malformed field never fails the batch.
type AssessRequest struct {
	Components []map[string]interface{} `json:"components"`
}

// AssessResponse returns the annotated component records.
type AssessResponse struct {
	Components []*Component `json:"components"`
}

// CatalogSummary reports what the loaded catalog contains.
type CatalogSummary struct {
	Entities        int            `json:"entities"`
	Versions        int            `json:"versions"`
	Compatibilities int            `json:"compatibilities"`
	ImageCatalogs   map[string]int `json:"image_catalogs"`
}

// The free-text input fields consulted for mention extraction, in the order
// they are concatenated into the tech-stack text.
var TechStackFields = []string{
	"operating_system",
	"programming_languages",
	"middleware",
	"database",
	"integration_services_and_additional_softwares",
	"technology_summary",
}
