package validation

// Job variable and catalog schemas. Field names follow the JSON tags of the
// types the documents decode into.

const applicantProperties = `{
	"type": "object",
	"required": ["householdSize", "monthlyIncomeCents", "jurisdiction"],
	"properties": {
		"householdSize": {"type": "integer", "minimum": 1},
		"monthlyIncomeCents": {"type": "integer", "minimum": 0},
		"age": {"type": ["integer", "null"], "minimum": 0, "maximum": 120},
		"hasDisability": {"type": "boolean"},
		"isPregnant": {"type": "boolean"},
		"isFemale": {"type": "boolean"},
		"receivesCategoricalBenefit": {"type": "boolean"},
		"isCitizen": {"type": ["boolean", "null"]},
		"assetsCents": {"type": ["integer", "null"], "minimum": 0},
		"jurisdiction": {"type": "string", "pattern": "^[A-Z]{2}$"},
		"evaluatedAt": {"type": "string", "format": "date-time"}
	}
}`

const pathwayEnum = `["MAGI", "NON_MAGI_AGED", "NON_MAGI_DISABLED", "PREGNANCY", "SSI_LINKED"]`

// FindMatchesJSON is the input of the find-program-matches worker.
const FindMatchesJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["applicant"],
	"properties": {
		"requestId": {"type": "string"},
		"applicant": ` + applicantProperties + `
	}
}`

// IncomeThresholdJSON is the input of the calculate-income-threshold worker.
const IncomeThresholdJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["jurisdiction", "year", "householdSize", "percentage"],
	"properties": {
		"requestId": {"type": "string"},
		"jurisdiction": {"type": "string", "pattern": "^[A-Z]{2}$"},
		"year": {"type": "integer", "minimum": 1900, "maximum": 2200},
		"householdSize": {"type": "integer", "minimum": 1},
		"percentage": {"type": "integer", "minimum": 0, "maximum": 1000}
	}
}`

// AssetCheckJSON is the input of the check-asset-limit worker.
const AssetCheckJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["jurisdiction", "pathway", "year", "assetsCents"],
	"properties": {
		"requestId": {"type": "string"},
		"jurisdiction": {"type": "string", "pattern": "^[A-Z]{2}$"},
		"pathway": {"type": "string", "enum": ` + pathwayEnum + `},
		"year": {"type": "integer", "minimum": 1900, "maximum": 2200},
		"assetsCents": {"type": "integer", "minimum": 0}
	}
}`

// CatalogJSON is the program catalog file read by the registry.
const CatalogJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["version", "programs"],
	"properties": {
		"version": {"type": "string"},
		"lastUpdated": {"type": "string", "format": "date-time"},
		"programs": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["jurisdiction", "programId", "name", "pathway", "rules"],
				"properties": {
					"jurisdiction": {"type": "string", "pattern": "^[A-Z]{2}$"},
					"programId": {"type": "string", "pattern": "^[a-z0-9][a-z0-9-]*$"},
					"name": {"type": "string", "minLength": 1},
					"pathway": {"type": "string", "enum": ` + pathwayEnum + `},
					"rules": {
						"type": "array",
						"minItems": 1,
						"items": {
							"type": "object",
							"required": ["version", "effectiveDate", "expression"],
							"properties": {
								"version": {"type": ["string", "number"], "pattern": "^[0-9]+(\\.[0-9]+)?$", "minimum": 0},
								"effectiveDate": {"type": "string", "format": "date-time"},
								"endDate": {"type": ["string", "null"], "format": "date-time"},
								"description": {"type": "string"},
								"expression": {"type": "object"}
							}
						}
					}
				}
			}
		}
	}
}`

var (
	FindMatchesSchema     = MustCompile("find-program-matches", FindMatchesJSON)
	IncomeThresholdSchema = MustCompile("calculate-income-threshold", IncomeThresholdJSON)
	AssetCheckSchema      = MustCompile("check-asset-limit", AssetCheckJSON)
	CatalogSchema         = MustCompile("program catalog", CatalogJSON)
)
