package quote

import (
	"sync"

	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"
)

const offerSchema = `{
  "type": "object",
  "required": ["year", "make", "model", "price", "finance", "lease"],
  "properties": {
    "year": {"type": "integer", "minimum": 1990},
    "make": {"type": "string"},
    "model": {"type": "string", "minLength": 1},
    "trim": {"type": "string"},
    "price": {"type": "number", "minimum": 0},
    "mileage": {"type": "string"},
    "seats": {"type": "integer", "minimum": 1},
    "headline_feature": {"type": "string"},
    "finance": {
      "type": "object",
      "required": ["apr_percent", "term_months"],
      "properties": {
        "apr_percent": {"type": "number", "minimum": 0},
        "term_months": {"type": "integer", "minimum": 1},
        "estimated_monthly_payment": {"type": "number", "minimum": 0}
      }
    },
    "lease": {
      "type": "object",
      "required": ["term_months", "estimated_monthly_payment"],
      "properties": {
        "term_months": {"type": "integer", "minimum": 1},
        "estimated_monthly_payment": {"type": "number", "minimum": 0},
        "annual_mileage_limit": {"type": "integer", "minimum": 0},
        "lease_score": {"type": "number"}
      }
    }
  }
}`

var documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["Budget", "Balanced", "Premium"],
  "definitions": {"offer": ` + offerSchema + `},
  "properties": {
    "Budget": {"$ref": "#/definitions/offer"},
    "Balanced": {"$ref": "#/definitions/offer"},
    "Premium": {"$ref": "#/definitions/offer"},
    "Affordability": {"type": "object"},
    "Recommendation": {
      "type": "object",
      "properties": {
        "primary": {"type": "string"},
        "lease_score": {"type": "number"},
        "reason": {"type": "string"}
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	})
	return compiledSchema, schemaErr
}

// Validate проверяет документ по JSON схеме и возвращает список замечаний.
// Пустой список означает, что документ соответствует схеме.
func Validate(data []byte) ([]string, error) {
	schema, err := loadSchema()
	if err != nil {
		return nil, eris.Wrap(err, "quote: compile schema")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, eris.Wrap(err, "quote: validate document")
	}
	if result.Valid() {
		return nil, nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return issues, nil
}
