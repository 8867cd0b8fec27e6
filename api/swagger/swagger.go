package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "StudioSync Billing API",
        "description": "Charge calculation, posting and auto-pay for dance studio billing",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Charges", "description": "Charge calculation and ledger"},
        {"name": "Posting", "description": "Monthly charge posting sweep"},
        {"name": "Payments", "description": "Auto-pay against the payment gateway"}
    ],
    "paths": {
        "/charges/calculate": {
            "post": {
                "tags": ["Charges"],
                "summary": "Calculate charges for a family",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CalculateChargeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/charges/post": {
            "post": {
                "tags": ["Posting"],
                "summary": "Post charges for a billing period",
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/PostChargesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/charges": {
            "get": {
                "tags": ["Charges"],
                "summary": "List posted charges",
                "parameters": [
                    {"name": "family_id", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "month", "in": "query", "type": "integer"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/charges/summary": {
            "get": {
                "tags": ["Charges"],
                "summary": "Aggregate charge summary for a billing period",
                "parameters": [
                    {"name": "month", "in": "query", "required": true, "type": "integer"},
                    {"name": "year", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/charges/{id}": {
            "get": {
                "tags": ["Charges"],
                "summary": "Get a posted charge with line items",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/charges/{id}/statement": {
            "get": {
                "tags": ["Charges"],
                "summary": "Download a charge statement",
                "produces": ["application/pdf", "text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["pdf", "csv"]}
                ],
                "responses": {
                    "200": {"description": "Statement file"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/autopay": {
            "post": {
                "tags": ["Payments"],
                "summary": "Run the auto-pay sweep for a billing period",
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/AutoPayRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CalculateChargeRequest": {
            "type": "object",
            "properties": {
                "family_id": {"type": "string"},
                "as_of": {"type": "string", "format": "date"}
            },
            "required": ["family_id"]
        },
        "PostChargesRequest": {
            "type": "object",
            "properties": {
                "month": {"type": "integer"},
                "year": {"type": "integer"}
            }
        },
        "AutoPayRequest": {
            "type": "object",
            "properties": {
                "month": {"type": "integer"},
                "year": {"type": "integer"}
            }
        },
        "StudentCharge": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "studentName": {"type": "string"},
                "tuition": {"type": "number"},
                "fees": {"type": "number"},
                "discounts": {"type": "number"},
                "total": {"type": "number"},
                "classes": {"type": "array", "items": {"type": "object"}}
            }
        },
        "ChargeData": {
            "type": "object",
            "properties": {
                "students": {"type": "array", "items": {"$ref": "#/definitions/StudentCharge"}},
                "totalTuition": {"type": "number"},
                "totalFees": {"type": "number"},
                "totalDiscounts": {"type": "number"},
                "finalTotal": {"type": "number"},
                "ratePlanName": {"type": "string"}
            }
        },
        "ChargeResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "chargeData": {"$ref": "#/definitions/ChargeData"},
                "error": {"type": "string"},
                "logs": {"type": "array", "items": {"type": "string"}}
            }
        },
        "Charge": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "family_id": {"type": "string"},
                "month": {"type": "integer"},
                "year": {"type": "integer"},
                "total": {"type": "number"},
                "status": {"type": "string", "enum": ["Unpaid", "Paid", "Failed"]},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "ChargeLineItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "charge_id": {"type": "string"},
                "kind": {"type": "string", "enum": ["TuitionRate", "Fee", "Discount"]},
                "description": {"type": "string"},
                "amount": {"type": "number"},
                "student_id": {"type": "string"}
            }
        },
        "ChargeSummary": {
            "type": "object",
            "properties": {
                "month": {"type": "integer"},
                "year": {"type": "integer"},
                "charge_count": {"type": "integer"},
                "paid_count": {"type": "integer"},
                "unpaid_count": {"type": "integer"},
                "total_billed": {"type": "number"},
                "total_collected": {"type": "number"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
