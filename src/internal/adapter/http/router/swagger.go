package router

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

func registerSwaggerRoutes(r *mux.Router) {
	r.Handle("/swagger", http.RedirectHandler("/swagger/", http.StatusMovedPermanently)).Methods(http.MethodGet)

	r.HandleFunc("/swagger/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, swaggerHTML, "/swagger/openapi.json")
	}).Methods(http.MethodGet)

	r.HandleFunc("/swagger/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(openAPI))
	}).Methods(http.MethodGet)
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Interop Settlement API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "%s",
        dom_id: "#swagger-ui"
      });
    };
  </script>
</body>
</html>`

const openAPI = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Interop Settlement API",
    "version": "1.0.0"
  },
  "security": [{"BasicAuth": []}, {"BearerAuth": []}],
  "paths": {
    "/interop/transfers": {
      "post": {
        "summary": "Prepare (hold) or create (commit) a transfer",
        "parameters": [
          {"name": "action", "in": "query", "required": true, "schema": {"type": "string", "enum": ["prepare", "create"]}},
          {"$ref": "#/components/parameters/IdempotencyKey"},
          {"$ref": "#/components/parameters/Tenant"}
        ],
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {"$ref": "#/components/schemas/TransferRequest"}}}
        },
        "responses": {
          "200": {"description": "Transfer accepted"},
          "400": {"description": "Validation error or currency mismatch"},
          "404": {"description": "Account not found"},
          "409": {"description": "Duplicate transfer"},
          "422": {"description": "Insufficient funds, missing hold, amount mismatch or transaction not allowed"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/interop/transfers/{transferCode}/release": {
      "post": {
        "summary": "Release the hold of a prepared transfer",
        "parameters": [
          {"name": "transferCode", "in": "path", "required": true, "schema": {"type": "string"}},
          {"$ref": "#/components/parameters/Tenant"}
        ],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["accountId"],
                "properties": {
                  "transactionCode": {"type": "string"},
                  "accountId": {"type": "string"}
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "Hold released"},
          "404": {"description": "Account not found"},
          "422": {"description": "No active hold for transfer"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/interop/transactions/{transactionCode}/transfers/{transferCode}": {
      "get": {
        "summary": "Get the state of a transfer",
        "parameters": [
          {"name": "transactionCode", "in": "path", "required": true, "schema": {"type": "string"}},
          {"name": "transferCode", "in": "path", "required": true, "schema": {"type": "string"}}
        ],
        "responses": {
          "200": {"description": "Transfer fetched"},
          "404": {"description": "Transfer not found"}
        }
      }
    },
    "/interop/quotes": {
      "post": {
        "summary": "Quote the fee of a prospective transfer",
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {"$ref": "#/components/schemas/QuoteRequest"}}}
        },
        "responses": {
          "200": {"description": "Quote created"},
          "400": {"description": "Validation error"},
          "422": {"description": "Insufficient funds"}
        }
      }
    },
    "/interop/requests": {
      "post": {
        "summary": "Create a transaction request",
        "responses": {
          "200": {"description": "Transaction request accepted"},
          "400": {"description": "Validation error"}
        }
      }
    },
    "/interop/transactions/{transactionCode}/requests/{requestCode}": {
      "get": {
        "summary": "Get a transaction request",
        "parameters": [
          {"name": "transactionCode", "in": "path", "required": true, "schema": {"type": "string"}},
          {"name": "requestCode", "in": "path", "required": true, "schema": {"type": "string"}}
        ],
        "responses": {"200": {"description": "Transaction request fetched"}}
      }
    },
    "/interop/accounts/{accountId}": {
      "get": {
        "summary": "Get account details",
        "parameters": [{"$ref": "#/components/parameters/AccountId"}],
        "responses": {"200": {"description": "Account fetched"}, "404": {"description": "Account not found"}}
      }
    },
    "/interop/accounts/{accountId}/transactions": {
      "get": {
        "summary": "List account transactions",
        "parameters": [
          {"$ref": "#/components/parameters/AccountId"},
          {"name": "debit", "in": "query", "schema": {"type": "boolean"}},
          {"name": "credit", "in": "query", "schema": {"type": "boolean"}},
          {"name": "from", "in": "query", "schema": {"type": "string", "format": "date-time"}},
          {"name": "to", "in": "query", "schema": {"type": "string", "format": "date-time"}}
        ],
        "responses": {"200": {"description": "Transactions fetched"}, "404": {"description": "Account not found"}}
      }
    },
    "/interop/accounts/{accountId}/identifiers": {
      "get": {
        "summary": "List identifiers registered for an account",
        "parameters": [{"$ref": "#/components/parameters/AccountId"}],
        "responses": {"200": {"description": "Identifiers fetched"}}
      }
    },
    "/interop/parties/{idType}/{idValue}": {
      "get": {
        "summary": "Look up the account of a party",
        "responses": {"200": {"description": "Party fetched"}, "404": {"description": "Identifier not found"}}
      },
      "post": {
        "summary": "Register a party identifier",
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {"type": "object", "required": ["accountId"], "properties": {"accountId": {"type": "string"}}}}}
        },
        "responses": {"201": {"description": "Party registered"}, "409": {"description": "Identifier already registered"}}
      },
      "delete": {
        "summary": "Remove a party identifier",
        "responses": {"200": {"description": "Party removed"}, "404": {"description": "Identifier not found"}}
      },
      "parameters": [
        {"name": "idType", "in": "path", "required": true, "schema": {"type": "string", "enum": ["MSISDN", "EMAIL", "PERSONAL_ID", "BUSINESS", "DEVICE", "ACCOUNT_ID", "IBAN", "ALIAS"]}},
        {"name": "idValue", "in": "path", "required": true, "schema": {"type": "string"}}
      ]
    }
  },
  "components": {
    "securitySchemes": {
      "BasicAuth": {"type": "http", "scheme": "basic"},
      "BearerAuth": {"type": "http", "scheme": "bearer", "bearerFormat": "JWT"}
    },
    "parameters": {
      "AccountId": {"name": "accountId", "in": "path", "required": true, "schema": {"type": "string"}},
      "IdempotencyKey": {"name": "Idempotency-Key", "in": "header", "schema": {"type": "string"}},
      "Tenant": {"name": "X-Tenant-ID", "in": "header", "schema": {"type": "string"}}
    },
    "schemas": {
      "Money": {
        "type": "object",
        "required": ["amount", "currency"],
        "properties": {
          "amount": {"type": "string", "example": "100.00"},
          "currency": {"type": "string", "example": "USD"}
        }
      },
      "TransferRequest": {
        "type": "object",
        "required": ["transactionCode", "transferCode", "amount", "transactionRole"],
        "properties": {
          "transactionCode": {"type": "string"},
          "transferCode": {"type": "string"},
          "accountId": {"type": "string"},
          "idType": {"type": "string"},
          "idValue": {"type": "string"},
          "subIdOrType": {"type": "string"},
          "amount": {"$ref": "#/components/schemas/Money"},
          "transactionRole": {"type": "string", "enum": ["PAYER", "PAYEE"]},
          "fspFee": {"$ref": "#/components/schemas/Money"},
          "fspCommission": {"$ref": "#/components/schemas/Money"},
          "expiration": {"type": "string", "format": "date-time"},
          "note": {"type": "string"}
        }
      },
      "QuoteRequest": {
        "type": "object",
        "required": ["quoteCode", "amount", "transactionRole"],
        "properties": {
          "transactionCode": {"type": "string"},
          "quoteCode": {"type": "string"},
          "accountId": {"type": "string"},
          "amount": {"$ref": "#/components/schemas/Money"},
          "transactionRole": {"type": "string", "enum": ["PAYER", "PAYEE"]},
          "expiration": {"type": "string", "format": "date-time"}
        }
      }
    }
  }
}`
