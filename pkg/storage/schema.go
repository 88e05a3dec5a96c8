package storage

// ConfigJSONSchema documents the runtime shape of a storage configuration.
const ConfigJSONSchema = `
{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "StorageConfig",
  "type": "object",
  "required": ["driver", "dsn"],
  "properties": {
    "name": {
      "type": "string",
      "description": "Human readable identifier for the storage configuration"
    },
    "driver": {
      "type": "string",
      "enum": ["sqlite3", "postgres"],
      "description": "database/sql driver backing the bun connection"
    },
    "dsn": {
      "type": "string",
      "minLength": 1,
      "description": "Connection string for the driver"
    },
    "readOnly": {
      "type": "boolean",
      "default": false
    },
    "maxOpenConns": {
      "type": "integer",
      "minimum": 0
    },
    "options": {
      "type": "object",
      "additionalProperties": true
    }
  },
  "additionalProperties": false
}
`
