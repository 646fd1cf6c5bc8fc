package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// APIRequestEventsColumns holds the columns for the "api_request_events" table.
	APIRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "request_id", Type: field.TypeString},
		{Name: "endpoint", Type: field.TypeString},
		{Name: "method", Type: field.TypeString},
		{Name: "path", Type: field.TypeString},
		{Name: "status", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
	}
	// APIRequestEventsTable holds the schema information for the "api_request_events" table.
	APIRequestEventsTable = &schema.Table{
		Name:       "api_request_events",
		Columns:    APIRequestEventsColumns,
		PrimaryKey: []*schema.Column{APIRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "apirequestevent_timestamp",
				Unique:  false,
				Columns: []*schema.Column{APIRequestEventsColumns[2]},
			},
			{
				Name:    "apirequestevent_endpoint",
				Unique:  false,
				Columns: []*schema.Column{APIRequestEventsColumns[4]},
			},
			{
				Name:    "apirequestevent_success",
				Unique:  false,
				Columns: []*schema.Column{APIRequestEventsColumns[9]},
			},
		},
	}
	// AuthTokensColumns holds the columns for the "auth_tokens" table.
	AuthTokensColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "token", Type: field.TypeString, Size: 2147483647},
		{Name: "username", Type: field.TypeString, Default: ""},
		{Name: "saved_at", Type: field.TypeTime},
	}
	// AuthTokensTable holds the schema information for the "auth_tokens" table.
	AuthTokensTable = &schema.Table{
		Name:       "auth_tokens",
		Columns:    AuthTokensColumns,
		PrimaryKey: []*schema.Column{AuthTokensColumns[0]},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		APIRequestEventsTable,
		AuthTokensTable,
	}
)
