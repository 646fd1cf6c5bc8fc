package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// APIRequestEvent records every backend call made by the client.
type APIRequestEvent struct {
	ent.Schema
}

func (APIRequestEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (APIRequestEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("request_id").
			Comment("X-Request-ID sent with the call"),
		field.String("endpoint").
			Comment("Operation label: login, next-insight, submit-answer, ..."),
		field.String("method"),
		field.String("path").
			Comment("Path below the API base URL"),
		field.Int("status").
			Default(0).
			Comment("HTTP status, 0 when no response arrived"),
		field.Int64("latency_ms").
			Default(0),
		field.Bool("success"),
		field.String("error_message").
			Default(""),
	}
}

func (APIRequestEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("endpoint"),
		index.Fields("success"),
	}
}
