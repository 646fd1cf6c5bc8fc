package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// AuthToken holds the bearer token of the signed-in user. The table has at
// most one row.
type AuthToken struct {
	ent.Schema
}

func (AuthToken) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id").
			Comment("Always 1"),
		field.Text("token"),
		field.String("username").
			Default(""),
		field.Time("saved_at").
			Default(time.Now),
	}
}
