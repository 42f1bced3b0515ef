package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Conversation holds the schema definition for the Conversation entity.
// A Conversation is the container for one deliberation (and, for the
// superchat method, the chain of follow-up turns that extend it). Its id
// is the numeric primary key ent assigns by default — monotonic per
// table, matching §3's "numeric id" requirement.
type Conversation struct {
	ent.Schema
}

// Fields of the Conversation.
func (Conversation) Fields() []ent.Field {
	return []ent.Field{
		field.String("owner_id").
			Immutable().
			Comment("Identity of the requesting caller"),
		field.Enum("method").
			Values("dag", "ensemble", "dxo", "superchat").
			Immutable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Float("total_cost").
			Default(0).
			Comment("Derived aggregate; recomputed from node actual_cost, never written directly by a client"),
		field.Time("deleted_at").
			Optional().
			Nillable().
			Comment("Set by the retention cleanup loop; soft-deleted conversations are excluded from history listings"),
	}
}

// Edges of the Conversation.
func (Conversation) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("nodes", Node.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the Conversation.
func (Conversation) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("owner_id"),
		index.Fields("method"),
	}
}
