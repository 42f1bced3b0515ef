package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Node holds the schema definition for the Node (reasoning artifact) entity.
// Nodes form a tree per conversation via parent_id: a node has
// parent_id == nil iff it is type "root" and the first node of its
// conversation (invariant §3-1). The parent graph is acyclic by
// construction — nodes only ever created pointing at an already-persisted
// parent. The id field is left to ent's default auto-incrementing
// integer, which is what gives us the strictly-monotonic-per-store
// ordering §5 requires for list_nodes.
type Node struct {
	ent.Schema
}

// Fields of the Node.
func (Node) Fields() []ent.Field {
	return []ent.Field{
		field.Int("conversation_id").
			Immutable(),
		field.Int("parent_id").
			Optional().
			Nillable().
			Immutable().
			Comment("Self-referential within the same conversation; nil only for the first root node"),
		field.Enum("type").
			Values("root", "user_turn", "plan", "research", "critique", "synthesis",
				"proposal", "refinement", "test_cases", "verdict").
			Immutable().
			Comment("user_turn is a SuperChat follow-up input node; root is reserved for the first node of a conversation"),
		field.Text("content"),
		field.String("model_name").
			Comment(`LLM identifier, or the literal "user"/"system"`),
		field.Text("prompt_sent").
			Optional().
			Comment("Exact prompt text used for this call, for auditability"),
		field.String("attachment_filenames").
			Optional().
			Comment("Comma-joined manifest of inherited attachments"),
		field.Float("actual_cost").
			Default(0).
			Comment("USD, non-negative"),
		field.JSON("warnings", []string{}).
			Optional().
			Comment("Capability warnings raised by the gateway adapter for this call"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the Node.
func (Node) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("conversation", Conversation.Type).
			Ref("nodes").
			Field("conversation_id").
			Unique().
			Required().
			Immutable(),
		edge.To("attachments", Attachment.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the Node.
func (Node) Indexes() []ent.Index {
	return []ent.Index{
		// Creation-order listing per conversation (id is monotonic).
		index.Fields("conversation_id", "id"),
		index.Fields("parent_id"),
		index.Fields("conversation_id", "type"),
	}
}
