package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Attachment holds the schema definition for the Attachment entity: a
// binary blob bound to exactly one node. Deleting a node cascade-deletes
// its attachments (enforced via the Node->Attachment edge's OnDelete
// annotation, not here).
type Attachment struct {
	ent.Schema
}

// Fields of the Attachment.
func (Attachment) Fields() []ent.Field {
	return []ent.Field{
		field.Int("node_id").
			Immutable(),
		field.String("filename").
			Immutable(),
		field.Enum("file_type").
			Values("image", "pdf", "audio", "video", "text", "file").
			Immutable(),
		field.String("mime_type").
			Immutable(),
		field.Int64("file_size").
			Immutable().
			Comment("Bytes; must equal len(file_data) and not exceed the per-type limit"),
		field.Bytes("file_data").
			Immutable().
			Sensitive(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the Attachment.
func (Attachment) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("node", Node.Type).
			Ref("attachments").
			Field("node_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the Attachment.
func (Attachment) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("node_id"),
	}
}
