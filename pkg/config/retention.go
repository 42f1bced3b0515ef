package config

import "time"

// RetentionConfig controls the background cleanup loop: how long
// conversations are kept and how often expired upload-staging tokens are
// purged.
type RetentionConfig struct {
	// ConversationRetentionDays is how many days to keep a conversation
	// after creation before it is soft-deleted.
	ConversationRetentionDays int `yaml:"conversation_retention_days" validate:"min=1"`

	// CleanupInterval is how often the cleanup loop runs.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// DefaultRetentionConfig returns the built-in retention defaults.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		ConversationRetentionDays: 90,
		CleanupInterval:           1 * time.Hour,
	}
}
