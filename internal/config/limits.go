package config

const (
	// MaxConversationTitleLength is the maximum length for conversation
	// titles. Limited to 200 to fit comfortably in list views.
	MaxConversationTitleLength = 200

	// MaxAgentNameLength is the maximum length for agent names.
	MaxAgentNameLength = 100

	// MaxResourceTitleLength is the maximum length for resource titles.
	MaxResourceTitleLength = 200

	// MaxDescriptionLength is the maximum length for agent and resource
	// descriptions.
	MaxDescriptionLength = 1000
)
