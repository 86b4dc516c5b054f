package domain

// Counter column identifiers understood by the interaction store. Each is a
// DynamoDB ADD counter: commutative increments, auto-initialized to zero, safe
// under concurrent uncoordinated writers.
const (
	CounterView   = "view_count"
	CounterLike   = "like_count"
	CounterSearch = "search_count"
)

// InteractionCounter tracks UserID's engagement history with TargetUserID.
type InteractionCounter struct {
	UserID       string `json:"user_id" dynamodbav:"user_id"`
	TargetUserID string `json:"target_user_id" dynamodbav:"target_user_id"`
	ViewCount    int64  `json:"view_count" dynamodbav:"view_count"`
	LikeCount    int64  `json:"like_count" dynamodbav:"like_count"`
	SearchCount  int64  `json:"search_count" dynamodbav:"search_count"`
}

// InteractionMeta is the companion record overwritten on every interaction.
// It is written separately from the counter; a crash between the two writes
// can leave them out of step.
type InteractionMeta struct {
	UserID            string `json:"user_id" dynamodbav:"user_id"`
	TargetUserID      string `json:"target_user_id" dynamodbav:"target_user_id"`
	LastInteractionAt int64  `json:"last_interaction_at" dynamodbav:"last_interaction_at"` // epoch millis
}
