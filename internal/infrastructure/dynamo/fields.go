package dynamo

// DynamoDB attribute names used in update expressions across the repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldUserID            = "user_id"
	fieldEntryKey          = "entry_key"
	fieldTargetUserID      = "target_user_id"
	fieldLastInteractionAt = "last_interaction_at"
)

// counterFields whitelists the attribute names accepted by
// InteractionRepo.Increment. Counter names are interpolated into an update
// expression, so anything outside this set is rejected.
var counterFields = map[string]struct{}{
	"view_count":   {},
	"like_count":   {},
	"search_count": {},
}
