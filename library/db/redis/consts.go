package redis

const (
	keyPrefix = "lwow/"

	// KeyPrefixLookup prefixes cached association lookups.
	KeyPrefixLookup = keyPrefix + "lookup/"
	// KeyPrefixSession prefixes game sessions.
	KeyPrefixSession = keyPrefix + "session/"
	// KeyFeedbackQueue is the list feedback submissions are pushed onto.
	KeyFeedbackQueue = keyPrefix + "feedback/"

	// FeedbackQueueMaxLen bounds the feedback queue; older entries are dropped past it.
	FeedbackQueueMaxLen int64 = 100000
)
