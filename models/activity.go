package models

import "time"

// ActivityLogLimit caps every profile's embedded activity log.
const ActivityLogLimit = 100

type ActivityEntry struct {
	Action      string    `json:"action" bson:"action"`
	Description string    `json:"description" bson:"description"`
	TargetType  string    `json:"targetType,omitempty" bson:"targetType,omitempty"`
	TargetID    string    `json:"targetId,omitempty" bson:"targetId,omitempty"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
}

/*
* Put the new entry in front of the log
* Drop everything past the limit so the oldest entries go first
 */
func PrependActivity(log []ActivityEntry, entry ActivityEntry) []ActivityEntry {
	out := make([]ActivityEntry, 0, len(log)+1)
	out = append(out, entry)
	out = append(out, log...)
	if len(out) > ActivityLogLimit {
		out = out[:ActivityLogLimit]
	}
	return out
}
