package assign

import (
	"context"
	"fmt"
	"sync"

	"github.com/crewline/automation/pkg/template"
)

// RoundRobinStrategy cycles through the configured user_ids list. The cursor
// is keyed by the user list so distinct workflows rotate independently, and is
// process-local: a restart begins the rotation over, which is acceptable for
// load spreading.
type RoundRobinStrategy struct {
	mu      sync.Mutex
	cursors map[string]int
}

func NewRoundRobinStrategy() *RoundRobinStrategy {
	return &RoundRobinStrategy{cursors: make(map[string]int)}
}

func (s *RoundRobinStrategy) ID() string { return "round_robin" }

func (s *RoundRobinStrategy) Resolve(_ context.Context, config map[string]any, _ map[string]any) (string, error) {
	userIDs := stringSlice(config["user_ids"])
	if len(userIDs) == 0 {
		return "", fmt.Errorf("round_robin assignment requires a non-empty user_ids list")
	}

	key := fmt.Sprintf("%v", userIDs)

	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.cursors[key] % len(userIDs)
	s.cursors[key] = index + 1

	return userIDs[index], nil
}

// RecordOwnerStrategy assigns back to the record's owner.
type RecordOwnerStrategy struct{}

func NewRecordOwnerStrategy() *RecordOwnerStrategy { return &RecordOwnerStrategy{} }

func (s *RecordOwnerStrategy) ID() string { return "record_owner" }

func (s *RecordOwnerStrategy) Resolve(_ context.Context, _ map[string]any, data map[string]any) (string, error) {
	ownerID := template.Stringify(data["owner_id"])
	if ownerID == "" {
		return "", fmt.Errorf("record has no owner_id to assign to")
	}

	return ownerID, nil
}

// SpecificUserStrategy assigns the user named in the action config.
type SpecificUserStrategy struct{}

func NewSpecificUserStrategy() *SpecificUserStrategy { return &SpecificUserStrategy{} }

func (s *SpecificUserStrategy) ID() string { return "specific_user" }

func (s *SpecificUserStrategy) Resolve(_ context.Context, config map[string]any, _ map[string]any) (string, error) {
	userID, _ := config["user_id"].(string)
	if userID == "" {
		return "", fmt.Errorf("specific_user assignment requires user_id")
	}

	return userID, nil
}

func stringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				result = append(result, s)
			}
		}

		return result
	default:
		return nil
	}
}
