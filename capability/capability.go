// Package capability defines the static vocabulary of task types and
// capability tiers used throughout the router. The mapping from task type to
// minimum tier is configuration baked at compile time, not runtime state.
package capability

// Tier classifies the model strength of an inference endpoint on a coarse,
// totally ordered scale. The embedding tier sits outside the ordering: it is
// reserved for embedding-only endpoints and only satisfies itself.
type Tier string

const (
	TierAny       Tier = "any"
	TierTiny      Tier = "tiny"
	TierSmall     Tier = "small"
	TierMedium    Tier = "medium"
	TierFrontier  Tier = "frontier"
	TierEmbedding Tier = "embedding"
)

// tierRank orders the comparable tiers. Embedding is deliberately absent.
var tierRank = map[Tier]int{
	TierAny:      0,
	TierTiny:     1,
	TierSmall:    2,
	TierMedium:   3,
	TierFrontier: 4,
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	if t == TierEmbedding {
		return true
	}
	_, ok := tierRank[t]
	return ok
}

// Meets reports whether an endpoint of tier t satisfies the required tier.
// TierAny is satisfied by anything; TierEmbedding only meets TierEmbedding,
// and nothing else meets TierEmbedding.
func (t Tier) Meets(required Tier) bool {
	if required == TierAny {
		return true
	}
	if required == TierEmbedding || t == TierEmbedding {
		return t == required
	}
	tr, ok := tierRank[t]
	if !ok {
		return false
	}
	rr, ok := tierRank[required]
	if !ok {
		return false
	}
	return tr >= rr
}

// TaskType categorizes a unit of inference work the tutoring session needs.
// Values are stable strings so they can appear in routing table files.
type TaskType string

const (
	// TaskTutoringResponse is the full conversational turn answering the
	// learner. The quality ceiling of the whole product, so frontier only.
	TaskTutoringResponse TaskType = "tutoring_response"

	// TaskIntentClassification labels a user utterance (question, answer,
	// command, aside) so the session controller can branch.
	TaskIntentClassification TaskType = "intent_classification"

	// TaskAcknowledgment produces a short verbal filler ("mm-hm", "got it")
	// while the real response is generated.
	TaskAcknowledgment TaskType = "acknowledgment"

	// TaskHintGeneration produces a targeted hint for the current exercise.
	TaskHintGeneration TaskType = "hint_generation"

	// TaskSessionSummary condenses a finished session into study notes.
	TaskSessionSummary TaskType = "session_summary"

	// TaskContentEmbedding embeds curriculum content for retrieval.
	TaskContentEmbedding TaskType = "content_embedding"

	// TaskTranscriptCleanup repairs ASR artifacts in a raw transcript before
	// it reaches the main model.
	TaskTranscriptCleanup TaskType = "transcript_cleanup"
)

// Requirement captures the static routing constraints of a task type.
type Requirement struct {
	// MinTier is the weakest endpoint tier that should be asked to perform
	// this task. Advisory at resolution time; see routing.Router.
	MinTier Tier

	// AllowsPregenerated is true when the task may be satisfied from
	// pre-generated content (e.g. cached TTS acknowledgments) instead of a
	// live inference call.
	AllowsPregenerated bool
}

var requirements = map[TaskType]Requirement{
	TaskTutoringResponse:     {MinTier: TierFrontier},
	TaskIntentClassification: {MinTier: TierTiny},
	TaskAcknowledgment:       {MinTier: TierAny, AllowsPregenerated: true},
	TaskHintGeneration:       {MinTier: TierMedium},
	TaskSessionSummary:       {MinTier: TierMedium},
	TaskContentEmbedding:     {MinTier: TierEmbedding},
	TaskTranscriptCleanup:    {MinTier: TierTiny},
}

// Requirements returns the static requirement for a task type. Unknown task
// types get the most conservative answer (frontier, no pregeneration) so a
// typo in configuration fails safe rather than routing to a weak endpoint.
func Requirements(t TaskType) Requirement {
	if req, ok := requirements[t]; ok {
		return req
	}
	return Requirement{MinTier: TierFrontier}
}

// Known reports whether t is part of the task vocabulary.
func Known(t TaskType) bool {
	_, ok := requirements[t]
	return ok
}

// TaskTypes returns the full task vocabulary in a stable order.
func TaskTypes() []TaskType {
	return []TaskType{
		TaskTutoringResponse,
		TaskIntentClassification,
		TaskAcknowledgment,
		TaskHintGeneration,
		TaskSessionSummary,
		TaskContentEmbedding,
		TaskTranscriptCleanup,
	}
}
