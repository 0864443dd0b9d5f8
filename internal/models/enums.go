package models

type TreeStatus string

const (
	TreeAlive   TreeStatus = "Alive"
	TreeDead    TreeStatus = "Dead"
	TreeAdopted TreeStatus = "Adopted"
)

type TreeStage string

const (
	StageSeedling   TreeStage = "Seedling"
	StageSapling    TreeStage = "Sapling"
	StageYoungTree  TreeStage = "Young Tree"
	StageMatureTree TreeStage = "Mature Tree"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// IngestionState tracks a submission through the ingestion pipeline.
// Transitions are strictly forward: AwaitingSubmission -> Validated ->
// Deduplicated -> Persisted.
type IngestionState string

const (
	StateAwaitingSubmission IngestionState = "awaiting_submission"
	StateValidated          IngestionState = "validated"
	StateDeduplicated       IngestionState = "deduplicated"
	StatePersisted          IngestionState = "persisted"
)
