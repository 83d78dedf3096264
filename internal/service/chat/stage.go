package chat

// Stage names the step of a request the pipeline is in. Stages are used as
// span names and as the "stage" attribute of log records.
type Stage string

const (
	StageReceivingRequest    Stage = "ReceivingRequest"
	StageFetchingEmbedding   Stage = "FetchingEmbedding"
	StageRetrievingDocuments Stage = "RetrievingDocuments"
	StageAssemblingContext   Stage = "AssemblingContext"
	StageGeneratingAnswer    Stage = "GeneratingAnswer"
	StageRespondingSuccess   Stage = "RespondingSuccess"
	StageRespondingError     Stage = "RespondingError"
)

func (s Stage) String() string {
	return string(s)
}
