package queue

const (
	TypeBlogGenerate = "blog:generate"
)

// BlogGeneratePayload carries a finished transcription to the worker.
type BlogGeneratePayload struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}
