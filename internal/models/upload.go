package models

// UploadResult describes an audio file that has already been stored.
type UploadResult struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Key  string `json:"key"`
	URL  string `json:"url"`
}

// Transcription is the speech-to-text output, passed through unchanged.
type Transcription struct {
	Text string `json:"text"`
}
