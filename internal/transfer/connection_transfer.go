package transfer

type ConnectRequest struct {
	Platform   string `json:"platform"`
	SourceType string `json:"source_type"`
	SourceID   string `json:"source_id"`
}

type MediaUploadRequest struct {
	URL        string `json:"url"`
	Provenance string `json:"provenance,omitempty"`
}
