package types

type KYCStatusPayload struct {
	KYCID     string `json:"id"`
	Status    string `json:"status"`
	Remarks   string `json:"remarks"`
	UpdatedAt string `json:"updatedAt"`
}

type ApproveKYCRequest struct {
	Approved bool   `json:"approved"`
	Remarks  string `json:"remarks,omitempty"`
}

type CaseAttachmentPayload struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
}

type CaseTimelineEventPayload struct {
	ID          string                  `json:"id"`
	Type        string                  `json:"type"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Status      string                  `json:"status"`
	CreatedAt   string                  `json:"createdAt"`
	Attachments []CaseAttachmentPayload `json:"attachments"`
}
