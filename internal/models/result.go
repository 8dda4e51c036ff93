package models

// MIME types accepted for CV uploads.
const (
	MIMETypePDF  = "application/pdf"
	MIMETypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMETypeText = "text/plain"
)

var AllowedMIMETypes = []string{MIMETypePDF, MIMETypeDOCX, MIMETypeText}

// ExtensionMIMETypes maps the accepted file extensions to their MIME type.
var ExtensionMIMETypes = map[string]string{
	".pdf":  MIMETypePDF,
	".docx": MIMETypeDOCX,
	".txt":  MIMETypeText,
}

type UploadResponse struct {
	ID       string          `json:"id"`
	Filename string          `json:"filename,omitempty"`
	Result   *AnalysisReport `json:"result,omitempty"`
}

type CriteriaPayload struct {
	Criteria string `json:"criteria"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}
