package api

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// CreateContentRequest is the body of POST /content. Title, Category and
// FileName are required.
type CreateContentRequest struct {
	Title             string `json:"title"`
	Description       string `json:"description,omitempty"`
	Category          string `json:"category"`
	Featured          bool   `json:"featured,omitempty"`
	Thumbnail         string `json:"thumbnail,omitempty"`
	ThumbnailFileName string `json:"thumbnailFileName,omitempty"`
	FileName          string `json:"fileName"`
	FileSize          int64  `json:"fileSize,omitempty"`
	Source            string `json:"source,omitempty"`
}

type UploadTargetResponse struct {
	UploadURL          string `json:"uploadUrl"`
	AuthorizationToken string `json:"authorizationToken"`
}

type AnalyticsResponse struct {
	TotalVideos int    `json:"totalVideos"`
	StorageUsed string `json:"storageUsed"`
}
