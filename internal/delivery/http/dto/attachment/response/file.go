package response

type FileResponse struct {
	FileID string `json:"file_id"`
	Ref    string `json:"ref"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
