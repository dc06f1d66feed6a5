package dto

// ReportQuery holds the /reports query string.
type ReportQuery struct {
	From        string `form:"from"`
	To          string `form:"to"`
	Branch      string `form:"branch"`
	CounselorID string `form:"counselorId"`
	Format      string `form:"format"`
}

// UploadResponse is returned by the profile picture upload.
type UploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}
