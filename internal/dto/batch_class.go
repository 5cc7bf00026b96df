package dto

// CreateBatchClassRequest schedules one subject/teacher session for a batch.
type CreateBatchClassRequest struct {
	BatchID   string `json:"batchId" validate:"required"`
	SubjectID string `json:"subjectId" validate:"required"`
	TeacherID string `json:"teacherId" validate:"required"`
	DayOfWeek string `json:"dayOfWeek" validate:"required"`
	TimeSlot  string `json:"timeSlot" validate:"required"`
}

// BulkBatchClassItem is one entry of a bulk scheduling request.
type BulkBatchClassItem struct {
	SubjectID string `json:"subjectId" validate:"required"`
	TeacherID string `json:"teacherId" validate:"required"`
	TimeSlot  string `json:"timeSlot" validate:"required"`
}

// CreateBatchClassesRequest schedules several sessions of a batch on one day.
type CreateBatchClassesRequest struct {
	BatchID   string               `json:"batchId" validate:"required"`
	DayOfWeek string               `json:"dayOfWeek" validate:"required"`
	Items     []BulkBatchClassItem `json:"items" validate:"required,min=1,max=64,dive"`
}

// BatchClassResult is returned by single create.
type BatchClassResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// BulkItemResult reports the outcome of one bulk item.
type BulkItemResult struct {
	Index     int    `json:"index"`
	SubjectID string `json:"subjectId"`
	TeacherID string `json:"teacherId"`
	TimeSlot  string `json:"timeSlot"`
	Success   bool   `json:"success"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	ID        string `json:"id,omitempty"`
}

// BulkBatchClassResult summarises a bulk request.
type BulkBatchClassResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Results []BulkItemResult `json:"results"`
}

// DeleteBatchClassResult reports a delete; Deleted is false when nothing existed.
type DeleteBatchClassResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Deleted bool   `json:"deleted"`
}
