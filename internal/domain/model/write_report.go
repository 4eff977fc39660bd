package model

import "sqs-output/pkg/sqs"

// WriteReport summarizes the delivery of one chunk
type WriteReport struct {
	// Records is the number of records in the chunk
	Records int `json:"records"`
	// Batches is the number of planned batches
	Batches int `json:"batches"`
	// Sent is the number of batches handed to SQS, fully or in part
	Sent int `json:"sent"`
	// Rejected lists the records dropped for exceeding the batch byte limit
	Rejected []sqs.Rejection `json:"rejected"`
	// Results holds the per-batch outcome of every batch sent
	Results []sqs.BatchResult `json:"results"`
}

// RejectedCount returns the number of dropped records
func (r *WriteReport) RejectedCount() int {
	return len(r.Rejected)
}

// FailedEntries returns the number of entries SQS refused individually
func (r *WriteReport) FailedEntries() int {
	failed := 0
	for _, result := range r.Results {
		failed += len(result.Failed)
	}
	return failed
}

// Delivered returns the number of entries SQS accepted
func (r *WriteReport) Delivered() int {
	delivered := 0
	for _, result := range r.Results {
		delivered += len(result.Successful)
	}
	return delivered
}
