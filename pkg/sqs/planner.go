package sqs

import "fmt"

// Rejection describes a record left out of every batch
type Rejection struct {
	// Index is the position of the record in the planned input
	Index int
	// Size is the record body size in bytes
	Size int
	// Preview holds the first bytes of the payload
	Preview string
	// Reason is a human readable explanation
	Reason string
}

// Plan is the outcome of splitting a chunk of records into send batches
type Plan struct {
	Batches  []Batch
	Rejected []Rejection
}

// Entries returns the total number of planned entries
func (p Plan) Entries() int {
	total := 0
	for _, batch := range p.Batches {
		total += batch.Len()
	}
	return total
}

// Empty reports whether nothing needs to be sent
func (p Plan) Empty() bool {
	return len(p.Batches) == 0
}

// PlanBatches splits serialized records into batches that satisfy the
// SendMessageBatch limits, keeping input order.
//
// A record closes the open batch when adding it would exceed MaxBatchEntries
// entries or MaxBatchBytes bytes. A record whose body alone exceeds
// MaxBatchBytes is then rejected and never counted toward the new batch.
func PlanBatches(records [][]byte, opts EntryOptions) Plan {
	plan := Plan{}
	current := Batch{}

	closeCurrent := func() {
		if current.Len() > 0 {
			plan.Batches = append(plan.Batches, current)
		}
		current = Batch{}
	}

	for i, body := range records {
		size := len(body)

		if current.Len()+1 > MaxBatchEntries || current.Bytes+size > MaxBatchBytes {
			closeCurrent()
		}

		if size > MaxBatchBytes {
			plan.Rejected = append(plan.Rejected, Rejection{
				Index:   i,
				Size:    size,
				Preview: preview(body),
				Reason:  fmt.Sprintf("payload exceeds %d bytes", MaxBatchBytes),
			})
			continue
		}

		current.Entries = append(current.Entries, SendEntry{
			ID:           newEntryID(opts.IDPrefix),
			Body:         body,
			DelaySeconds: opts.DelaySeconds,
			GroupID:      opts.GroupID,
		})
		current.Bytes += size
	}
	closeCurrent()

	return plan
}
