package metadata

import "fmt"

type BatchStatus string

const (
	BatchStatusReserved  BatchStatus = "reserved"
	BatchStatusCompleted BatchStatus = "completed"
)

func NewBatchStatus(value string) (BatchStatus, error) {
	status := BatchStatus(value)
	if !status.isValid() {
		return "", fmt.Errorf("invalid status: %s", value)
	}
	return status, nil
}

func (s BatchStatus) isValid() bool {
	switch s {
	case BatchStatusReserved, BatchStatusCompleted:
		return true
	default:
		return false
	}
}
