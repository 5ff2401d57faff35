package query

// Operation categories.
const (
	CategoryRead  = "read"
	CategoryWrite = "write"
)

// Classification is the approval policy decision for an operation kind.
type Classification struct {
	Category    string
	AutoExecute bool
}

// Classify maps an operation kind to its category and auto-execute
// eligibility. Classification is by kind alone: every insert/update/delete
// form requires approval regardless of its arguments. Treating a harmless
// write as approval-required is acceptable; auto-executing a write is not.
func Classify(kind Kind) Classification {
	switch kind {
	case KindFind, KindAggregate, KindCountDocuments:
		return Classification{Category: CategoryRead, AutoExecute: true}
	default:
		return Classification{Category: CategoryWrite, AutoExecute: false}
	}
}
