package pool

import "github.com/ethereum/go-ethereum/common"

// PatchHoldings constructs a new holdings snapshot by applying a diff to a
// previous one. The previous snapshot is never mutated; every entry of the
// result owns its own memory.
func PatchHoldings(prev []AccountHoldings, diff HoldingsDiff) ([]AccountHoldings, error) {
	newByAccount := make(map[common.Address]AccountHoldings, len(prev))
	for _, h := range prev {
		newByAccount[h.Account] = h.DeepCopy()
	}

	for _, account := range diff.Deletions {
		delete(newByAccount, account)
	}
	for _, h := range diff.Updates {
		newByAccount[h.Account] = h.DeepCopy()
	}
	for _, h := range diff.Additions {
		newByAccount[h.Account] = h.DeepCopy()
	}

	final := make([]AccountHoldings, 0, len(newByAccount))
	for _, h := range newByAccount {
		final = append(final, h)
	}
	return final, nil
}

// PatchView applies a view diff to a previous pool view, returning a deep
// copy in both the changed and unchanged case so the result never shares
// memory with prev.
func PatchView(prev View, diff ViewDiff) (View, error) {
	if diff.Updated == nil {
		return prev.DeepCopy(), nil
	}
	return diff.Updated.DeepCopy(), nil
}
