package pool

import "github.com/ethereum/go-ethereum/common"

// --- Diff Structures with Helper Methods ---

// HoldingsDiff summarizes the account-level changes between two holdings
// snapshots.
type HoldingsDiff struct {
	Additions []AccountHoldings `json:"additions,omitempty"`
	Updates   []AccountHoldings `json:"updates,omitempty"`
	Deletions []common.Address  `json:"deletions,omitempty"`
}

// IsEmpty returns true if the diff contains no changes.
func (d HoldingsDiff) IsEmpty() bool {
	return len(d.Additions) == 0 && len(d.Updates) == 0 && len(d.Deletions) == 0
}

// ViewDiff carries the replacement pool view when the totals changed.
// Updated is nil for a no-op diff.
type ViewDiff struct {
	Updated *View `json:"updated,omitempty"`
}

// IsEmpty returns true if the diff contains no changes.
func (d ViewDiff) IsEmpty() bool {
	return d.Updated == nil
}

// DiffHoldings calculates the difference between two holdings snapshots.
// The logic follows the standard pattern for diffing lists of keyed objects:
// both lists are converted to maps for O(1) lookups, the new map yields
// additions and updates, and the old map yields deletions.
func DiffHoldings(old, new []AccountHoldings) HoldingsDiff {
	oldByAccount := make(map[common.Address]AccountHoldings, len(old))
	for _, h := range old {
		oldByAccount[h.Account] = h
	}

	newByAccount := make(map[common.Address]AccountHoldings, len(new))
	for _, h := range new {
		newByAccount[h.Account] = h
	}

	var additions []AccountHoldings
	var updates []AccountHoldings
	var deletions []common.Address

	for account, newHoldings := range newByAccount {
		oldHoldings, exists := oldByAccount[account]
		if !exists {
			additions = append(additions, newHoldings)
		} else if !oldHoldings.Equal(newHoldings) {
			updates = append(updates, newHoldings)
		}
	}

	for account := range oldByAccount {
		if _, exists := newByAccount[account]; !exists {
			deletions = append(deletions, account)
		}
	}

	return HoldingsDiff{
		Additions: additions,
		Updates:   updates,
		Deletions: deletions,
	}
}

// DiffView compares two pool views. Because the pool is a singleton
// aggregate, the diff is the whole new view whenever any total or the fee
// parameter changed.
func DiffView(old, new View) ViewDiff {
	if old.TotalToken1.Cmp(new.TotalToken1) == 0 &&
		old.TotalToken2.Cmp(new.TotalToken2) == 0 &&
		old.TotalShares.Cmp(new.TotalShares) == 0 &&
		old.FeeBps == new.FeeBps {
		return ViewDiff{}
	}
	updated := new.DeepCopy()
	return ViewDiff{Updated: &updated}
}
