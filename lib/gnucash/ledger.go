package gnucash

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gnucash-go/greport/lib/common/compare"
	"github.com/gnucash-go/greport/lib/common/dict"
	"github.com/gnucash-go/greport/lib/common/set"
)

// ErrCycle indicates a cycle in the account parent graph.
var ErrCycle = errors.New("cycle in account hierarchy")

// NotFoundError indicates an unknown account guid.
type NotFoundError struct {
	GUID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("account not found: %s", e.GUID)
}

// Ledger is a read-only snapshot of a GnuCash file. It indexes the
// account tree by guid and memoizes transitive descendant sets.
type Ledger struct {
	accounts     map[string]*Account
	children     map[string][]string
	transactions []*Transaction

	desc map[string][]string
}

// Account looks up an account by guid.
func (l *Ledger) Account(guid string) (*Account, bool) {
	a, ok := l.accounts[guid]
	return a, ok
}

// NumAccounts returns the number of accounts.
func (l *Ledger) NumAccounts() int {
	return len(l.accounts)
}

// Transactions returns all transactions in file order.
func (l *Ledger) Transactions() []*Transaction {
	return l.transactions
}

// Children returns the guids of the direct children of the given
// account, ordered by account name.
func (l *Ledger) Children(guid string) []string {
	return l.children[guid]
}

// Roots returns the guids of all accounts without a known parent,
// ordered by account name.
func (l *Ledger) Roots() []string {
	var res []string
	for guid, a := range l.accounts {
		if a.Parent == "" {
			res = append(res, guid)
		}
	}
	compare.Sort(res, l.compareByName())
	return res
}

// compareByName orders account guids by name, breaking ties by guid.
func (l *Ledger) compareByName() compare.Compare[string] {
	return compare.Combine(
		func(g1, g2 string) compare.Order {
			return compare.Ordered(l.accounts[g1].Name, l.accounts[g2].Name)
		},
		compare.Ordered[string],
	)
}

// Descendants returns the given account and all of its transitive
// descendants. The result is memoized per account.
func (l *Ledger) Descendants(guid string) ([]string, error) {
	if _, ok := l.accounts[guid]; !ok {
		return nil, NotFoundError{GUID: guid}
	}
	if ds, ok := l.desc[guid]; ok {
		return ds, nil
	}
	res := []string{guid}
	for _, ch := range l.children[guid] {
		ds, err := l.Descendants(ch)
		if err != nil {
			return nil, err
		}
		res = append(res, ds...)
	}
	l.desc[guid] = res
	return res, nil
}

// checkAcyclic rejects ledgers whose parent graph contains a cycle.
// Such a graph would make descendant resolution nonterminating.
func (l *Ledger) checkAcyclic() error {
	safe := set.New[string]()
	for _, guid := range dict.SortedKeys(l.accounts, compare.Ordered[string]) {
		onPath := set.New[string]()
		for cur := guid; cur != "" && !safe.Has(cur); {
			if onPath.Has(cur) {
				return fmt.Errorf("%w: account %s is its own ancestor", ErrCycle, cur)
			}
			onPath.Add(cur)
			a, ok := l.accounts[cur]
			if !ok {
				break
			}
			cur = a.Parent
		}
		for _, g := range onPath.Slice() {
			safe.Add(g)
		}
	}
	return nil
}

// NameFormat determines how account names are displayed.
type NameFormat int

const (
	// NameOnly displays the short account name.
	NameOnly NameFormat = iota
	// FullPath displays the colon-separated path below the root.
	FullPath
)

// DisplayName returns the account name formatted per f. The top-level
// root account is omitted from full paths.
func (l *Ledger) DisplayName(guid string, f NameFormat) string {
	a, ok := l.accounts[guid]
	if !ok {
		return fmt.Sprintf("<unknown account %s>", guid)
	}
	if f == NameOnly {
		return a.Name
	}
	segments := []string{a.Name}
	for cur := a; cur.Parent != ""; {
		parent, ok := l.accounts[cur.Parent]
		if !ok {
			break
		}
		if parent.Parent != "" {
			segments = append([]string{parent.Name}, segments...)
		}
		cur = parent
	}
	return strings.Join(segments, ":")
}
