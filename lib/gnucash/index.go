package gnucash

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/shopspring/decimal"

	"github.com/gnucash-go/greport/lib/common/compare"
	"github.com/gnucash-go/greport/lib/common/date"
	"github.com/gnucash-go/greport/lib/common/dict"
	"github.com/gnucash-go/greport/lib/common/set"
)

// entry is one split as seen from its owning account: the signed
// amount, the posting date, the searchable transaction text and the
// guids of every account the transaction touches.
type entry struct {
	date     time.Time
	amount   decimal.Decimal
	text     string
	accounts set.Set[string]
}

// Index holds the per-account split entries. It is built in exactly
// one pass over all transactions and never mutated afterwards.
type Index struct {
	ledger  *Ledger
	entries map[string][]entry
}

// BuildIndex builds the index for the given ledger. If progress is
// not nil, a progress bar is rendered to it while scanning.
func BuildIndex(l *Ledger, progress io.Writer) *Index {
	idx := &Index{
		ledger:  l,
		entries: make(map[string][]entry),
	}
	var bar *pb.ProgressBar
	if progress != nil {
		bar = pb.New(len(l.transactions)).SetWriter(progress).Start()
	}
	for _, t := range l.transactions {
		touched := set.New[string]()
		for _, s := range t.Splits {
			touched.Add(s.Account)
		}
		text := t.Description + " " + t.Notes
		for _, s := range t.Splits {
			idx.entries[s.Account] = append(idx.entries[s.Account], entry{
				date:     t.Date,
				amount:   s.Amount,
				text:     text,
				accounts: touched,
			})
		}
		if bar != nil {
			bar.Increment()
		}
	}
	if bar != nil {
		bar.Finish()
	}
	return idx
}

// Lookup returns the signed sum of the account's split amounts within
// the period. If filter is non-empty, only transactions which also
// touch the filter account are counted. If pred is non-nil, only
// transactions whose text satisfies it are counted.
func (idx *Index) Lookup(guid string, period date.Period, filter string, pred *Predicate) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range idx.entries[guid] {
		if !period.Contains(e.date) {
			continue
		}
		if filter != "" && !e.accounts.Has(filter) {
			continue
		}
		if pred != nil && !pred.Match(e.text) {
			continue
		}
		sum = sum.Add(e.amount)
	}
	return sum
}

// Sum aggregates Lookup over the account and its transitive
// descendants. It fails if the guid is unknown.
func (idx *Index) Sum(guid string, period date.Period, filter string, pred *Predicate) (decimal.Decimal, error) {
	guids, err := idx.ledger.Descendants(guid)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, g := range guids {
		sum = sum.Add(idx.Lookup(g, period, filter, pred))
	}
	return sum, nil
}

// Accounts returns the guids of all accounts with at least one entry.
func (idx *Index) Accounts() []string {
	return dict.SortedKeys(idx.entries, compare.Ordered[string])
}

// Predicate is a compiled text filter over transaction descriptions
// and notes. A text matches if every include pattern matches and no
// exclude pattern does. Matching is case-insensitive.
type Predicate struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

// CompilePredicate compiles the include and exclude patterns.
func CompilePredicate(include, exclude []string) (*Predicate, error) {
	if len(include) == 0 && len(exclude) == 0 {
		return nil, nil
	}
	p := new(Predicate)
	for _, s := range include {
		rx, err := compileCI(s)
		if err != nil {
			return nil, err
		}
		p.include = append(p.include, rx)
	}
	for _, s := range exclude {
		rx, err := compileCI(s)
		if err != nil {
			return nil, err
		}
		p.exclude = append(p.exclude, rx)
	}
	return p, nil
}

func compileCI(pattern string) (*regexp.Regexp, error) {
	rx, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return rx, nil
}

// Match tests the predicate against the given text.
func (p *Predicate) Match(text string) bool {
	for _, rx := range p.exclude {
		if rx.MatchString(text) {
			return false
		}
	}
	for _, rx := range p.include {
		if !rx.MatchString(text) {
			return false
		}
	}
	return true
}

func (p *Predicate) String() string {
	var parts []string
	for _, rx := range p.include {
		parts = append(parts, strings.TrimPrefix(rx.String(), "(?i)"))
	}
	for _, rx := range p.exclude {
		parts = append(parts, "-"+strings.TrimPrefix(rx.String(), "(?i)"))
	}
	return strings.Join(parts, " ")
}
