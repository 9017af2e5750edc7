// Package gnucash reads the XML serialization of a GnuCash ledger into an
// immutable in-memory snapshot: the account hierarchy and all transactions
// with their splits.
package gnucash

import (
	"bufio"
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/gnucash-go/greport/lib/common/compare"
	"github.com/gnucash-go/greport/lib/common/date"
)

// Account is one account of the ledger.
type Account struct {
	GUID        string
	Name        string
	Parent      string
	Type        string
	Placeholder bool
	Hidden      bool
}

// IsIE reports whether this is an income or expense account.
func (a *Account) IsIE() bool {
	return a.Type == "INCOME" || a.Type == "EXPENSE"
}

// Split is one account-tagged signed amount within a transaction.
type Split struct {
	Account string
	Amount  decimal.Decimal
}

// Transaction is a dated set of splits. The splits are trusted to
// balance; the engine does not re-verify double-entry invariants.
type Transaction struct {
	Date        time.Time
	Description string
	Notes       string
	Splits      []Split
}

// Open reads a ledger file, transparently detecting gzip compression.
func Open(path string) (_ *Ledger, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	l, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("cannot parse ledger %s: %w", path, err)
	}
	return l, nil
}

// Read reads a ledger from r, which may be gzip-compressed.
func Read(r *bufio.Reader) (*Ledger, error) {
	magic, err := r.Peek(2)
	if err != nil {
		return nil, err
	}
	var src io.Reader = r
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		src = gz
	}
	var doc document
	if err := xml.NewDecoder(src).Decode(&doc); err != nil {
		return nil, err
	}
	return newLedger(doc)
}

// The decoder matches on local element names; the gnc/act/trn/split
// namespace prefixes of the GnuCash schema are not distinguished.
type document struct {
	XMLName xml.Name `xml:"gnc-v2"`
	Books   []book   `xml:"book"`
}

type book struct {
	Accounts     []xmlAccount     `xml:"account"`
	Transactions []xmlTransaction `xml:"transaction"`
}

type xmlAccount struct {
	Name   string    `xml:"name"`
	ID     string    `xml:"id"`
	Type   string    `xml:"type"`
	Parent string    `xml:"parent"`
	Slots  []xmlSlot `xml:"slots>slot"`
}

type xmlSlot struct {
	Key   string `xml:"key"`
	Value string `xml:"value"`
}

type xmlTransaction struct {
	Date        string     `xml:"date-posted>date"`
	Description string     `xml:"description"`
	Notes       string     `xml:"notes"`
	Splits      []xmlSplit `xml:"splits>split"`
}

type xmlSplit struct {
	Value   string `xml:"value"`
	Account string `xml:"account"`
}

func newLedger(doc document) (*Ledger, error) {
	l := &Ledger{
		accounts: make(map[string]*Account),
		children: make(map[string][]string),
		desc:     make(map[string][]string),
	}
	for _, b := range doc.Books {
		for _, xa := range b.Accounts {
			if xa.ID == "" {
				return nil, fmt.Errorf("account %q has no guid", xa.Name)
			}
			a := &Account{
				GUID:   xa.ID,
				Name:   xa.Name,
				Parent: xa.Parent,
				Type:   xa.Type,
			}
			for _, s := range xa.Slots {
				switch s.Key {
				case "placeholder":
					a.Placeholder = s.Value == "true"
				case "hidden":
					a.Hidden = s.Value == "true"
				}
			}
			l.accounts[a.GUID] = a
		}
		for _, xt := range b.Transactions {
			t, err := newTransaction(xt)
			if err != nil {
				return nil, err
			}
			l.transactions = append(l.transactions, t)
		}
	}
	for guid, a := range l.accounts {
		if a.Parent != "" {
			l.children[a.Parent] = append(l.children[a.Parent], guid)
		}
	}
	for _, children := range l.children {
		compare.Sort(children, l.compareByName())
	}
	if err := l.checkAcyclic(); err != nil {
		return nil, err
	}
	return l, nil
}

func newTransaction(xt xmlTransaction) (*Transaction, error) {
	d, err := parseDate(xt.Date)
	if err != nil {
		return nil, err
	}
	t := &Transaction{
		Date:        d,
		Description: xt.Description,
		Notes:       xt.Notes,
	}
	for _, xs := range xt.Splits {
		v, err := parseValue(xs.Value)
		if err != nil {
			return nil, err
		}
		t.Splits = append(t.Splits, Split{Account: xs.Account, Amount: v})
	}
	return t, nil
}

// parseDate parses a GnuCash timestamp such as
// "2025-01-15 00:00:00 -0600", ignoring time and zone.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	t, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return date.Date(t.Year(), t.Month(), t.Day()), nil
}

// parseValue parses a GnuCash fractional value such as "12345/100".
func parseValue(s string) (decimal.Decimal, error) {
	num, denom, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return decimal.Zero, fmt.Errorf("invalid value %q", s)
	}
	n, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid value %q: %w", s, err)
	}
	d, err := decimal.NewFromString(denom)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid value %q: %w", s, err)
	}
	if d.IsZero() {
		return decimal.Zero, fmt.Errorf("invalid value %q: zero denominator", s)
	}
	return n.Div(d).Round(2), nil
}
