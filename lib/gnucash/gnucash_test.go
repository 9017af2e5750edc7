package gnucash

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnucash-go/greport/lib/common/date"
)

var (
	guidRoot     = strings.Repeat("a", 32)
	guidAssets   = strings.Repeat("b", 32)
	guidBank     = strings.Repeat("c", 32)
	guidIncome   = strings.Repeat("d", 32)
	guidSalary   = strings.Repeat("e", 32)
	guidExpenses = strings.Repeat("f", 32)
)

func account(guid, name, parent, typ string, slots string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<gnc:account version=\"2.0.0\">")
	fmt.Fprintf(&b, "<act:name>%s</act:name>", name)
	fmt.Fprintf(&b, "<act:id type=\"guid\">%s</act:id>", guid)
	fmt.Fprintf(&b, "<act:type>%s</act:type>", typ)
	if parent != "" {
		fmt.Fprintf(&b, "<act:parent type=\"guid\">%s</act:parent>", parent)
	}
	if slots != "" {
		fmt.Fprintf(&b, "<act:slots>%s</act:slots>", slots)
	}
	fmt.Fprintf(&b, "</gnc:account>")
	return b.String()
}

func slot(key, value string) string {
	return fmt.Sprintf("<slot><slot:key>%s</slot:key><slot:value type=\"string\">%s</slot:value></slot>", key, value)
}

func transaction(day, description, notes string, splits ...[2]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<gnc:transaction version=\"2.0.0\">")
	fmt.Fprintf(&b, "<trn:date-posted><ts:date>%s 00:00:00 +0000</ts:date></trn:date-posted>", day)
	fmt.Fprintf(&b, "<trn:description>%s</trn:description>", description)
	if notes != "" {
		fmt.Fprintf(&b, "<trn:notes>%s</trn:notes>", notes)
	}
	fmt.Fprintf(&b, "<trn:splits>")
	for _, s := range splits {
		fmt.Fprintf(&b, "<trn:split><split:value>%s</split:value><split:account type=\"guid\">%s</split:account></trn:split>", s[1], s[0])
	}
	fmt.Fprintf(&b, "</trn:splits></gnc:transaction>")
	return b.String()
}

func ledgerXML(body ...string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<gnc-v2 xmlns:gnc="http://www.gnucash.org/XML/gnc"
        xmlns:act="http://www.gnucash.org/XML/act"
        xmlns:trn="http://www.gnucash.org/XML/trn"
        xmlns:ts="http://www.gnucash.org/XML/ts"
        xmlns:split="http://www.gnucash.org/XML/split"
        xmlns:slot="http://www.gnucash.org/XML/slot">
<gnc:book version="2.0.0">
` + strings.Join(body, "\n") + `
</gnc:book>
</gnc-v2>`
}

func testLedgerXML() string {
	return ledgerXML(
		account(guidRoot, "Root Account", "", "ROOT", ""),
		account(guidAssets, "Assets", guidRoot, "ASSET", slot("placeholder", "true")),
		account(guidBank, "Bank", guidAssets, "ASSET", ""),
		account(guidIncome, "Income", guidRoot, "INCOME", ""),
		account(guidSalary, "Salary", guidIncome, "INCOME", slot("hidden", "true")),
		account(guidExpenses, "Expenses", guidRoot, "EXPENSE", ""),
		transaction("2025-01-15", "Acme payroll", "january",
			[2]string{guidBank, "10000/100"}, [2]string{guidSalary, "-10000/100"}),
		transaction("2025-02-10", "Acme bonus", "",
			[2]string{guidBank, "5000/100"}, [2]string{guidSalary, "-5000/100"}),
		transaction("2025-02-20", "Groceries", "",
			[2]string{guidExpenses, "3000/100"}, [2]string{guidBank, "-3000/100"}),
	)
}

func readLedger(t *testing.T, xml string) *Ledger {
	t.Helper()
	l, err := Read(bufio.NewReader(strings.NewReader(xml)))
	require.NoError(t, err)
	return l
}

func TestRead(t *testing.T) {
	l := readLedger(t, testLedgerXML())

	require.Equal(t, 6, l.NumAccounts())
	assets, ok := l.Account(guidAssets)
	require.True(t, ok)
	assert.Equal(t, "Assets", assets.Name)
	assert.Equal(t, guidRoot, assets.Parent)
	assert.True(t, assets.Placeholder)
	assert.False(t, assets.Hidden)

	salary, ok := l.Account(guidSalary)
	require.True(t, ok)
	assert.True(t, salary.Hidden)
	assert.True(t, salary.IsIE())

	require.Len(t, l.Transactions(), 3)
	payroll := l.Transactions()[0]
	assert.Equal(t, date.Date(2025, 1, 15), payroll.Date)
	assert.Equal(t, "Acme payroll", payroll.Description)
	assert.Equal(t, "january", payroll.Notes)
	require.Len(t, payroll.Splits, 2)
	assert.True(t, payroll.Splits[0].Amount.Equal(decimal.RequireFromString("100")))
	assert.True(t, payroll.Splits[1].Amount.Equal(decimal.RequireFromString("-100")))
}

func TestReadGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(testLedgerXML()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	l, err := Read(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, 6, l.NumAccounts())
	assert.Len(t, l.Transactions(), 3)
}

func TestReadInvalidValue(t *testing.T) {
	xml := ledgerXML(
		account(guidRoot, "Root Account", "", "ROOT", ""),
		account(guidBank, "Bank", guidRoot, "ASSET", ""),
		transaction("2025-01-15", "broken", "", [2]string{guidBank, "10/0"}),
	)
	_, err := Read(bufio.NewReader(strings.NewReader(xml)))
	assert.Error(t, err)
}

func TestDescendants(t *testing.T) {
	l := readLedger(t, testLedgerXML())

	ds, err := l.Descendants(guidRoot)
	require.NoError(t, err)
	assert.Len(t, ds, 6)

	ds, err = l.Descendants(guidAssets)
	require.NoError(t, err)
	assert.Equal(t, []string{guidAssets, guidBank}, ds)

	// A leaf's descendant set is just itself.
	ds, err = l.Descendants(guidBank)
	require.NoError(t, err)
	assert.Equal(t, []string{guidBank}, ds)

	_, err = l.Descendants(strings.Repeat("0", 32))
	var notFound NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, strings.Repeat("0", 32), notFound.GUID)
}

func TestCyclicHierarchy(t *testing.T) {
	xml := ledgerXML(
		account(guidAssets, "Assets", guidBank, "ASSET", ""),
		account(guidBank, "Bank", guidAssets, "ASSET", ""),
	)
	_, err := Read(bufio.NewReader(strings.NewReader(xml)))
	assert.True(t, errors.Is(err, ErrCycle), "want ErrCycle, got %v", err)
}

func TestDisplayName(t *testing.T) {
	l := readLedger(t, testLedgerXML())

	assert.Equal(t, "Bank", l.DisplayName(guidBank, NameOnly))
	assert.Equal(t, "Assets:Bank", l.DisplayName(guidBank, FullPath))
	assert.Equal(t, "Assets", l.DisplayName(guidAssets, FullPath))
	assert.Contains(t, l.DisplayName(strings.Repeat("0", 32), NameOnly), "unknown account")
}
