package tree

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/gnucash-go/greport/cmd/cmdtest"
)

func TestGolden(t *testing.T) {
	g := goldie.New(t)
	got := cmdtest.Run(t, CreateCmd(), "testdata/example.gnucash")
	g.Assert(t, "example", got)
}

func TestGoldenNoGuids(t *testing.T) {
	g := goldie.New(t)
	got := cmdtest.Run(t, CreateCmd(), "--guids=false", "testdata/example.gnucash")
	g.Assert(t, "example_noguids", got)
}
