package report

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gnucash-go/greport/lib/common/date"
	"github.com/gnucash-go/greport/lib/gnucash"
)

var (
	refPrefix   = regexp.MustCompile(`^\[(\d+)\]\s+(.+)`)
	guidPattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)
	regexClause = regexp.MustCompile(`(-?)"([^"]+)"`)
	operation   = regexp.MustCompile(`^([*/%+-])\s*(.+)`)
	formulaRef  = regexp.MustCompile(`\[(\d+)\]`)
)

// ParseFile parses the report definition at the given path. Symbolic
// date expressions in the configuration are resolved against today.
func ParseFile(path string, today time.Time) (*Definition, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(text), today)
}

// Parse compiles a report definition into its directive list and
// resolved configuration. Parsing is pure text-to-structure
// translation; no ledger lookups happen here.
func Parse(text string, today time.Time) (*Definition, error) {
	p := parser{
		def: &Definition{
			Config: Config{
				Interval:     date.Monthly,
				Names:        gnucash.NameOnly,
				InvertIncome: true,
			},
			refs: make(map[int]int),
		},
		startExpr: "BY",
		endExpr:   "EY",
	}
	for i, raw := range strings.Split(text, "\n") {
		if err := p.parseLine(i+1, raw); err != nil {
			return nil, err
		}
	}
	return p.finish(today)
}

type parser struct {
	def *Definition

	// most recent ACCOUNT/ACCOUNTS directive, nil once any other
	// directive intervenes
	last *Account

	startExpr, endExpr string
}

func (p *parser) parseLine(lineno int, raw string) error {
	line := strings.TrimSpace(processEscapes(stripComment(raw)))
	if line == "" {
		return nil
	}
	ref := 0
	if m := refPrefix.FindStringSubmatch(line); m != nil {
		ref, _ = strconv.Atoi(m[1])
		if ref == 0 {
			return SyntaxError{Line: lineno, Msg: "reference index must be positive"}
		}
		if prev, ok := p.def.refs[ref]; ok {
			return SyntaxError{Line: lineno, Msg: fmt.Sprintf("duplicate reference [%d], already used on line %d", ref, prev)}
		}
		line = m[2]
	}
	switch {
	case strings.HasPrefix(line, "SECTION:"):
		p.add(&Section{
			directive: directive{line: lineno, ref: ref},
			Title:     strings.TrimSpace(line[len("SECTION:"):]),
		})
	case strings.HasPrefix(line, "TITLE:"):
		p.add(&Title{
			directive: directive{line: lineno, ref: ref},
			Text:      strings.TrimSpace(line[len("TITLE:"):]),
		})
	case strings.HasPrefix(line, "ACCOUNT:"):
		return p.parseAccount(lineno, ref, strings.TrimSpace(line[len("ACCOUNT:"):]), false)
	case strings.HasPrefix(line, "ACCOUNTS:"):
		return p.parseAccount(lineno, ref, strings.TrimSpace(line[len("ACCOUNTS:"):]), true)
	case strings.HasPrefix(line, "FILTER:"):
		if p.last == nil {
			return PlacementError{Line: lineno, Directive: "FILTER"}
		}
		guid := strings.TrimSpace(line[len("FILTER:"):])
		if !guidPattern.MatchString(guid) {
			return invalidGUID(lineno, guid)
		}
		p.last.FilterGUID = guid
	case strings.HasPrefix(line, "REGEX:"):
		if p.last == nil {
			return PlacementError{Line: lineno, Directive: "REGEX"}
		}
		clauses := regexClause.FindAllStringSubmatch(line[len("REGEX:"):], -1)
		if clauses == nil {
			return SyntaxError{Line: lineno, Msg: `REGEX requires quoted patterns: "include" or -"exclude"`}
		}
		for _, m := range clauses {
			if _, err := regexp.Compile("(?i)" + m[2]); err != nil {
				return SyntaxError{Line: lineno, Msg: fmt.Sprintf("invalid pattern %q", m[2])}
			}
			if m[1] == "-" {
				p.last.Exclude = append(p.last.Exclude, m[2])
			} else {
				p.last.Include = append(p.last.Include, m[2])
			}
		}
	case strings.HasPrefix(line, "PLACEHOLDER:"):
		return p.parsePlaceholder(lineno, ref, strings.TrimSpace(line[len("PLACEHOLDER:"):]))
	case strings.HasPrefix(line, "SUM:"):
		p.add(&Sum{
			directive: directive{line: lineno, ref: ref},
			Label:     strings.TrimSpace(line[len("SUM:"):]),
		})
	case strings.HasPrefix(line, "CALC:"):
		return p.parseCalc(lineno, ref, strings.TrimSpace(line[len("CALC:"):]))
	case strings.HasPrefix(line, "BLANK:"):
		p.add(&Blank{directive: directive{line: lineno, ref: ref}})
	case strings.Contains(line, ":"):
		if ref != 0 {
			return SyntaxError{Line: lineno, Msg: "reference is not allowed on a configuration line"}
		}
		return p.parseConfig(lineno, line)
	default:
		return SyntaxError{Line: lineno, Msg: fmt.Sprintf("unrecognized directive: %s", line)}
	}
	return nil
}

// add appends a directive, registers its reference and closes the
// current ACCOUNT/ACCOUNTS block.
func (p *parser) add(d Directive) {
	if d.Ref() != 0 {
		p.def.refs[d.Ref()] = d.Line()
	}
	p.def.Directives = append(p.def.Directives, d)
	if a, ok := d.(*Account); ok {
		p.last = a
	} else {
		p.last = nil
	}
}

func (p *parser) parseAccount(lineno, ref int, content string, recursive bool) error {
	head, label, _ := strings.Cut(content, "|")
	head = strings.TrimSpace(head)
	a := &Account{
		directive: directive{line: lineno, ref: ref},
		Label:     strings.TrimSpace(label),
		Recursive: recursive,
	}
	if i := strings.IndexAny(head, "*/%+-"); i >= 0 {
		op, err := parseOperation(lineno, head[i:])
		if err != nil {
			return err
		}
		a.Op = op
		head = strings.TrimSpace(head[:i])
	}
	if !guidPattern.MatchString(head) {
		return invalidGUID(lineno, head)
	}
	a.GUID = head
	p.add(a)
	return nil
}

func parseOperation(lineno int, s string) (*Operation, error) {
	m := operation.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil, SyntaxError{Line: lineno, Msg: fmt.Sprintf("invalid operation %q", s)}
	}
	operand := strings.TrimSpace(m[2])
	percent := strings.HasSuffix(operand, "%")
	operand = strings.TrimSuffix(operand, "%")
	v, err := decimal.NewFromString(operand)
	if err != nil {
		return nil, SyntaxError{Line: lineno, Msg: fmt.Sprintf("invalid operand %q", m[2])}
	}
	if percent {
		v = v.Div(decimal.New(100, 0))
	}
	return &Operation{Op: m[1][0], Operand: v}, nil
}

func (p *parser) parsePlaceholder(lineno, ref int, content string) error {
	label, values, ok := strings.Cut(content, "|")
	if !ok {
		return SyntaxError{Line: lineno, Msg: "PLACEHOLDER requires format: PLACEHOLDER: label | v1,v2,..."}
	}
	ph := &Placeholder{
		directive: directive{line: lineno, ref: ref},
		Label:     strings.TrimSpace(label),
	}
	for _, s := range strings.Split(values, ",") {
		v, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return SyntaxError{Line: lineno, Msg: fmt.Sprintf("invalid value %q", strings.TrimSpace(s))}
		}
		ph.Values = append(ph.Values, v)
	}
	p.add(ph)
	return nil
}

func (p *parser) parseCalc(lineno, ref int, content string) error {
	label, formula, ok := strings.Cut(content, "|")
	if !ok {
		return SyntaxError{Line: lineno, Msg: "CALC requires format: CALC: label | formula"}
	}
	formula = strings.TrimSpace(formula)
	// References must already be registered; definition order makes
	// this exactly the forward-reference check.
	for _, m := range formulaRef.FindAllStringSubmatch(formula, -1) {
		k, _ := strconv.Atoi(m[1])
		if _, ok := p.def.refs[k]; !ok {
			return ReferenceError{Line: lineno, Ref: k}
		}
	}
	if _, err := ParseFormula(formula); err != nil {
		return SyntaxError{Line: lineno, Msg: err.Error()}
	}
	p.add(&Calc{
		directive: directive{line: lineno, ref: ref},
		Label:     strings.TrimSpace(label),
		Formula:   formula,
	})
	return nil
}

func (p *parser) parseConfig(lineno int, line string) error {
	key, value, _ := strings.Cut(line, ":")
	key = strings.ToUpper(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	switch key {
	case "START_DATE":
		p.startExpr = value
	case "END_DATE":
		p.endExpr = value
	case "PERIOD":
		interval, err := date.ParseInterval(value)
		if err != nil {
			return ConfigError{Line: lineno, Msg: err.Error()}
		}
		p.def.Config.Interval = interval
	case "ACCOUNT_NAME":
		switch strings.ToLower(value) {
		case "name_only":
			p.def.Config.Names = gnucash.NameOnly
		case "full_path":
			p.def.Config.Names = gnucash.FullPath
		default:
			return ConfigError{Line: lineno, Msg: fmt.Sprintf("ACCOUNT_NAME must be 'full_path' or 'name_only', got %q", value)}
		}
	case "GNUCASH_FILE":
		p.def.Config.LedgerPath = value
	case "CSV_FILE":
		p.def.Config.OutputPath = value
	case "INVERT_INCOME":
		switch strings.ToLower(value) {
		case "true", "yes", "1":
			p.def.Config.InvertIncome = true
		case "false", "no", "0":
			p.def.Config.InvertIncome = false
		default:
			return ConfigError{Line: lineno, Msg: fmt.Sprintf("INVERT_INCOME must be 'true' or 'false', got %q", value)}
		}
	default:
		return ConfigError{Line: lineno, Msg: fmt.Sprintf("unrecognized configuration key %q", key)}
	}
	return nil
}

func (p *parser) finish(today time.Time) (*Definition, error) {
	start, err := date.ParseExpr(p.startExpr, today)
	if err != nil {
		return nil, ConfigError{Msg: err.Error()}
	}
	end, err := date.ParseExpr(p.endExpr, today)
	if err != nil {
		return nil, ConfigError{Msg: err.Error()}
	}
	if start.After(end) {
		return nil, ConfigError{Msg: fmt.Sprintf("start date %s is after end date %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))}
	}
	p.def.Config.Start = start
	p.def.Config.End = end
	return p.def, nil
}

func invalidGUID(lineno int, guid string) error {
	return SyntaxError{Line: lineno, Msg: fmt.Sprintf("invalid account identifier %q: want 32 hexadecimal characters", guid)}
}

// stripComment removes a trailing # comment, keeping # characters
// which are escaped or inside quotes.
func stripComment(line string) string {
	var (
		b        strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if ch == '\\' && i+1 < len(line) && (line[i+1] == '#' || line[i+1] == '\\') {
			b.WriteByte(ch)
			b.WriteByte(line[i+1])
			i++
			continue
		}
		if ch == '"' {
			inQuotes = !inQuotes
		}
		if ch == '#' && !inQuotes {
			break
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// processEscapes replaces \# and \\ with their literal characters.
func processEscapes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '#' || s[i+1] == '\\') {
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
