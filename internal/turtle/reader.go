package turtle

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Document is a parsed Turtle document: the triple graph plus the prefix
// table and base it declared, in declaration order.
type Document struct {
	Base     string
	Prefixes []Prefix
	Graph    *Graph
}

// Namespaces returns the document's own prefix declarations as a table,
// usable for compaction when the caller supplies none.
func (d *Document) Namespaces() Namespaces {
	return Namespaces{Base: d.Base, Prefixes: d.Prefixes}
}

// ParseReader parses a Turtle document from a reader.
func ParseReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read turtle input: %w", err)
	}
	return Parse(data)
}

// Parse parses a Turtle document. The grammar subset covers what
// machine-generated geometry documents and this package's own writer
// produce: prefix/base directives in both @ and SPARQL spellings,
// prefixed names, IRIREFs, blank nodes, string/numeric/boolean literals
// with datatypes and language tags, predicate-object and object lists,
// blank-node property lists, and collections (expanded to first/rest
// chains).
func Parse(data []byte) (*Document, error) {
	p := &parser{
		data:     data,
		line:     1,
		prefixes: make(map[string]string),
		g:        NewGraph(),
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	return &Document{Base: p.base, Prefixes: p.order, Graph: p.g}, nil
}

const maxNestingDepth = 64

type parser struct {
	data     []byte
	pos      int
	line     int
	depth    int
	base     string
	prefixes map[string]string
	order    []Prefix
	g        *Graph
	bnodes   int
}

func (p *parser) errf(format string, args ...any) error {
	return fmt.Errorf("turtle: line %d: %s", p.line, fmt.Sprintf(format, args...))
}

func (p *parser) eof() bool { return p.pos >= len(p.data) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.data[p.pos]
}

// skipWS consumes whitespace and comments, tracking the line counter.
func (p *parser) skipWS() {
	for !p.eof() {
		switch c := p.data[p.pos]; {
		case c == '\n':
			p.line++
			p.pos++
		case c == ' ' || c == '\t' || c == '\r':
			p.pos++
		case c == '#':
			for !p.eof() && p.data[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *parser) run() error {
	for {
		p.skipWS()
		if p.eof() {
			return nil
		}
		switch {
		case p.peek() == '@':
			if err := p.parseAtDirective(); err != nil {
				return err
			}
		case p.matchKeyword("PREFIX"):
			if err := p.parsePrefixBinding(); err != nil {
				return err
			}
		case p.matchKeyword("BASE"):
			var err error
			if p.base, err = p.parseIRIRef(); err != nil {
				return err
			}
		default:
			if err := p.parseStatement(); err != nil {
				return err
			}
		}
	}
}

// matchKeyword consumes an ASCII keyword case-insensitively when it is
// followed by whitespace, so a prefixed name like "base:x" is not eaten.
func (p *parser) matchKeyword(kw string) bool {
	if p.pos+len(kw) > len(p.data) {
		return false
	}
	for i := 0; i < len(kw); i++ {
		c := p.data[p.pos+i]
		if c|0x20 != kw[i]|0x20 {
			return false
		}
	}
	rest := p.pos + len(kw)
	if rest < len(p.data) {
		switch p.data[rest] {
		case ' ', '\t', '\r', '\n':
		default:
			return false
		}
	}
	p.pos += len(kw)
	return true
}

func (p *parser) parseAtDirective() error {
	p.pos++ // '@'
	switch {
	case p.matchKeyword("prefix"):
		if err := p.parsePrefixBinding(); err != nil {
			return err
		}
	case p.matchKeyword("base"):
		var err error
		if p.base, err = p.parseIRIRef(); err != nil {
			return err
		}
	default:
		return p.errf("unknown directive")
	}
	p.skipWS()
	if p.peek() != '.' {
		return p.errf("expected '.' after directive")
	}
	p.pos++
	return nil
}

func (p *parser) parsePrefixBinding() error {
	p.skipWS()
	start := p.pos
	for !p.eof() && p.data[p.pos] != ':' {
		p.pos++
	}
	if p.eof() {
		return p.errf("unterminated prefix name")
	}
	name := string(p.data[start:p.pos])
	p.pos++ // ':'
	uri, err := p.parseIRIRef()
	if err != nil {
		return err
	}
	if _, seen := p.prefixes[name]; !seen {
		p.order = append(p.order, Prefix{Name: name, URI: uri})
	}
	p.prefixes[name] = uri
	return nil
}

func (p *parser) parseIRIRef() (string, error) {
	p.skipWS()
	if p.peek() != '<' {
		return "", p.errf("expected '<'")
	}
	p.pos++
	var b strings.Builder
	for {
		if p.eof() {
			return "", p.errf("unterminated IRI")
		}
		c := p.data[p.pos]
		switch c {
		case '>':
			p.pos++
			return p.resolve(b.String()), nil
		case '\n':
			return "", p.errf("newline in IRI")
		case '\\':
			r, err := p.readUnicodeEscape()
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
}

// readUnicodeEscape handles \uXXXX and \UXXXXXXXX with the cursor on the
// backslash.
func (p *parser) readUnicodeEscape() (rune, error) {
	p.pos++ // '\'
	if p.eof() {
		return 0, p.errf("truncated escape")
	}
	var width int
	switch p.data[p.pos] {
	case 'u':
		width = 4
	case 'U':
		width = 8
	default:
		return 0, p.errf("invalid IRI escape \\%c", p.data[p.pos])
	}
	p.pos++
	if p.pos+width > len(p.data) {
		return 0, p.errf("truncated \\u escape")
	}
	v, err := strconv.ParseUint(string(p.data[p.pos:p.pos+width]), 16, 32)
	if err != nil {
		return 0, p.errf("invalid \\u escape")
	}
	p.pos += width
	return rune(v), nil
}

// resolve applies the base to relative IRI references. Absolute
// references (anything with a scheme) pass through untouched, which is
// all the machine-generated inputs need.
func (p *parser) resolve(ref string) string {
	if ref == "" {
		return p.base
	}
	if hasScheme(ref) {
		return ref
	}
	return p.base + ref
}

func hasScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ':':
			return i > 0
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return false
}

func (p *parser) parseStatement() error {
	subj, err := p.parseSubject()
	if err != nil {
		return err
	}
	if err := p.predicateObjectList(subj, '.'); err != nil {
		return err
	}
	p.skipWS()
	if p.peek() != '.' {
		return p.errf("expected '.' to end statement")
	}
	p.pos++
	return nil
}

func (p *parser) parseSubject() (Term, error) {
	p.skipWS()
	switch c := p.peek(); {
	case c == '<':
		iri, err := p.parseIRIRef()
		return IRI(iri), err
	case c == '_':
		return p.parseBlankLabel()
	case c == '[':
		return p.parseBlankPropertyList()
	case c == '(':
		return p.parseCollection()
	default:
		return p.parsePName()
	}
}

func (p *parser) parseVerb() (Term, error) {
	p.skipWS()
	if p.peek() == 'a' {
		next := p.pos + 1
		if next >= len(p.data) || isDelimiter(p.data[next]) {
			p.pos++
			return IRI(RDFType), nil
		}
	}
	if p.peek() == '<' {
		iri, err := p.parseIRIRef()
		return IRI(iri), err
	}
	return p.parsePName()
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '<', '"', '\'', '[', '(', '#':
		return true
	}
	return false
}

func (p *parser) predicateObjectList(s Term, closer byte) error {
	for {
		verb, err := p.parseVerb()
		if err != nil {
			return err
		}
		for {
			obj, err := p.parseObject()
			if err != nil {
				return err
			}
			p.g.Add(s, verb, obj)
			p.skipWS()
			if p.peek() == ',' {
				p.pos++
				continue
			}
			break
		}
		p.skipWS()
		if p.peek() != ';' {
			return nil
		}
		for p.peek() == ';' {
			p.pos++
			p.skipWS()
		}
		if p.peek() == closer {
			return nil
		}
	}
}

func (p *parser) parseObject() (Term, error) {
	p.skipWS()
	if p.depth >= maxNestingDepth {
		return Term{}, p.errf("nesting deeper than %d", maxNestingDepth)
	}
	switch c := p.peek(); {
	case c == '<':
		iri, err := p.parseIRIRef()
		return IRI(iri), err
	case c == '_':
		return p.parseBlankLabel()
	case c == '[':
		p.depth++
		t, err := p.parseBlankPropertyList()
		p.depth--
		return t, err
	case c == '(':
		p.depth++
		t, err := p.parseCollection()
		p.depth--
		return t, err
	case c == '"' || c == '\'':
		return p.parseQuotedLiteral()
	case c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.':
		return p.parseNumeric()
	default:
		return p.parseBarewordOrPName()
	}
}

// parseBarewordOrPName resolves true/false keywords, falling back to a
// prefixed name.
func (p *parser) parseBarewordOrPName() (Term, error) {
	if p.matchBareword("true") {
		return Literal("true", XSDBoolean, ""), nil
	}
	if p.matchBareword("false") {
		return Literal("false", XSDBoolean, ""), nil
	}
	return p.parsePName()
}

// matchBareword consumes a case-sensitive keyword when not followed by a
// name character (so a pname like "true:x" stays intact).
func (p *parser) matchBareword(kw string) bool {
	if p.pos+len(kw) > len(p.data) || string(p.data[p.pos:p.pos+len(kw)]) != kw {
		return false
	}
	rest := p.pos + len(kw)
	if rest < len(p.data) && isLocalChar(p.data[rest]) {
		return false
	}
	if rest < len(p.data) && p.data[rest] == ':' {
		return false
	}
	p.pos += len(kw)
	return true
}

func (p *parser) parseBlankLabel() (Term, error) {
	if p.pos+1 >= len(p.data) || p.data[p.pos+1] != ':' {
		return Term{}, p.errf("expected '_:' blank node label")
	}
	p.pos += 2
	start := p.pos
	for !p.eof() && isLocalChar(p.data[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return Term{}, p.errf("empty blank node label")
	}
	return Blank(string(p.data[start:p.pos])), nil
}

func (p *parser) freshBlank() Term {
	p.bnodes++
	return Blank(fmt.Sprintf("gen%d", p.bnodes))
}

func (p *parser) parseBlankPropertyList() (Term, error) {
	p.pos++ // '['
	node := p.freshBlank()
	p.skipWS()
	if p.peek() == ']' {
		p.pos++
		return node, nil
	}
	if err := p.predicateObjectList(node, ']'); err != nil {
		return Term{}, err
	}
	p.skipWS()
	if p.peek() != ']' {
		return Term{}, p.errf("expected ']'")
	}
	p.pos++
	return node, nil
}

func (p *parser) parseCollection() (Term, error) {
	p.pos++ // '('
	var items []Term
	for {
		p.skipWS()
		if p.eof() {
			return Term{}, p.errf("unterminated collection")
		}
		if p.peek() == ')' {
			p.pos++
			break
		}
		item, err := p.parseObject()
		if err != nil {
			return Term{}, err
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return IRI(RDFNil), nil
	}
	head := p.freshBlank()
	cur := head
	for i, item := range items {
		p.g.Add(cur, IRI(RDFFirst), item)
		if i == len(items)-1 {
			p.g.Add(cur, IRI(RDFRest), IRI(RDFNil))
		} else {
			next := p.freshBlank()
			p.g.Add(cur, IRI(RDFRest), next)
			cur = next
		}
	}
	return head, nil
}

// localChars covers the PN_LOCAL subset the synthetic subject names in
// geometry documents use, including '$' from compressed GUID alphabets.
func isLocalChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '-', c == '%', c == '$':
		return true
	case c >= 0x80: // multi-byte runes pass through verbatim
		return true
	}
	return false
}

func (p *parser) parsePName() (Term, error) {
	p.skipWS()
	start := p.pos
	for !p.eof() && p.data[p.pos] != ':' {
		c := p.data[p.pos]
		if !isLocalChar(c) {
			return Term{}, p.errf("unexpected character %q", c)
		}
		p.pos++
	}
	if p.eof() {
		return Term{}, p.errf("expected ':' in prefixed name")
	}
	name := string(p.data[start:p.pos])
	uri, ok := p.prefixes[name]
	if !ok {
		return Term{}, p.errf("undeclared prefix %q", name)
	}
	p.pos++ // ':'
	lstart := p.pos
	for !p.eof() {
		c := p.data[p.pos]
		if isLocalChar(c) {
			p.pos++
			continue
		}
		// dots are legal inside a local name but a trailing dot ends
		// the statement
		if c == '.' && p.pos+1 < len(p.data) && isLocalChar(p.data[p.pos+1]) {
			p.pos += 2
			continue
		}
		break
	}
	return IRI(uri + string(p.data[lstart:p.pos])), nil
}

func (p *parser) parseQuotedLiteral() (Term, error) {
	quote := p.data[p.pos]
	long := false
	if p.pos+2 < len(p.data) && p.data[p.pos+1] == quote && p.data[p.pos+2] == quote {
		long = true
		p.pos += 3
	} else {
		p.pos++
	}
	var b strings.Builder
	for {
		if p.eof() {
			return Term{}, p.errf("unterminated string literal")
		}
		c := p.data[p.pos]
		if c == quote {
			if !long {
				p.pos++
				break
			}
			if p.pos+2 < len(p.data) && p.data[p.pos+1] == quote && p.data[p.pos+2] == quote {
				p.pos += 3
				break
			}
			b.WriteByte(c)
			p.pos++
			continue
		}
		if c == '\n' {
			if !long {
				return Term{}, p.errf("newline in string literal")
			}
			p.line++
			b.WriteByte(c)
			p.pos++
			continue
		}
		if c == '\\' {
			if p.pos+1 >= len(p.data) {
				return Term{}, p.errf("truncated escape")
			}
			switch e := p.data[p.pos+1]; e {
			case 't':
				b.WriteByte('\t')
				p.pos += 2
			case 'b':
				b.WriteByte('\b')
				p.pos += 2
			case 'n':
				b.WriteByte('\n')
				p.pos += 2
			case 'r':
				b.WriteByte('\r')
				p.pos += 2
			case 'f':
				b.WriteByte('\f')
				p.pos += 2
			case '"', '\'', '\\':
				b.WriteByte(e)
				p.pos += 2
			case 'u', 'U':
				r, err := p.readUnicodeEscape()
				if err != nil {
					return Term{}, err
				}
				b.WriteRune(r)
			default:
				return Term{}, p.errf("invalid string escape \\%c", e)
			}
			continue
		}
		b.WriteByte(c)
		p.pos++
	}
	lex := b.String()

	// optional datatype or language tag
	if p.pos+1 < len(p.data) && p.data[p.pos] == '^' && p.data[p.pos+1] == '^' {
		p.pos += 2
		var dt Term
		var err error
		if p.peek() == '<' {
			var iri string
			iri, err = p.parseIRIRef()
			dt = IRI(iri)
		} else {
			dt, err = p.parsePName()
		}
		if err != nil {
			return Term{}, err
		}
		return Literal(lex, dt.Value, ""), nil
	}
	if p.peek() == '@' {
		p.pos++
		start := p.pos
		for !p.eof() {
			c := p.data[p.pos]
			if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '-' || c >= '0' && c <= '9' {
				p.pos++
				continue
			}
			break
		}
		if p.pos == start {
			return Term{}, p.errf("empty language tag")
		}
		return Literal(lex, "", string(p.data[start:p.pos])), nil
	}
	return Literal(lex, "", ""), nil
}

func (p *parser) parseNumeric() (Term, error) {
	start := p.pos
	if c := p.peek(); c == '+' || c == '-' {
		p.pos++
	}
	digits := 0
	for !p.eof() && p.data[p.pos] >= '0' && p.data[p.pos] <= '9' {
		p.pos++
		digits++
	}
	decimal := false
	if !p.eof() && p.data[p.pos] == '.' && p.pos+1 < len(p.data) &&
		p.data[p.pos+1] >= '0' && p.data[p.pos+1] <= '9' {
		decimal = true
		p.pos++
		for !p.eof() && p.data[p.pos] >= '0' && p.data[p.pos] <= '9' {
			p.pos++
			digits++
		}
	}
	if digits == 0 {
		return Term{}, p.errf("malformed numeric literal")
	}
	exponent := false
	if !p.eof() && (p.data[p.pos] == 'e' || p.data[p.pos] == 'E') {
		mark := p.pos
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		expDigits := 0
		for !p.eof() && p.data[p.pos] >= '0' && p.data[p.pos] <= '9' {
			p.pos++
			expDigits++
		}
		if expDigits == 0 {
			p.pos = mark // not an exponent after all
		} else {
			exponent = true
		}
	}
	lex := string(p.data[start:p.pos])
	switch {
	case exponent:
		return Literal(lex, XSDDouble, ""), nil
	case decimal:
		return Literal(lex, XSDDecimal, ""), nil
	default:
		return Literal(lex, XSDInteger, ""), nil
	}
}
