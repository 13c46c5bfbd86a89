package jsontemplate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	literalToken tokenKind = iota
	directiveToken
)

type token struct {
	kind tokenKind
	text string // directive text excludes the delimiters
	pos  Pos
}

// tokenizer splits template text into literal and directive tokens, one line
// at a time. It also consumes the directives that only affect tokenizing:
// ##BEGIN/##END comment blocks and .OPTION/.END whitespace blocks.
type tokenizer struct {
	cfg          *config
	modes        []Whitespace
	optionPos    []Pos
	commentDepth int
	commentPos   Pos
	tokens       []token
}

func tokenize(src string, cfg *config) ([]token, error) {
	tz := &tokenizer{cfg: cfg, modes: []Whitespace{cfg.whitespace}}
	offset, lineNo := 0, 0
	for offset < len(src) {
		lineNo++
		line := src[offset:]
		if nl := strings.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl+1]
		}
		if err := tz.line(line, offset, lineNo); err != nil {
			return nil, err
		}
		offset += len(line)
	}
	if tz.commentDepth > 0 {
		return nil, compileErrorf(tz.commentPos, "unclosed ##BEGIN comment")
	}
	if n := len(tz.optionPos); n > 0 {
		return nil, compileErrorf(tz.optionPos[n-1], "unclosed .OPTION block")
	}
	return tz.tokens, nil
}

func (tz *tokenizer) line(line string, offset, lineNo int) error {
	mode := tz.modes[len(tz.modes)-1]
	start := 0
	if mode == WhitespaceStripLine {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		start = len(line) - len(trimmed)
		line = strings.TrimRightFunc(trimmed, unicode.IsSpace)
	}
	segs := tz.scan(line, Pos{Offset: offset + start, Line: lineNo, Column: start + 1})
	if mode == WhitespaceSmart {
		if d, ok := soleBlockDirective(segs); ok {
			segs = []token{d}
		}
	}
	for _, seg := range segs {
		if err := tz.emit(seg); err != nil {
			return err
		}
	}
	return nil
}

// scan finds directives in one line. A directive is the opening delimiter,
// a non-space character, and the shortest text up to the closing delimiter
// on the same line. An opening delimiter that does not start a directive is
// literal text.
func (tz *tokenizer) scan(line string, at Pos) []token {
	left, right := tz.cfg.metaLeft, tz.cfg.metaRight
	body := strings.TrimSuffix(line, "\n")
	var segs []token
	literalStart, i := 0, 0
	for {
		j := strings.Index(body[i:], left)
		if j < 0 {
			break
		}
		j += i
		k := j + len(left)
		r, size := utf8.DecodeRuneInString(body[k:])
		if size == 0 || unicode.IsSpace(r) {
			i = k
			continue
		}
		m := strings.Index(body[k+size:], right)
		if m < 0 {
			i = k
			continue
		}
		end := k + size + m
		if j > literalStart {
			segs = append(segs, token{kind: literalToken, text: line[literalStart:j], pos: at.advance(literalStart)})
		}
		segs = append(segs, token{kind: directiveToken, text: body[k:end], pos: at.advance(j)})
		i = end + len(right)
		literalStart = i
	}
	if literalStart < len(line) {
		segs = append(segs, token{kind: literalToken, text: line[literalStart:], pos: at.advance(literalStart)})
	}
	return segs
}

func (p Pos) advance(n int) Pos {
	p.Offset += n
	p.Column += n
	return p
}

func (tz *tokenizer) emit(seg token) error {
	if seg.kind == directiveToken {
		switch seg.text {
		case "##BEGIN":
			if tz.commentDepth == 0 {
				tz.commentPos = seg.pos
			}
			tz.commentDepth++
			return nil
		case "##END":
			if tz.commentDepth == 0 {
				return compileErrorf(seg.pos, "##END without ##BEGIN")
			}
			tz.commentDepth--
			return nil
		}
	}
	if tz.commentDepth > 0 {
		return nil
	}
	if seg.kind == directiveToken {
		if opt, ok := strings.CutPrefix(seg.text, ".OPTION"); ok {
			mode := Whitespace(strings.TrimSpace(opt))
			if mode != WhitespaceSmart && mode != WhitespaceStripLine {
				return compileErrorf(seg.pos, "unknown option %q", mode)
			}
			tz.modes = append(tz.modes, mode)
			tz.optionPos = append(tz.optionPos, seg.pos)
			return nil
		}
		if seg.text == ".END" {
			if len(tz.optionPos) == 0 {
				return compileErrorf(seg.pos, ".END without .OPTION")
			}
			tz.modes = tz.modes[:len(tz.modes)-1]
			tz.optionPos = tz.optionPos[:len(tz.optionPos)-1]
			return nil
		}
	}
	tz.tokens = append(tz.tokens, seg)
	return nil
}

// soleBlockDirective reports whether a line holds one block directive and
// nothing but whitespace around it.
func soleBlockDirective(segs []token) (token, bool) {
	var found token
	n := 0
	for _, seg := range segs {
		if seg.kind == literalToken {
			if strings.TrimSpace(seg.text) != "" {
				return token{}, false
			}
			continue
		}
		n++
		found = seg
	}
	return found, n == 1 && isBlockDirective(found.text)
}

func isBlockDirective(text string) bool {
	if strings.HasPrefix(text, "#") {
		return true
	}
	body, ok := strings.CutPrefix(text, ".")
	if !ok {
		return false
	}
	if strings.HasSuffix(body, "?") {
		return true
	}
	word, _, _ := strings.Cut(body, " ")
	switch word {
	case "section", "repeated", "or", "alternates", "end", "if", "define", "OPTION", "END":
		return true
	}
	return false
}
