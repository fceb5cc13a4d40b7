package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnaddressable is returned for an icon whose title, titleId and
// reserved01 are all NULL and which is not the power tile: no predicate can
// single out its row.
var ErrUnaddressable = errors.New("icon has no addressable key")

// Predicate is a parameterised WHERE clause identifying one icon row.
type Predicate struct {
	Clause string
	Args   []any
}

// String renders the predicate with its arguments inlined, for diagnostics.
func (p Predicate) String() string {
	var b strings.Builder
	arg := 0
	for _, r := range p.Clause {
		if r == '?' && arg < len(p.Args) {
			switch v := p.Args[arg].(type) {
			case string:
				b.WriteString(strconv.Quote(v))
			default:
				fmt.Fprint(&b, v)
			}
			arg++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Match returns the predicate that identifies ic's row. The live schema has
// no stable row id, so rows are found by the best natural key available:
//
//  1. title and titleId both NULL: the power tile by icon0Type, anything
//     else by reserved01.
//  2. otherwise titleId when it is real, else title.
//  3. folder headers are narrowed with reserved01, since folders share a
//     NULL titleId.
func (ic Icon) Match() (Predicate, error) {
	if ic.Title == NullText && ic.TitleID == NullText {
		if ic.IconType == IconTypePower {
			return Predicate{Clause: "icon0Type = ?", Args: []any{ic.IconType}}, nil
		}
		if ic.Reserved != NullText && ic.Reserved != "" {
			return Predicate{Clause: "reserved01 = ?", Args: []any{ic.reservedArg()}}, nil
		}
		return Predicate{}, fmt.Errorf("%w (pageId=%d, pos=%d)", ErrUnaddressable, ic.PageID, ic.Pos)
	}

	var p Predicate
	if ic.TitleID == NullText {
		p = Predicate{Clause: "title = ?", Args: []any{ic.Title}}
	} else {
		p = Predicate{Clause: "titleId = ?", Args: []any{ic.TitleID}}
	}

	if ic.IconType == IconTypeFolder {
		p.Clause += " AND reserved01 = ?"
		p.Args = append(p.Args, ic.reservedArg())
	}
	return p, nil
}

// reservedArg binds reserved01 with the storage class it was written with.
// The column has no declared affinity, so an integer never equals its text
// form.
func (ic Icon) reservedArg() any {
	if n, err := strconv.ParseInt(ic.Reserved, 10, 64); err == nil {
		return n
	}
	return ic.Reserved
}
