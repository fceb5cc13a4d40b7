package layout

import "unicode/utf8"

// NullText is how a SQL NULL text column reads back as text.
const NullText = "(null)"

// Slot geometry of a home-screen page.
const (
	MaxPos       = 9
	SlotsPerPage = MaxPos + 1
)

// On-disk icon0Type values with special meaning.
const (
	IconTypeFolder = 7
	IconTypePower  = 8
)

// Field bounds of the folder mirrors, matching the shell's fixed buffers
// (one byte of each is the terminator).
const (
	TitleMax   = 127
	TitleIDMax = 15
)

// Kind discriminates what an icon row represents.
type Kind int

const (
	KindApp Kind = iota
	KindFolder
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindApp:
		return "app"
	case KindFolder:
		return "folder"
	default:
		return "other"
	}
}

// Icon is one tile row of tbl_appinfo_icon joined with its page number.
type Icon struct {
	PageID   int    `json:"page_id" yaml:"page_id"`
	PageNo   int    `json:"page_no" yaml:"page_no"` // < 0: lives inside a folder
	Pos      int    `json:"pos" yaml:"pos"`
	Title    string `json:"title" yaml:"title"`
	TitleID  string `json:"title_id" yaml:"title_id"`
	IconType int    `json:"icon_type" yaml:"icon_type"`
	Reserved string `json:"reserved" yaml:"reserved"` // reserved01 as text
}

// Kind derives the icon kind from its icon0Type.
func (ic Icon) Kind() Kind {
	switch ic.IconType {
	case IconTypeFolder:
		return KindFolder
	case IconTypePower:
		return KindOther
	default:
		return KindApp
	}
}

// InFolder reports whether the icon is a folder member.
func (ic Icon) InFolder() bool {
	return ic.PageNo < 0
}

// Page is one home-screen page.
type Page struct {
	PageID int `json:"page_id" yaml:"page_id"`
	PageNo int `json:"page_no" yaml:"page_no"`
}

// Folder is a folder's internal page. Index is a running slot counter used
// only while positions are assigned; it is never persisted.
type Folder struct {
	PageID int `json:"page_id" yaml:"page_id"`
	Index  int `json:"-" yaml:"-"`
}

// ChildIcon mirrors an Icon that lives inside a folder so folder contents
// can be listed and sorted on their own.
type ChildIcon struct {
	PageID  int    `json:"page_id" yaml:"page_id"`
	PageNo  int    `json:"page_no" yaml:"page_no"`
	Pos     int    `json:"pos" yaml:"pos"`
	Title   string `json:"title" yaml:"title"`
	TitleID string `json:"title_id" yaml:"title_id"`
}

// Child builds the folder mirror of ic.
func (ic Icon) Child() ChildIcon {
	return ChildIcon{
		PageID:  ic.PageID,
		PageNo:  ic.PageNo,
		Pos:     ic.Pos,
		Title:   Truncate(ic.Title, TitleMax),
		TitleID: Truncate(ic.TitleID, TitleIDMax),
	}
}

// Model is the whole layout aggregate produced by a load.
type Model struct {
	Icons     []Icon      `json:"icons"`
	Pages     []Page      `json:"pages"`
	Folders   []Folder    `json:"folders"`
	ChildApps []ChildIcon `json:"child_apps"`
}

// Children returns the mirrors whose folder page number is folderPageNo,
// in model order.
func (m *Model) Children(folderPageNo int) []ChildIcon {
	var out []ChildIcon
	for _, c := range m.ChildApps {
		if c.PageNo == folderPageNo {
			out = append(out, c)
		}
	}
	return out
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
