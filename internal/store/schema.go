package store

// Table names of the shell's layout database.
const (
	IconTable = "tbl_appinfo_icon"
	PageTable = "tbl_appinfo_page"

	// Scratch copies used during a rebuild.
	IconSortTable = IconTable + "_sort"
	PageSortTable = PageTable + "_sort"
)

// IconTableDDL recreates tbl_appinfo_icon exactly as the shell declares it.
const IconTableDDL = `CREATE TABLE tbl_appinfo_icon(pageId REFERENCES tbl_appinfo_page(pageId) ON DELETE RESTRICT NOT NULL, pos INT NOT NULL, iconPath TEXT, title TEXT COLLATE NOCASE, type NOT NULL, command TEXT, titleId TEXT, icon0Type NOT NULL, parentalLockLv INT, status INT, reserved01, reserved02, reserved03, reserved04, reserved05, PRIMARY KEY(pageId, pos))`

// IconIndexDDL recreates the icon table's indexes.
var IconIndexDDL = []string{
	"CREATE INDEX idx_icon_pos ON tbl_appinfo_icon ( pos, pageId )",
	"CREATE INDEX idx_icon_title ON tbl_appinfo_icon (title, titleId, type)",
}

// PageTableDDL recreates tbl_appinfo_page exactly as the shell declares it.
const PageTableDDL = `CREATE TABLE tbl_appinfo_page(pageId INTEGER PRIMARY KEY NOT NULL, pageNo INT NOT NULL, themeFile TEXT, bgColor INT, texWidth INT, texHeight INT, imageWidth INT, imageHeight INT, reserved01, reserved02, reserved03, reserved04, reserved05)`

// PageIndexDDL recreates the page table's index.
var PageIndexDDL = []string{
	"CREATE INDEX idx_page_no ON tbl_appinfo_page ( pageNo )",
}

// PageTriggerDDL keeps page numbers contiguous when the shell deletes or
// inserts a page outside this tool. They must survive every page rebuild.
var PageTriggerDDL = []string{
	"CREATE TRIGGER tgr_deletePage2 AFTER DELETE ON tbl_appinfo_page WHEN OLD.pageNo >= 0 BEGIN UPDATE tbl_appinfo_page SET pageNo = pageNo - 1 WHERE tbl_appinfo_page.pageNo > OLD.pageNo; END",
	"CREATE TRIGGER tgr_insertPage2 BEFORE INSERT ON tbl_appinfo_page WHEN NEW.pageNo >= 0 BEGIN UPDATE tbl_appinfo_page SET pageNo = pageNo + 1 WHERE tbl_appinfo_page.pageNo >= NEW.pageNo; END",
}

// LayoutSchema returns every statement that creates the two layout tables,
// their indexes and the page triggers, in dependency order.
func LayoutSchema() []string {
	stmts := []string{PageTableDDL}
	stmts = append(stmts, PageIndexDDL...)
	stmts = append(stmts, IconTableDDL)
	stmts = append(stmts, IconIndexDDL...)
	stmts = append(stmts, PageTriggerDDL...)
	return stmts
}
