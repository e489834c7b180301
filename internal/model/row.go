package model

import "strings"

// Side tells which half of the budget a row belongs to.
type Side string

const (
	SideExpense Side = "utgift"
	SideRevenue Side = "inntekt"
)

// revenueChapterFloor is the first chapter number on the revenue side.
const revenueChapterFloor = 3000

// SideForChapter derives the budget side from a chapter number.
func SideForChapter(chapter int) Side {
	if chapter >= revenueChapterFloor {
		return SideRevenue
	}
	return SideExpense
}

// Row is one line of the canonical Gul bok table, at sub-post granularity.
// Amounts are whole kroner. Rows are never mutated after ingestion.
type Row struct {
	MinistryID   int
	MinistryName string
	AreaID       int
	AreaName     string
	CategoryID   int
	CategoryName string
	ChapterID    int
	ChapterName  string
	PostID       int
	SubPostID    int
	PostName     string
	Keywords     string // comma-separated, may be empty
	Amount       int64  // kroner
	Side         Side
}

// Key returns the chapter+post key the settled budget is joined on.
func (r Row) Key() LineKey {
	return LineKey{Chapter: r.ChapterID, Post: r.PostID}
}

// LineKey identifies a main post (sub-posts share their parent's key).
type LineKey struct {
	Chapter int
	Post    int
}

// ParseKeywords splits a raw stikkord string into a trimmed list.
// Empty input yields an empty (non-nil) list.
func ParseKeywords(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
