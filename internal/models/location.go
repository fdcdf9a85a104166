package models

import "fmt"

// Location describes a physical shelf/bay/section slot in the archive room.
type Location struct {
	ID            string `db:"id" json:"id"`
	ShelfNumber   int    `db:"shelf_number" json:"shelf_number"`
	BayCode       string `db:"bay_code" json:"bay_code"`
	SectionNumber int    `db:"section_number" json:"section_number"`
	// FullCode is derived from the three components and is unique.
	// It is recomputed on every save, never accepted from callers.
	FullCode string `db:"full_location_code" json:"full_location_code"`
}

// ComputeFullCode derives the location code, e.g. shelf 5, bay "A",
// section 2 yields "5A2".
func (l *Location) ComputeFullCode() string {
	return fmt.Sprintf("%d%s%d", l.ShelfNumber, l.BayCode, l.SectionNumber)
}
