// Command inspectdb dumps a quick snapshot of the archive database:
// table list, row counts, duplicate file codes, and a handful of sample
// rows. Read-only, meant for debugging a running environment.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"github.com/uniarchive/archive-api/pkg/config"
	"github.com/uniarchive/archive-api/pkg/database"
)

var coreTables = []string{"users", "locations", "records", "loans", "audit_entries"}

func main() {
	var sampleLimit int
	flag.IntVar(&sampleLimit, "samples", 10, "number of sample rows to print per table")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close() //nolint:errcheck

	printTables(db)
	printCounts(db)
	printDuplicateFileCodes(db)
	printSampleLocations(db, sampleLimit)
	printSampleUsers(db, sampleLimit)
}

func printTables(db *sqlx.DB) {
	var tables []string
	err := db.Select(&tables,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		 ORDER BY table_name`)
	if err != nil {
		log.Fatalf("list tables: %v", err)
	}
	fmt.Println("Tables:")
	for _, t := range tables {
		fmt.Println("-", t)
	}
}

func printCounts(db *sqlx.DB) {
	fmt.Println("\nRow counts:")
	for _, t := range coreTables {
		var count int
		if err := db.Get(&count, fmt.Sprintf("SELECT COUNT(*) FROM %s", t)); err != nil {
			fmt.Printf("%s: error (%v)\n", t, err)
			continue
		}
		fmt.Printf("%s: %d\n", t, count)
	}
}

func printDuplicateFileCodes(db *sqlx.DB) {
	type dup struct {
		FileCode string `db:"file_code"`
		Count    int    `db:"count"`
	}
	var dups []dup
	err := db.Select(&dups,
		`SELECT file_code, COUNT(*) AS count FROM records
		 GROUP BY file_code HAVING COUNT(*) > 1`)
	if err != nil {
		log.Fatalf("check duplicate file codes: %v", err)
	}
	fmt.Println("\nDuplicate file codes:")
	if len(dups) == 0 {
		fmt.Println("None")
		return
	}
	for _, d := range dups {
		fmt.Printf("%s (%d)\n", d.FileCode, d.Count)
	}
}

func printSampleLocations(db *sqlx.DB, limit int) {
	type location struct {
		ID               string `db:"id"`
		ShelfNumber      int    `db:"shelf_number"`
		BayCode          string `db:"bay_code"`
		SectionNumber    int    `db:"section_number"`
		FullLocationCode string `db:"full_location_code"`
	}
	var rows []location
	err := db.Select(&rows,
		`SELECT id, shelf_number, bay_code, section_number, full_location_code
		 FROM locations ORDER BY full_location_code LIMIT $1`, limit)
	if err != nil {
		log.Fatalf("sample locations: %v", err)
	}
	fmt.Println("\nSample locations:")
	for _, r := range rows {
		fmt.Printf("%s  shelf=%d bay=%s section=%d  %s\n",
			r.ID, r.ShelfNumber, r.BayCode, r.SectionNumber, r.FullLocationCode)
	}
}

func printSampleUsers(db *sqlx.DB, limit int) {
	type user struct {
		Email    string `db:"email"`
		FullName string `db:"full_name"`
		Role     string `db:"role"`
	}
	var rows []user
	err := db.Select(&rows,
		`SELECT email, full_name, role FROM users ORDER BY email LIMIT $1`, limit)
	if err != nil {
		log.Fatalf("sample users: %v", err)
	}
	fmt.Println("\nSample users:")
	for _, r := range rows {
		fmt.Printf("%s  %s  %s\n", r.Email, r.FullName, r.Role)
	}
}
