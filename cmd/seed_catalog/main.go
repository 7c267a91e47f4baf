package main

import (
	"fmt"
	"os"

	"cd-library/lending"
)

// Rebuilds the database from scratch with the starter catalog. Useful after
// hand-editing the file or to reset a demo.
func main() {
	cfg := lending.LoadConfig()

	fmt.Println("Cleaning up existing database files...")
	dbFiles := []string{cfg.DBPath, cfg.DBPath + "-shm", cfg.DBPath + "-wal"}
	for _, file := range dbFiles {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: Could not remove %s: %v\n", file, err)
		}
	}
	fmt.Println("Database cleanup complete.")

	db, err := lending.NewDatabase(cfg.DBPath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	cds, err := db.ListCDs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading catalog: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nSeeded %d titles into %s:\n", len(cds), cfg.DBPath)
	fmt.Printf("%-3s %-30s %-15s %-6s %s\n", "ID", "Title", "Artist", "Year", "Copies")
	for _, cd := range cds {
		fmt.Printf("%-3d %-30s %-15s %-6d %d\n", cd.ID, cd.Name, cd.Artist, cd.ReleasedYear, cd.Quantity)
	}
}
