package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ikkim/shopgenie-backend/internal/catalog"
)

// Exports the built-in catalog as a workbook that CATALOG_FILE can point at.
func main() {
	out := flag.String("out", "./data/catalog.xlsx", "workbook to write")
	check := flag.Bool("check", false, "read the workbook back after writing it")
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatal("Failed to create output directory:", err)
	}

	products := catalog.Default().List()
	if err := catalog.WriteWorkbook(products, *out); err != nil {
		log.Fatal("Failed to write catalog workbook:", err)
	}
	fmt.Printf("Wrote %d products to %s\n", len(products), *out)

	if *check {
		loaded, err := catalog.LoadWorkbook(*out)
		if err != nil {
			log.Fatal("Failed to read catalog workbook back:", err)
		}
		if loaded.Len() != len(products) {
			log.Fatalf("Workbook round trip lost products: wrote %d, read %d", len(products), loaded.Len())
		}
		fmt.Println("Workbook verified")
	}
}
