// Command dumpdaily prints the deterministic content rotation for a date
// as JSON, without touching the metadata backend. Useful for checking
// what the home screen will feature on a given day.
//
//	dumpdaily -date 2025-01-08
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"cinelog/services/discovery"
)

type selection struct {
	Family string `json:"family"`
	ID     string `json:"id"`
	Label  string `json:"label"`
}

type moodSelection struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Seed  int    `json:"seed"`
}

type output struct {
	Date     string          `json:"date"`
	DayIndex int             `json:"dayIndex"`
	Sections []selection     `json:"sections"`
	Moods    []moodSelection `json:"moods"`
}

func main() {
	dateArg := flag.String("date", "", "date to dump (YYYY-MM-DD, default today)")
	flag.Parse()

	day := time.Now()
	if *dateArg != "" {
		parsed, err := time.Parse("2006-01-02", *dateArg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid date %q: %v\n", *dateArg, err)
			os.Exit(1)
		}
		day = parsed
	}

	if err := discovery.ValidateCatalog(); err != nil {
		fmt.Fprintf(os.Stderr, "catalog validation failed: %v\n", err)
		os.Exit(1)
	}

	out := output{
		Date:     day.Format("2006-01-02"),
		DayIndex: discovery.DayIndex(day),
	}

	families := []struct {
		name   string
		table  []discovery.Descriptor
		offset int
	}{
		{"director", discovery.DirectorTable, discovery.OffsetDirector},
		{"era_country", discovery.EraCountryTable, discovery.OffsetEraCountry},
		{"genre", discovery.GenreTable, discovery.OffsetGenre},
		{"country", discovery.CountryTable, discovery.OffsetCountry},
	}
	for _, family := range families {
		d, err := discovery.SelectForDay(day, family.table, family.offset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "select %s: %v\n", family.name, err)
			os.Exit(1)
		}
		out.Sections = append(out.Sections, selection{Family: family.name, ID: d.ID, Label: d.Label})
	}

	for _, mood := range discovery.MoodTable {
		out.Moods = append(out.Moods, moodSelection{
			ID:    mood.ID,
			Label: mood.Label,
			Seed:  discovery.MoodSeed(day, mood.ID),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		panic(err)
	}
}
