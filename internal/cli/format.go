package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hoomlabs/hoom/internal/listing"
	"github.com/hoomlabs/hoom/internal/promoter"
)

// printListing prints a single listing in text format.
func printListing(w io.Writer, v *listing.View) {
	fmt.Fprintf(w, "Listing #%d\n", v.ID)
	fmt.Fprintf(w, "  Title:     %s\n", orDash(v.Title))
	fmt.Fprintf(w, "  Price:     %s\n", formatPrice(v.Price))
	fmt.Fprintf(w, "  Location:  %s\n", orDash(v.LocationText))
	fmt.Fprintf(w, "  Type:      %s\n", orDash(v.PropertyType))
	fmt.Fprintf(w, "  Portal:    %s\n", v.SourcePortal)
	fmt.Fprintf(w, "  Promoter:  %s\n", v.PromoterName)
	if v.PropertyURL != "" {
		fmt.Fprintf(w, "  URL:       %s\n", v.PropertyURL)
	}
	fmt.Fprintf(w, "  Built:     %s\n", formatCount(v.ConstructionArea, "m²"))
	fmt.Fprintf(w, "  Land:      %s\n", formatCount(v.LandArea, "m²"))
	fmt.Fprintf(w, "  Bedrooms:  %s\n", formatCount(v.Bedrooms, ""))
	fmt.Fprintf(w, "  Baths:     %s full, %s half\n", formatCount(v.FullBathrooms, ""), formatCount(v.HalfBathrooms, ""))
	fmt.Fprintf(w, "  Parking:   %s\n", formatCount(v.ParkingSpaces, ""))
	fmt.Fprintf(w, "  Levels:    %s\n", formatCount(v.Levels, ""))
	if v.HasLocation() {
		fmt.Fprintf(w, "  Point:     %.6f, %.6f\n", *v.Latitude, *v.Longitude)
	}
	if v.CreatedAt != nil {
		fmt.Fprintf(w, "  Added:     %s\n", v.CreatedAt.Format("2006-01-02"))
	}
	if v.Description != "" {
		fmt.Fprintf(w, "\n%s\n", v.Description)
	}
	fmt.Fprintln(w)
	printPhotos(w, v.Photos)
}

// printPhotos prints a gallery, primary first.
func printPhotos(w io.Writer, photos []string) {
	if len(photos) == 0 {
		fmt.Fprintln(w, "No photos.")
		return
	}
	fmt.Fprintf(w, "Photos (%d):\n", len(photos))
	for i, p := range photos {
		mark := " "
		if i == 0 {
			mark = "*"
		}
		fmt.Fprintf(w, " %s %d. %s\n", mark, i+1, p)
	}
}

// printListingTable prints listings as a formatted table followed by the
// summary line.
func printListingTable(w io.Writer, views []listing.View, s listing.Summary) error {
	if len(views) == 0 {
		fmt.Fprintf(w, "No listings match (0 of %d).\n", s.Total)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tTYPE\tPORTAL\tPROMOTER"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, "--\t-----\t-----\t----\t------\t--------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, v := range views {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, truncate(v.Title, 40), formatPrice(v.Price), orDash(v.PropertyType),
			v.SourcePortal, truncate(v.PromoterName, 24)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Fprintf(w, "\nListings found: %d of %d", s.Shown, s.Total)
	if s.AveragePrice != nil {
		fmt.Fprintf(w, " (average %s)", formatPrice(s.AveragePrice))
	}
	fmt.Fprintln(w)
	return nil
}

// printPromoterTable prints promoters with their listing counts.
func printPromoterTable(w io.Writer, promoters []promoter.Promoter) error {
	if len(promoters) == 0 {
		fmt.Fprintln(w, "No promoters registered yet.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tNAME\tCOMPANY\tPHONE\tEMAIL\tLISTINGS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, p := range promoters {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n",
			p.ID, truncate(p.Name, 30), orDash(p.Company), orDash(p.Phone), orDash(p.Email), len(p.Listings)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return tw.Flush()
}

// formatPrice renders a price with thousands separators, or "-".
func formatPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return message.NewPrinter(language.English).Sprintf("$%.0f", *p)
}

// formatCount renders an optional count; zero is shown as not applicable.
func formatCount(n *int64, unit string) string {
	if n == nil || *n == 0 {
		return "N/A"
	}
	s := message.NewPrinter(language.English).Sprintf("%d", *n)
	if unit != "" {
		s += " " + unit
	}
	return s
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
