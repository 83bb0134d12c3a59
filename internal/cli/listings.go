package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hoomlabs/hoom/internal/client"
	"github.com/hoomlabs/hoom/internal/listing"
)

func newListingsCmd() *cobra.Command {
	var (
		opts     client.ListOptions
		minPrice float64
		maxPrice float64
	)

	cmd := &cobra.Command{
		Use:   "listings",
		Short: "List listings",
		Long: "List listings with the dashboard's filters. Without flags every portal and promoter is " +
			"included and titles containing the exclusion text are hidden.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("min") {
				opts.MinPrice = &minPrice
			}
			if cmd.Flags().Changed("max") {
				opts.MaxPrice = &maxPrice
			}
			return runListings(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Portals, "portal", nil, "source portal to include (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Promoters, "promoter", nil, fmt.Sprintf("promoter name to include, %q for unassigned (repeatable)", listing.NoPromoter))
	cmd.Flags().Float64Var(&minPrice, "min", 0, "minimum price")
	cmd.Flags().Float64Var(&maxPrice, "max", 0, "maximum price")
	cmd.Flags().StringVar(&opts.Type, "type", "", "property type")
	cmd.Flags().BoolVar(&opts.NoExclude, "all", false, "do not hide titles containing the exclusion text")

	return cmd
}

func runListings(cmd *cobra.Command, opts client.ListOptions) error {
	c, err := newAPIClient()
	if err != nil {
		return err
	}

	resp, err := c.ListListings(opts)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	return printListingTable(cmd.OutOrStdout(), resp.Listings, resp.Summary)
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show listing details",
		Long:  "Show every field of a listing, its promoter and its photos.",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseID("listing", args[0])
	if err != nil {
		return err
	}

	c, err := newAPIClient()
	if err != nil {
		return err
	}
	v, err := c.GetListing(id)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), v)
	}
	printListing(cmd.OutOrStdout(), v)
	return nil
}

func newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a listing",
		Long: "Change listing fields. Only the flags given are changed; an empty value clears a field " +
			"and --promoter-id 0 removes the promoter.",
		Args: cobra.ExactArgs(1),
		RunE: runEdit,
	}

	cmd.Flags().String("title", "", "title")
	cmd.Flags().String("price", "", "price")
	cmd.Flags().String("location", "", "location text")
	cmd.Flags().String("description", "", "description")
	for _, f := range intFields {
		cmd.Flags().String(f.flag, "", f.usage)
	}
	cmd.Flags().Int64("promoter-id", 0, "promoter id (0 for none)")

	return cmd
}

// intFields are the optional whole-number columns the edit command sets.
var intFields = []struct {
	flag  string
	usage string
	field func(u *listing.Update) **int64
}{
	{"construction", "construction area m²", func(u *listing.Update) **int64 { return &u.ConstructionArea }},
	{"land", "land area m²", func(u *listing.Update) **int64 { return &u.LandArea }},
	{"bedrooms", "bedrooms", func(u *listing.Update) **int64 { return &u.Bedrooms }},
	{"bathrooms", "full bathrooms", func(u *listing.Update) **int64 { return &u.FullBathrooms }},
	{"half-bathrooms", "half bathrooms", func(u *listing.Update) **int64 { return &u.HalfBathrooms }},
	{"parking", "parking spaces", func(u *listing.Update) **int64 { return &u.ParkingSpaces }},
	{"levels", "levels", func(u *listing.Update) **int64 { return &u.Levels }},
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID("listing", args[0])
	if err != nil {
		return err
	}

	c, err := newAPIClient()
	if err != nil {
		return err
	}
	current, err := c.GetListing(id)
	if err != nil {
		return err
	}

	u, err := applyEditFlags(cmd, listing.UpdateFrom(current.Listing))
	if err != nil {
		return err
	}

	v, err := c.UpdateListing(id, u)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), v)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Listing #%d updated.\n", id)
	return nil
}

// applyEditFlags overlays the flags the user set onto u.
func applyEditFlags(cmd *cobra.Command, u listing.Update) (listing.Update, error) {
	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			v, _ := flags.GetString(name)
			*dst = strings.TrimSpace(v)
		}
	}
	str("title", &u.Title)
	str("location", &u.LocationText)
	str("description", &u.Description)

	if flags.Changed("price") {
		v, _ := flags.GetString("price")
		p, err := optionalFloat("price", v)
		if err != nil {
			return u, err
		}
		u.Price = p
	}
	for _, f := range intFields {
		if !flags.Changed(f.flag) {
			continue
		}
		v, _ := flags.GetString(f.flag)
		n, err := optionalInt(f.flag, v)
		if err != nil {
			return u, err
		}
		*f.field(&u) = n
	}
	if flags.Changed("promoter-id") {
		pid, _ := flags.GetInt64("promoter-id")
		u.PromoterID = nil
		if pid > 0 {
			u.PromoterID = &pid
		}
	}
	return u, nil
}

func newRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a listing",
		Long:  "Permanently delete a listing after confirmation.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func runRemove(cmd *cobra.Command, arg string, yes bool) error {
	id, err := parseID("listing", arg)
	if err != nil {
		return err
	}

	c, err := newAPIClient()
	if err != nil {
		return err
	}

	if !yes {
		v, err := c.GetListing(id)
		if err != nil {
			return err
		}
		if !confirm(cmd, fmt.Sprintf("Delete listing #%d %q?", id, v.Title)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	if err := c.DeleteListing(id); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"id":      id,
			"removed": true,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Listing #%d removed.\n", id)
	return nil
}

func newPrimaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "primary <id> <photo-url>",
		Short: "Set a listing's primary photo",
		Long:  "Move a photo of the listing to the front of its gallery.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhoto(cmd, args, true)
		},
	}
}

func newDropPhotoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop-photo <id> <photo-url>",
		Short: "Remove a photo from a listing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhoto(cmd, args, false)
		},
	}
}

func runPhoto(cmd *cobra.Command, args []string, primary bool) error {
	id, err := parseID("listing", args[0])
	if err != nil {
		return err
	}

	c, err := newAPIClient()
	if err != nil {
		return err
	}

	var v *listing.View
	if primary {
		v, err = c.SetPrimaryPhoto(id, args[1])
	} else {
		v, err = c.RemovePhoto(id, args[1])
	}
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), v)
	}
	printPhotos(cmd.OutOrStdout(), v.Photos)
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import listings",
		Long:  "Insert listings from a JSON array of objects keyed by column name.",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	var listings []listing.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	if len(listings) == 0 {
		return fmt.Errorf("%s holds no listings", args[0])
	}

	c, err := newAPIClient()
	if err != nil {
		return err
	}
	n, err := c.ImportListings(listings)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]int{"imported": n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d listings.\n", n)
	return nil
}

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Drop the server's cached data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient()
			if err != nil {
				return err
			}
			if err := c.Reload(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Data reloaded.")
			return nil
		},
	}
}

// confirm asks a yes/no question on the command's input.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// optionalFloat parses a flag value; empty clears the field.
func optionalFloat(name, v string) (*float64, error) {
	v = strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("invalid --%s: %s", name, v)
	}
	return &f, nil
}

// optionalInt parses a flag value; empty clears the field.
func optionalInt(name, v string) (*int64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %s", name, v)
	}
	return &n, nil
}
