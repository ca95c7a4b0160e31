package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"cloud.google.com/go/storage"
	"github.com/spf13/pflag"

	"github.com/tair/storefront/internal/catalog/browse"
	"github.com/tair/storefront/internal/catalog/domain"
	"github.com/tair/storefront/internal/catalog/fallback"
	"github.com/tair/storefront/internal/catalog/form"
	"github.com/tair/storefront/internal/catalog/format"
	"github.com/tair/storefront/internal/catalog/gateway"
	"github.com/tair/storefront/internal/media"
	"github.com/tair/storefront/kafka"
	"github.com/tair/storefront/pkg/logger"
)

func newFlagSet(name, args string, errOut io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintf(errOut, "Usage: admin %s %s\n\nFlags:\n%s", name, args, fs.FlagUsages())
	}
	return fs
}

func runLogin(ctx context.Context, c *console, args []string) error {
	fs := newFlagSet("login", "--email EMAIL [--password PASSWORD]", c.errOut)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (read from stdin when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *password == "" {
		fmt.Fprint(c.errOut, "Password: ")
		line, err := bufio.NewReader(c.in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read password: %w", err)
		}
		*password = strings.TrimRight(line, "\r\n")
	}

	if _, err := c.client.Login(ctx, gateway.Credentials{Email: *email, Password: *password}); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Logged in.")
	return nil
}

func runLogout(ctx context.Context, c *console, args []string) error {
	fs := newFlagSet("logout", "", c.errOut)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.tokens.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Logged out.")
	return nil
}

func runList(ctx context.Context, c *console, args []string) error {
	fs := newFlagSet("list", "[flags]", c.errOut)
	search := fs.String("search", "", "match name, summary, description and tags")
	category := fs.String("category", "", "category or tag to match")
	tags := fs.StringSlice("tags", nil, "any of these tags")
	minPrice := fs.Float64("min-price", 0, "lowest price")
	maxPrice := fs.Float64("max-price", 0, "highest price")
	sort := fs.String("sort", string(domain.SortFeatured), "featured, price_asc, price_desc, rating or newest")
	featured := fs.Bool("featured", false, "only featured products (--featured=false for the rest)")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 12, "page size, 0 for everything")
	asJSON := fs.Bool("json", false, "print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	spec := domain.FilterSpec{
		Search:   *search,
		Category: *category,
		Tags:     *tags,
		Sort:     domain.SortKey(*sort),
		Page:     *page,
		Limit:    *limit,
	}
	if fs.Changed("min-price") {
		spec.MinPrice = minPrice
	}
	if fs.Changed("max-price") {
		spec.MaxPrice = maxPrice
	}
	if fs.Changed("featured") {
		spec.Featured = featured
	}

	demo, err := fallback.Products()
	if err != nil {
		return err
	}

	browser := browse.New(c.client, demo, 0)
	browser.Refresh(ctx, spec)
	view := browser.View(spec)

	if view.Fallback {
		msg := "Catalog API returned no products."
		if view.Error != "" {
			msg = view.Error
		}
		fmt.Fprintf(c.errOut, "%s Showing the bundled demo catalog.\n", msg)
	}

	cards := format.Cards(view.Items)
	if *asJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(cards)
	}
	printCards(c.out, cards)
	fmt.Fprintf(c.out, "\nPage %d, %d of %d products\n", view.Page, len(cards), view.Total)
	return nil
}

func printCards(out io.Writer, cards []format.Card) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tRATING\tSTOCK\tBADGES")
	for _, card := range cards {
		price := "-"
		if card.DisplayPrice != nil {
			price = card.DisplayPrice.Current
			if card.DisplayPrice.Original != "" {
				price += fmt.Sprintf(" (was %s, -%d%%)", card.DisplayPrice.Original, card.DisplayPrice.Discount)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			card.ID, card.Name, price, orDash(card.RatingLabel), orDash(card.InventoryLabel), strings.Join(card.DisplayBadges, ", "))
	}
	w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// fieldFlags registers one string flag per form field, named in kebab case
func fieldFlags(fs *pflag.FlagSet) map[string]*string {
	values := make(map[string]*string, len(form.Fields))
	for _, field := range form.Fields {
		values[field] = fs.String(kebab(field), "", "product "+kebab(field))
	}
	return values
}

func kebab(field string) string {
	var b strings.Builder
	for _, r := range field {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func runCreate(ctx context.Context, c *console, args []string) error {
	fs := newFlagSet("create", "--name NAME --price PRICE [flags]", c.errOut)
	fields := fieldFlags(fs)
	image := fs.String("image", "", "path of an image to upload")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return c.submit(ctx, fs, fields, *image, nil)
}

func runEdit(ctx context.Context, c *console, args []string) error {
	fs := newFlagSet("edit", "<id> [flags]", c.errOut)
	fields := fieldFlags(fs)
	image := fs.String("image", "", "path of a replacement image")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("edit needs exactly one product id")
	}

	current, err := c.client.GetByID(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return c.submit(ctx, fs, fields, *image, &current)
}

func (c *console) submit(ctx context.Context, fs *pflag.FlagSet, fields map[string]*string, image string, editing *domain.Product) error {
	var images media.Store
	if image != "" {
		store, closeStore, err := imageStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()
		images = store
	}

	notifier, closeNotifier := changeNotifier()
	defer closeNotifier()

	opts := []form.Option{form.WithImageFolder(getEnv("MEDIA_FOLDER", form.DefaultImageFolder))}
	if notifier != nil {
		opts = append(opts, form.WithNotifier(notifier))
	}
	machine := form.NewMachine(c.client, images, opts...)
	if editing != nil {
		machine.StartEditing(*editing)
	}

	for _, field := range form.Fields {
		if fs.Changed(kebab(field)) {
			if err := machine.ChangeField(field, *fields[field]); err != nil {
				return err
			}
		}
	}

	if image != "" {
		file, err := media.OpenFile(image)
		if err != nil {
			return err
		}
		if err := machine.SelectImageFile(&file); err != nil {
			return err
		}
	}

	saved, err := machine.Submit(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "%s (id %s)\n", machine.Snapshot().Feedback, saved.ID)
	return nil
}

func runDelete(ctx context.Context, c *console, args []string) error {
	fs := newFlagSet("delete", "<id> [--yes]", c.errOut)
	yes := fs.BoolP("yes", "y", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("delete needs exactly one product id")
	}

	notifier, closeNotifier := changeNotifier()
	defer closeNotifier()

	var opts []form.Option
	if notifier != nil {
		opts = append(opts, form.WithNotifier(notifier))
	}
	machine := form.NewMachine(c.client, nil, opts...)

	confirm := func(id string) bool {
		if *yes {
			return true
		}
		return prompt(c.in, c.errOut, fmt.Sprintf("Delete product %s? [y/N] ", id))
	}

	if err := machine.Delete(ctx, fs.Arg(0), confirm); err != nil {
		return err
	}
	fmt.Fprintln(c.out, machine.Snapshot().Feedback)
	return nil
}

func prompt(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprint(out, question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// changeNotifier publishes product changes when Kafka is configured so the
// storefront drops its cached catalog
func changeNotifier() (form.ChangeNotifier, func()) {
	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers == "" {
		return nil, func() {}
	}

	publisher, err := kafka.NewPublisher(strings.Split(brokers, ","))
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Kafka publisher unavailable - storefront cache expires by TTL only")
		return nil, func() {}
	}
	return publisher, func() { _ = publisher.Close() }
}

func openBucket(ctx context.Context, bucket string) (media.Store, func(), error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to create storage client: %w", err)
	}
	return media.NewGCSStore(client, bucket), func() { _ = client.Close() }, nil
}
