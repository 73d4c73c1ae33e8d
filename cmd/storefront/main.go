// Command storefront is a terminal storefront client: it manages a local
// cart snapshot, renders it, and starts a hosted payment checkout against the
// shop backend. It covers the same flow as the site's cart pages.
//
// Usage:
//
//	storefront [flags] add <name> <price> [component ...]
//	storefront [flags] qty <name> <quantity>
//	storefront [flags] remove <name>
//	storefront [flags] clear
//	storefront [flags] show
//	storefront [flags] checkout <email>
//	storefront [flags] comment <name> <message>
//	storefront [flags] comments
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/lescrepesdenanou/shop/internal/domain/cart"
	"github.com/lescrepesdenanou/shop/internal/storage/localstore"
	"github.com/lescrepesdenanou/shop/internal/storefront"
)

func main() {
	var (
		dir     = flag.String("dir", defaultDir(), "snapshot directory")
		backend = flag.String("backend", "https://lescrepesdenanou.onrender.com", "shop backend URL")
	)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, *dir, *backend, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nanou"
	}
	return home + "/.nanou"
}

func run(ctx context.Context, dir, backend string, args []string) error {
	if len(args) == 0 {
		return errors.New("missing command (add, qty, remove, clear, show, checkout, comment, comments)")
	}

	snapshots, err := localstore.New(dir)
	if err != nil {
		return err
	}
	store, err := cart.NewStore(snapshots)
	if err != nil {
		return err
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "add":
		if len(rest) < 2 {
			return errors.New("usage: add <name> <price> [component ...]")
		}
		price, err := decimal.NewFromString(rest[1])
		if err != nil {
			return errors.Wrap(err, "parse price")
		}
		if err := store.AddComposedItem(rest[0], price, rest[2:]); err != nil {
			return err
		}
		return show(store)

	case "qty":
		if len(rest) != 2 {
			return errors.New("usage: qty <name> <quantity>")
		}
		qty, err := strconv.Atoi(rest[1])
		if err != nil {
			return errors.Wrap(err, "parse quantity")
		}
		idx := store.IndexOf(rest[0])
		if idx < 0 {
			return errors.Wrapf(cart.ErrNotFound, "%q", rest[0])
		}
		if err := store.SetQuantity(idx, qty); err != nil {
			return err
		}
		return show(store)

	case "remove":
		if len(rest) != 1 {
			return errors.New("usage: remove <name>")
		}
		idx := store.IndexOf(rest[0])
		if idx < 0 {
			return errors.Wrapf(cart.ErrNotFound, "%q", rest[0])
		}
		if err := store.RemoveItem(idx); err != nil {
			return err
		}
		return show(store)

	case "clear":
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Println("panier vidé")
		return nil

	case "show":
		return show(store)

	case "checkout":
		if len(rest) != 1 {
			return errors.New("usage: checkout <email>")
		}
		client := storefront.NewClient(backend)
		url, err := client.InitiateCheckout(ctx, store.Items(), rest[0])
		if err != nil {
			return err
		}
		// The payment page is where the flow continues; print the URL the
		// browser would be redirected to.
		fmt.Println(url)
		return nil

	case "comment":
		if len(rest) != 2 {
			return errors.New("usage: comment <name> <message>")
		}
		book, err := storefront.NewTestimonialBook(snapshots)
		if err != nil {
			return err
		}
		if err := book.Add(rest[0], rest[1]); err != nil {
			return err
		}
		fmt.Println("merci pour votre avis !")
		return nil

	case "comments":
		book, err := storefront.NewTestimonialBook(snapshots)
		if err != nil {
			return err
		}
		for _, t := range book.Entries() {
			fmt.Printf("%s: %s\n", t.Name, t.Message)
		}
		return nil

	default:
		return errors.Errorf("unknown command %q", cmd)
	}
}

// show prints the rendered cart view as a table.
func show(store *cart.Store) error {
	view := storefront.Render(store.Items())

	tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	for _, row := range view.Rows {
		fmt.Fprintf(tw, "%s\t%s\tx%d\t%s\n", row.ItemName, row.UnitPrice, row.Quantity, row.LineTotal)
	}
	fmt.Fprintf(tw, "Total (%d articles)\t\t\t%s\n", view.ItemCount, view.Total)
	if err := tw.Flush(); err != nil {
		return err
	}
	if !view.CheckoutEnabled {
		fmt.Println("panier vide : paiement désactivé")
	}
	return nil
}
