package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/fjod/freshfruit-storefront/internal/auth"
	"github.com/fjod/freshfruit-storefront/internal/catalog"
	"github.com/fjod/freshfruit-storefront/internal/checkout"
	"github.com/fjod/freshfruit-storefront/internal/domain"
	"github.com/fjod/freshfruit-storefront/internal/orders"
)

var errUnknownFood = errors.New("no such food")

func newCLI(out, errOut io.Writer) *cli.App {
	run := func(fn action) cli.ActionFunc { return withApp(out, errOut, fn) }

	return &cli.App{
		Name:      "storefront",
		Usage:     "browse, fill a cart and order from the FreshFruit store",
		Version:   version,
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a YAML config file", EnvVars: []string{"STOREFRONT_CONFIG"}},
			&cli.StringFlag{Name: "backend-url", Usage: "override the backend base URL"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		Commands: []*cli.Command{
			{
				Name:  "foods",
				Usage: "list the catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Value: catalog.AllCategories, Usage: "only show this category"},
					&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "match name or description"},
				},
				Action: run(listFoods),
			},
			{
				Name:      "food",
				Usage:     "show one food and related picks",
				ArgsUsage: "ID",
				Action:    run(showFood),
			},
			{
				Name:   "categories",
				Usage:  "list menu categories",
				Action: run(listCategories),
			},
			{
				Name:  "cart",
				Usage: "inspect or change the cart",
				Subcommands: []*cli.Command{
					{Name: "show", Usage: "print cart lines and totals", Action: run(showCart)},
					{Name: "add", Usage: "add one of a food", ArgsUsage: "ID", Action: run(addToCart)},
					{Name: "dec", Usage: "remove one of a food", ArgsUsage: "ID", Action: run(decrementCart)},
					{Name: "remove", Usage: "drop a food from this session's cart view", ArgsUsage: "ID", Action: run(removeFromCart)},
				},
			},
			{
				Name:  "login",
				Usage: "sign in and load the saved cart",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: run(login),
			},
			{
				Name:  "register",
				Usage: "create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name"},
					&cli.StringFlag{Name: "email"},
					&cli.StringFlag{Name: "phone"},
					&cli.StringFlag{Name: "password"},
					&cli.StringFlag{Name: "confirm"},
					&cli.BoolFlag{Name: "agree", Usage: "agree to the terms and conditions"},
				},
				Action: run(register),
			},
			{
				Name:   "logout",
				Usage:  "forget the saved session",
				Action: run(logout),
			},
			{
				Name:   "whoami",
				Usage:  "show the signed-in user",
				Action: run(whoami),
			},
			{
				Name:  "checkout",
				Usage: "place an order for the cart and pay for it",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name"},
					&cli.StringFlag{Name: "email"},
					&cli.StringFlag{Name: "phone"},
					&cli.StringFlag{Name: "address"},
					&cli.StringFlag{Name: "city"},
					&cli.StringFlag{Name: "pincode"},
					&cli.StringFlag{Name: "instructions"},
				},
				Action: run(placeOrder),
			},
			{
				Name:   "orders",
				Usage:  "list your orders",
				Action: run(listOrders),
			},
		},
	}
}

func listFoods(_ context.Context, a *app, c *cli.Context) error {
	items := catalog.Filter(a.store.Catalog(), c.String("category"), c.String("search"))
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No foods match.")
		return nil
	}
	return renderFoods(a.out, items, a.store.Quantities())
}

func showFood(_ context.Context, a *app, c *cli.Context) error {
	items := a.store.Catalog()
	item, ok := catalog.Find(items, c.Args().First())
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownFood, c.Args().First())
	}
	return renderFood(a.out, item, a.store.Quantity(item.ID),
		catalog.Related(items, item, catalog.DefaultRelatedLimit))
}

func listCategories(_ context.Context, a *app, _ *cli.Context) error {
	for _, category := range catalog.MenuCategories {
		fmt.Fprintln(a.out, category)
	}
	return nil
}

func showCart(_ context.Context, a *app, _ *cli.Context) error {
	return renderCart(a.out, a.store.LineItems())
}

// requireFood rejects ids missing from a loaded catalog. An empty catalog is
// treated as unknown and lets the id through.
func requireFood(a *app, id string) error {
	items := a.store.Catalog()
	if id == "" {
		return fmt.Errorf("%w: missing ID", errUnknownFood)
	}
	if len(items) == 0 {
		return nil
	}
	if _, ok := catalog.Find(items, id); !ok {
		return fmt.Errorf("%w: %q", errUnknownFood, id)
	}
	return nil
}

func addToCart(_ context.Context, a *app, c *cli.Context) error {
	id := c.Args().First()
	if err := requireFood(a, id); err != nil {
		return err
	}
	a.store.Increment(id)
	fmt.Fprintf(a.out, "%s: %d in cart\n", id, a.store.Quantity(id))
	return nil
}

func decrementCart(_ context.Context, a *app, c *cli.Context) error {
	id := c.Args().First()
	if err := requireFood(a, id); err != nil {
		return err
	}
	a.store.Decrement(id)
	fmt.Fprintf(a.out, "%s: %d in cart\n", id, a.store.Quantity(id))
	return nil
}

func removeFromCart(_ context.Context, a *app, c *cli.Context) error {
	id := c.Args().First()
	if err := requireFood(a, id); err != nil {
		return err
	}
	a.store.RemoveFromCart(id)
	fmt.Fprintf(a.out, "%s removed from this session's cart\n", id)
	return nil
}

func login(ctx context.Context, a *app, c *cli.Context) error {
	s, err := a.auth.Login(ctx, auth.LoginForm{
		Email:    c.String("email"),
		Password: c.String("password"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome back, %s. %d item(s) in your cart.\n", displayName(s.Name), a.store.CartCount())
	return nil
}

func register(ctx context.Context, a *app, c *cli.Context) error {
	err := a.auth.Register(ctx, auth.RegisterForm{
		FullName:        c.String("name"),
		Email:           c.String("email"),
		Phone:           c.String("phone"),
		Password:        c.String("password"),
		ConfirmPassword: c.String("confirm"),
		AgreeToTerms:    c.Bool("agree"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Registration successful. Sign in with `storefront login`.")
	return nil
}

func logout(ctx context.Context, a *app, _ *cli.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func whoami(_ context.Context, a *app, _ *cli.Context) error {
	s, err := a.auth.RequireSession()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", displayName(s.Name))
	return nil
}

func placeOrder(ctx context.Context, a *app, c *cli.Context) error {
	wf := a.checkout()
	quote := wf.Quote()
	if err := renderCart(a.out, quote.Lines); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Estimated delivery: %d minutes\n\n", quote.DeliveryMinutes)

	res, err := wf.Submit(ctx, checkout.DeliveryForm{
		Name:                c.String("name"),
		Email:               c.String("email"),
		Phone:               c.String("phone"),
		Address:             c.String("address"),
		City:                c.String("city"),
		Pincode:             c.String("pincode"),
		SpecialInstructions: c.String("instructions"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Payment successful! Order %s is being prepared. Paid %s.\n",
		res.OrderID, rupees(res.Totals.Total))
	return nil
}

func listOrders(ctx context.Context, a *app, _ *cli.Context) error {
	list, err := a.orders.List(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			return err
		}
		return errors.New(orders.MsgLoadFailed)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "You have no orders yet.")
		return nil
	}
	return renderOrders(a.out, list)
}

func displayName(name string) string {
	if name == "" {
		return "customer"
	}
	return name
}
