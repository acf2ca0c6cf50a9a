// storefront is a CLI for shopping against the storefront services.
// Each command performs a single operation, making it composable for
// scripts.
//
// Commands:
//
//	storefront login [-token TOKEN]
//	storefront logout
//	storefront whoami
//	storefront products
//	storefront cart
//	storefront add -product ID
//	storefront remove -product ID
//	storefront buy -product ID [-address ADDR]
//	storefront checkout [-address ADDR]
//
// Examples:
//
//	storefront login -token "$(pbpaste)"
//	storefront products
//	storefront add -product 60
//	storefront checkout -address "150 Elgin Street, Ottawa"
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/order"
	"storefront/internal/remote"
	"storefront/internal/stock"
	"storefront/internal/storefront"
	"storefront/internal/token"
)

// Global flags (apply to all commands)
var (
	quiet   bool
	noColor bool
	verbose bool
)

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func disableColors() {
	colorReset, colorRed, colorGreen = "", "", ""
	colorYellow, colorCyan, colorGray, colorBold = "", "", "", ""
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "login":
		runLogin(args)
	case "logout":
		runLogout(args)
	case "whoami":
		runWhoami(args)
	case "products":
		runProducts(args)
	case "cart":
		runCart(args)
	case "add":
		runAdd(args)
	case "remove":
		runRemove(args)
	case "buy":
		runBuy(args)
	case "checkout":
		runCheckout(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `storefront - shop from the terminal

Usage:
  storefront <command> [options]

Commands:
  login     Save an identity token (paste the redirect URL or raw token)
  logout    Clear the saved token
  whoami    Show the signed-in identity
  products  List catalog products with availability
  cart      Show the current cart
  add       Add one unit of a product to the cart
  remove    Remove a product's line from the cart
  buy       Buy a single unit immediately, bypassing the cart
  checkout  Convert the cart into orders

Examples:
  # Sign in with a token copied from the hosted login redirect
  storefront login -token "$(pbpaste)"

  # Browse and shop
  storefront products
  storefront add -product 60
  storefront checkout -address "150 Elgin Street, Ottawa"

Run 'storefront <command> -h' for command-specific options.
`)
}

// newFlagSet creates a flag set with the shared flags registered.
func newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.BoolVar(&quiet, "q", false, "Quiet mode - minimal output")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&verbose, "v", false, "Verbose - debug logging")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: storefront %s\n\nOptions:\n", usage)
		fs.PrintDefaults()
	}
	return fs
}

func afterParse() {
	if noColor {
		disableColors()
	}
}

// newLogger builds the CLI logger. Logs go to stderr so quiet-mode
// stdout stays script-friendly.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig(ctx context.Context) *config.Config {
	cfg, err := config.Load(ctx)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	return cfg
}

// loadIdentity resolves the saved token to an identity, failing closed
// when no decodable token exists.
func loadIdentity(cfg *config.Config) model.Identity {
	store := token.NewStore(cfg.Store.TokenDir)
	tok, err := store.Load()
	if err != nil {
		fatal("Failed to read token: %v", err)
	}

	identity, err := token.DecodeIdentity(tok)
	if err != nil {
		fatal("Not signed in. Run 'storefront login' first. (%v)", err)
	}
	return identity
}

// newStorefront wires the full client stack for the signed-in user.
func newStorefront(cfg *config.Config, logger *slog.Logger) *storefront.Storefront {
	identity := loadIdentity(cfg)
	rc := remote.New(cfg.RequestTimeout(), logger)

	return storefront.New(
		catalog.NewClient(rc, cfg.Store.CatalogURL, cfg.EffectiveDefaultStock()),
		cart.NewClient(rc, cfg.Store.CartURL),
		order.NewClient(rc, cfg.Store.OrderURL),
		identity,
		logger,
	)
}

// identityEndpoint builds the hosted sign-in endpoint from config.
func identityEndpoint(cfg *config.Config) (token.Endpoint, bool) {
	if cfg.Store.AuthDomain == "" {
		return token.Endpoint{}, false
	}
	return token.Endpoint{
		Domain:      cfg.Store.AuthDomain,
		ClientID:    cfg.Store.ClientID,
		RedirectURI: cfg.Store.RedirectURI,
		LogoutURI:   cfg.Store.LogoutURI,
	}, true
}

// =============================================================================
// IDENTITY COMMANDS
// =============================================================================

func runLogin(args []string) {
	fs := newFlagSet("login", "login [-token TOKEN]")
	var rawToken string
	fs.StringVar(&rawToken, "token", "", "Identity token or full redirect URL (prompted if omitted)")
	fs.Parse(args)
	afterParse()

	ctx := context.Background()
	cfg := loadConfig(ctx)

	if rawToken == "" {
		if ep, ok := identityEndpoint(cfg); ok {
			printInfo("Open this URL in a browser and sign in:")
			fmt.Printf("  %s%s%s\n", colorCyan, ep.LoginURL(), colorReset)
		}
		fmt.Fprint(os.Stderr, "Paste the redirect URL (or raw token): ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			fatal("Failed to read input: %v", err)
		}
		rawToken = strings.TrimSpace(line)
	}

	// Accept either a bare token or the full redirect URL with a
	// fragment.
	if tok, err := token.ParseCallbackFragment(rawToken); err == nil {
		rawToken = tok
	}

	identity, err := token.DecodeIdentity(rawToken)
	if err != nil {
		fatal("Token is not usable: %v", err)
	}

	store := token.NewStore(cfg.Store.TokenDir)
	if err := store.Save(rawToken); err != nil {
		fatal("Failed to save token: %v", err)
	}

	printSuccess("Signed in as %s%s%s", colorBold, identity.UserName, colorReset)
	if !quiet && identity.Email != "" {
		fmt.Printf("  Email: %s\n", identity.Email)
	}
}

func runLogout(args []string) {
	fs := newFlagSet("logout", "logout")
	fs.Parse(args)
	afterParse()

	ctx := context.Background()
	cfg := loadConfig(ctx)

	store := token.NewStore(cfg.Store.TokenDir)
	if err := store.Clear(); err != nil {
		fatal("Failed to clear token: %v", err)
	}

	printSuccess("Signed out")
	if ep, ok := identityEndpoint(cfg); ok && !quiet {
		printInfo("To also end the hosted session, open:")
		fmt.Printf("  %s%s%s\n", colorCyan, ep.LogoutURL(), colorReset)
	}
}

func runWhoami(args []string) {
	fs := newFlagSet("whoami", "whoami")
	fs.Parse(args)
	afterParse()

	ctx := context.Background()
	cfg := loadConfig(ctx)
	identity := loadIdentity(cfg)

	if quiet {
		fmt.Println(identity.UserID)
		return
	}
	fmt.Printf("%s%s%s\n", colorBold, identity.UserName, colorReset)
	fmt.Printf("  ID:    %s\n", identity.UserID)
	if identity.Email != "" {
		fmt.Printf("  Email: %s\n", identity.Email)
	}
}

// =============================================================================
// SHOPPING COMMANDS
// =============================================================================

func runProducts(args []string) {
	fs := newFlagSet("products", "products")
	fs.Parse(args)
	afterParse()

	ctx := context.Background()
	sf := newStorefront(loadConfig(ctx), newLogger())

	views, err := sf.Products(ctx)
	if err != nil {
		fatal("Failed to load products: %v", err)
	}

	for _, pv := range views {
		if quiet {
			fmt.Println(pv.Product.ProductID)
			continue
		}
		fmt.Printf("%s%s%s  %s(%s)%s\n",
			colorBold, pv.Product.Name, colorReset,
			colorGray, pv.Product.ProductID, colorReset)
		fmt.Printf("  %s  %s\n",
			model.FormatCents(pv.Product.Price), availabilityLabel(pv.View))
		if verbose && pv.Product.Description != "" {
			fmt.Printf("  %s%s%s\n", colorGray, pv.Product.Description, colorReset)
		}
	}
}

func runCart(args []string) {
	fs := newFlagSet("cart", "cart")
	fs.Parse(args)
	afterParse()

	ctx := context.Background()
	sf := newStorefront(loadConfig(ctx), newLogger())

	summary, err := sf.Cart(ctx)
	if err != nil {
		fatal("Failed to load cart: %v", err)
	}

	if quiet {
		fmt.Println(summary.Count)
		return
	}
	if len(summary.Lines) == 0 {
		printInfo("Cart is empty")
		return
	}

	for _, line := range summary.Lines {
		fmt.Printf("%s%s%s  x%d  %s\n",
			colorBold, line.Name, colorReset,
			line.Quantity, model.FormatCents(line.Subtotal()))
	}
	fmt.Printf("\n  %d item(s), total %s%s%s\n",
		summary.Count, colorGreen, model.FormatCents(summary.Total), colorReset)
}

func runAdd(args []string) {
	fs := newFlagSet("add", "add -product ID")
	var productID string
	fs.StringVar(&productID, "product", "", "Product ID (required)")
	fs.Parse(args)
	afterParse()

	if productID == "" {
		fs.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	sf := newStorefront(loadConfig(ctx), newLogger())

	if err := sf.AddToCart(ctx, productID); err != nil {
		fatal("Failed to add to cart: %v", err)
	}

	view := sf.Engine().View(productID)
	printSuccess("Added to cart")
	if !quiet {
		fmt.Printf("  In cart: %d  %s\n", view.InCart, availabilityLabel(view))
	}
}

func runRemove(args []string) {
	fs := newFlagSet("remove", "remove -product ID")
	var productID string
	fs.StringVar(&productID, "product", "", "Product ID (required)")
	fs.Parse(args)
	afterParse()

	if productID == "" {
		fs.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	sf := newStorefront(loadConfig(ctx), newLogger())

	if err := sf.RemoveFromCart(ctx, productID); err != nil {
		fatal("Failed to remove from cart: %v", err)
	}
	printSuccess("Removed from cart")
}

func runBuy(args []string) {
	fs := newFlagSet("buy", "buy -product ID [-address ADDR]")
	var productID, address string
	fs.StringVar(&productID, "product", "", "Product ID (required)")
	fs.StringVar(&address, "address", "", "Shipping address (prompted if omitted)")
	fs.BoolVar(&assumeYes, "yes", false, "Skip the confirmation prompt")
	fs.Parse(args)
	afterParse()

	if productID == "" {
		fs.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	sf := newStorefront(loadConfig(ctx), newLogger())

	result, err := sf.BuyNow(ctx, productID, &terminalPrompter{address: address})
	if errors.Is(err, storefront.ErrCanceled) {
		printWarning("Purchase canceled")
		return
	}
	if err != nil {
		fatal("Failed to buy: %v", err)
	}

	if quiet {
		fmt.Println(result.Receipt.OrderID)
		return
	}
	printSuccess("Order placed!")
	fmt.Printf("  %s for %s\n", result.Product.Name, model.FormatCents(result.Product.Price))
	fmt.Printf("  Order ID: %s%s%s\n", colorGreen, result.Receipt.OrderID, colorReset)
}

func runCheckout(args []string) {
	fs := newFlagSet("checkout", "checkout [-address ADDR]")
	var address string
	fs.StringVar(&address, "address", "", "Shipping address (prompted if omitted)")
	fs.Parse(args)
	afterParse()

	ctx := context.Background()
	sf := newStorefront(loadConfig(ctx), newLogger())

	result, err := sf.Checkout(ctx, &terminalPrompter{address: address})
	if errors.Is(err, storefront.ErrCartEmpty) {
		printWarning("Cart is empty, nothing to check out")
		return
	}
	if err != nil {
		fatal("Checkout failed: %v", err)
	}

	if quiet {
		fmt.Println(result.Reference)
		return
	}

	if result.Succeeded == result.Attempted {
		printSuccess("Checkout complete: %d order(s) placed", result.Succeeded)
	} else if result.Succeeded > 0 {
		printWarning("Checkout partially complete: %d of %d order(s) placed",
			result.Succeeded, result.Attempted)
	} else {
		printError("Checkout failed: no orders placed, cart left unchanged")
	}

	for _, failure := range result.Failures {
		printError("%s", failure)
	}
	fmt.Printf("  Reference: %s%s%s\n", colorCyan, result.Reference, colorReset)
	fmt.Printf("  Total: %s%s%s\n", colorGreen, model.FormatCents(result.Total), colorReset)
}

// =============================================================================
// PROMPTING
// =============================================================================

var assumeYes bool

// terminalPrompter collects checkout input from stdin. A preset
// address skips the prompt.
type terminalPrompter struct {
	address string
}

func (p *terminalPrompter) Address(context.Context) (string, error) {
	if p.address != "" {
		return p.address, nil
	}
	fmt.Fprint(os.Stderr, "Shipping address: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *terminalPrompter) Confirm(_ context.Context, summary string) (bool, error) {
	if assumeYes {
		return true, nil
	}
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", summary)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

// availabilityLabel renders the availability label with color.
func availabilityLabel(v stock.View) string {
	switch {
	case v.CanAdd:
		return fmt.Sprintf("%s%s%s", colorGreen, v.Label, colorReset)
	case v.InCart > 0:
		return fmt.Sprintf("%s%s%s", colorYellow, v.Label, colorReset)
	default:
		return fmt.Sprintf("%s%s%s", colorRed, v.Label, colorReset)
	}
}

func printSuccess(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func printError(format string, args ...interface{}) {
	fmt.Printf("%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
}

func printWarning(format string, args ...interface{}) {
	fmt.Printf("%s⚠ %s%s\n", colorYellow, fmt.Sprintf(format, args...), colorReset)
}

func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s→ %s%s\n", colorGray, fmt.Sprintf(format, args...), colorReset)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
	os.Exit(1)
}
