package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/jyelen1110/Alfies-sub000/internal"
	"github.com/jyelen1110/Alfies-sub000/internal/catalog"
	"github.com/jyelen1110/Alfies-sub000/internal/config"
	"github.com/jyelen1110/Alfies-sub000/internal/pipeline"
	"github.com/jyelen1110/Alfies-sub000/internal/reconcile"
	"github.com/jyelen1110/Alfies-sub000/internal/storage"
	serverhttp "github.com/jyelen1110/Alfies-sub000/server/http"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx := context.Background()
	cmd := os.Args[1]
	switch cmd {
	case "catalog:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "catalog xlsx path")
		tenant := fs.String("tenant", cfg.DefaultTenant, "tenant scope")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		f, err := os.Open(*input)
		must(err)
		defer f.Close()
		items, err := catalog.ReadItemsXLSX(f, *tenant)
		must(err)
		must(db.UpsertCatalogItems(ctx, items))
		fmt.Printf("catalog import complete: %d items\n", len(items))
	case "customers:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "customers xlsx path")
		tenant := fs.String("tenant", cfg.DefaultTenant, "tenant scope")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		f, err := os.Open(*input)
		must(err)
		defer f.Close()
		records, err := catalog.ReadCustomersXLSX(f, *tenant)
		must(err)
		must(db.UpsertCustomers(ctx, records))
		fmt.Printf("customers import complete: %d records\n", len(records))
	case "orders:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "order csv or xlsx path")
		tenant := fs.String("tenant", cfg.DefaultTenant, "tenant scope")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		logger := config.SetupLogger(cfg)
		importer := pipeline.NewImportService(db, cfg, logger)

		var result pipeline.ImportResult
		if strings.HasSuffix(strings.ToLower(*input), ".xlsx") {
			f, err := os.Open(*input)
			must(err)
			defer f.Close()
			result, err = importer.ImportXLSX(ctx, *tenant, f)
			must(err)
		} else {
			raw, err := os.ReadFile(*input)
			must(err)
			result, err = importer.ImportCSV(ctx, *tenant, string(raw))
			must(err)
		}
		fmt.Printf("order imported id=%s number=%s matched=%d unmatched=%d total=%.2f\n",
			result.OrderID, result.OrderNumber, len(result.Matched), len(result.Unmatched), result.Total)
		if result.Customer.Customer != nil {
			fmt.Printf("customer: %s (%s)\n", result.Customer.Customer.ID, result.Customer.Confidence)
		} else {
			fmt.Println("customer: no match, needs manual assignment")
		}
	case "orders:resolve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		orderID := fs.String("orderId", "", "order id")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*orderID) == "" {
			must(fmt.Errorf("--orderId is required"))
		}
		order, err := db.MustOrder(ctx, *orderID)
		must(err)
		must(runResolveSession(ctx, db, cfg, order))
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		orderID := fs.String("orderId", "", "order id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*orderID) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--orderId and --out are required"))
		}
		order, err := db.MustOrder(ctx, *orderID)
		must(err)
		lines, err := db.ListOrderLines(ctx, *orderID)
		must(err)
		must(pipeline.ExportOrderToXLSX(order, lines, *out))
		fmt.Printf("exported %d lines to %s\n", len(lines), *out)
	case "serve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		addr := fs.String("addr", cfg.HTTPAddr, "listen address")
		_ = fs.Parse(os.Args[2:])
		logger := config.SetupLogger(cfg)
		router := serverhttp.NewRouter(db, cfg, logger)
		logger.Info().Str("addr", *addr).Msg("listening")
		must(http.ListenAndServe(*addr, router))
	default:
		usage()
		os.Exit(1)
	}
}

// runResolveSession walks the order's unmatched items one at a time on
// stdin. Every confirmed or skipped item is committed before the prompt
// moves on, so quitting midway loses nothing already done.
func runResolveSession(ctx context.Context, db *storage.DB, cfg config.Config, order internal.Order) error {
	session := reconcile.NewSession(db, order, cfg.DefaultTaxRate)
	if session.Done() {
		fmt.Println("no unmatched items found in order notes")
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		current, ok := session.Current()
		if !ok {
			break
		}
		code := "no code"
		if current.Code != nil {
			code = *current.Code
		}
		fmt.Printf("[%d left] %s x%d (%s)\n", session.Remaining(), current.Name, current.Quantity, code)
		fmt.Print("catalog item id ('s' skip, 'q' quit; append '!' to remember alias): ")

		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "q":
			fmt.Printf("session closed, %d items left unresolved\n", session.Remaining())
			return nil
		case input == "s":
			_ = session.Skip()
		case input == "":
			continue
		default:
			remember := strings.HasSuffix(input, "!")
			itemID := strings.TrimSuffix(input, "!")
			item, err := db.GetCatalogItem(ctx, order.Tenant, itemID)
			if err != nil {
				return err
			}
			if item == nil {
				fmt.Printf("unknown catalog item: %s\n", itemID)
				continue
			}
			if err := session.SelectMatch(ctx, item, remember); err != nil {
				fmt.Printf("step failed (retry the same item): %v\n", err)
				continue
			}
			fmt.Printf("matched %s -> %s\n", current.Name, item.Name)
		}
	}

	if err := session.Finalize(ctx); err != nil {
		return err
	}
	fmt.Printf("session done: %d lines added\n", len(session.Confirmed()))
	return nil
}

func usage() {
	fmt.Println("usage: alfies <command>")
	fmt.Println("commands:")
	fmt.Println("  catalog:import --input=items.xlsx [--tenant=default]")
	fmt.Println("  customers:import --input=customers.xlsx [--tenant=default]")
	fmt.Println("  orders:import --input=order.csv|order.xlsx [--tenant=default]")
	fmt.Println("  orders:resolve --orderId=...")
	fmt.Println("  export:xlsx --orderId=... --out=./out/order.xlsx")
	fmt.Println("  serve [--addr=:8080]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
